// Package potential provides the interaction energies fed to Mayer functions.
//
//   - [LennardJones]: 12-6 pair potential with optional truncation
//   - [HardSphere]: infinite repulsion inside the diameter
//   - [SquareWell]: hard core plus an attractive well
//   - [AxilrodTeller]: triple-dipole three-body dispersion
//
// All energies are in the same reduced units as the temperature passed to
// the Mayer functions (k_B = 1).
package potential
