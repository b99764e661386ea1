// Package msmc runs Mayer-sampling Monte Carlo.
//
// A walker samples configurations of n molecules with probability
// proportional to π = |γ_target| + w|γ_ref|, where γ_ref is a hard-sphere
// cluster whose integral is known. Averages of γ_target/π and γ_ref/π give
//
//	B_target = B_ref <γ_target/π> / <γ_ref/π>
//
// Independent walkers run in an Ensemble, one goroutine each, on copies of
// the box, clusters and moves.
package msmc
