// Package box holds the configuration sampled by a Mayer-sampling walker.
//
// A [Box] owns a fixed set of molecules, the squared separations derived
// from their positions ([CoordinatePairSet]) and the ordered molecule pair
// handles used by orientation-dependent Mayer functions ([AtomPairSet]).
//
// # Trial protocol
//
// Moves mutate molecule geometry and then drive the box through
//
//	Stable --TrialNotify--> Trial --AcceptNotify--> Stable (trial set kept)
//	                              --RejectNotify--> Stable (old set kept)
//
// While a trial is pending the trial pair set is the one returned by
// [Box.CPairSet]; the previously accepted set is kept untouched so that a
// rejection restores both the geometry-derived data and its configuration
// ID. Clusters key their caches on that ID, which is why a rejected trial
// never forces a recomputation.
//
// # Thread Safety
//
// A Box belongs to exactly one walker and is NOT safe for concurrent use.
package box
