// Package cluster evaluates virial cluster integrands: for a configuration of
// n points, the sum over all biconnected Mayer graphs times (1-n)/n!, the
// quantity whose configurational average gives the n-th virial coefficient.
//
// The sum is never enumerated graph by graph. It is built by recursion over
// point subsets in O(n 3^n) work: products of Boltzmann factors over every
// subset, then connected sums, then biconnected sums one root point at a
// time. When the biconnected result cancels to a tiny fraction of the
// products it came from, the recursion is redone in extended precision.
//
// Every cluster memoizes its value on the box's coordinate pair set ID, so a
// Monte Carlo walker that asks for the same configuration twice, or returns
// to the previous one after a rejected trial, pays nothing.
//
// Clusters are single-goroutine objects. Parallel walkers each take a Copy.
package cluster
