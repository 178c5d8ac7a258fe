// Package courier implements the courier aggregate for the location relay:
// last-known position, the per-courier monotonic sequence guarding against
// stale ticks, and the set of orders whose subscribers receive the courier's
// position broadcasts.
package courier
