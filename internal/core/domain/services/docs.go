// Package services contains stateless domain services for the tracking engine.
// The ETA estimator and the traffic decay function live here: both are pure,
// deterministic, and free of I/O so they can be unit-tested in isolation.
package services
