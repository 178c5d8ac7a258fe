// Package order implements the Order Tracking Record: an event-driven ETA
// state machine per order.
//
// The Track aggregate owns all mutable per-order state (status, estimate,
// history, version) and is mutated exclusively through Apply and Recalculate.
// Lifecycle events form a fixed tagged union (Event/EventKind) validated at
// the ingress boundary. Transitions follow a strict forward-only flow with
// Delivered and Cancelled as terminal states.
//
// The aggregate is pure: anything requiring I/O (leg distances, courier
// positions, the clock) arrives pre-resolved in RecalcInput, so the state
// machine itself is deterministic and testable in isolation.
package order
