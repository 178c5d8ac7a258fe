// Package kernel provides core domain primitives for the order tracking engine.
// It implements fundamental building blocks following Domain-Driven Design
// principles that are used throughout the domain model.
//
// The package includes:
//   - UUID: A value object for unique identifiers with validation and comparison
//   - GeoPoint: A validated WGS84 coordinate pair with haversine distance
//   - Position: A timestamped coordinate fix with compass heading
//
// These primitives enforce domain invariants at construction time, are
// immutable, and are safe for concurrent use.
package kernel
