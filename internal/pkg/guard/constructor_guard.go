// Package guard provides the constructor guard used by value objects and
// commands to detect instances that bypassed their constructor.
//
// A zero-value guard fails validation; only guards produced by
// NewConstructorGuard pass. Embedding a ConstructorGuard in a struct therefore
// makes the struct's zero value detectably invalid.
package guard

import "errors"

// ErrDefaultConstructorGuard is returned by Validate when no custom error
// is supplied for an unconstructed object.
var ErrDefaultConstructorGuard = errors.New("object must be created via its constructor")

// ConstructorGuard marks an object as having been created through its
// constructor. The zero value is invalid by design.
type ConstructorGuard struct {
	constructed bool
}

// NewConstructorGuard returns a guard that passes validation.
// Call it from every constructor of a guarded type.
func NewConstructorGuard() ConstructorGuard {
	return ConstructorGuard{constructed: true}
}

// Validate returns nil for a properly constructed guard. For a zero-value
// guard it returns notConstructed, or ErrDefaultConstructorGuard when
// notConstructed is nil.
func (g ConstructorGuard) Validate(notConstructed error) error {
	if g.constructed {
		return nil
	}

	if notConstructed != nil {
		return notConstructed
	}

	return ErrDefaultConstructorGuard
}
