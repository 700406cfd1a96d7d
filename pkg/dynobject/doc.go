// Package dynobject provides a dynamic object: a keyed store whose entries
// hold values of independently chosen types, added and removed at runtime,
// with type safety enforced by exact runtime type checks.
//
// Three types cooperate:
//
//   - Property is a single type-erased cell. Its type is fixed when it is
//     created and never changes.
//   - Store is a keyed collection of properties. Lookups of absent keys
//     return a shared Undefined property instead of nil.
//   - Object is a shared handle to one Store. Clones share the store, and at
//     most one Guard (exclusive access) may be outstanding at a time across
//     all clones.
//
// Typical use:
//
//	obj := dynobject.New[string]()
//	defer obj.Release()
//
//	g := obj.Acquire()
//	s := g.Store()
//	dynobject.Create(s, "limit", uint32(4))
//	limit, _ := dynobject.Get[uint32](s, "limit")
//	g.Release()
//
// Data conditions (type mismatch, missing or duplicate key) are returned as
// errors from package types. Usage violations (acquiring twice, using a
// released handle) panic with a *UsageError.
//
// The package is not safe for concurrent use by multiple goroutines.
package dynobject
