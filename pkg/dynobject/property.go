package dynobject

import (
	"fmt"
	"reflect"

	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// Undefined is the marker type held by the sentinel property that stores
// return for absent keys. Ordinary code never creates one.
type Undefined struct{}

var (
	undefinedType  = reflect.TypeFor[Undefined]()
	undefinedValue Undefined

	// undefinedProperty is shared by every store. Writing through it is
	// harmless: Undefined has exactly one value.
	undefinedProperty = &Property{typ: undefinedType, ptr: &undefinedValue}
)

// Property is a single type-erased cell. The type is recorded from the type
// parameter at creation, so a Property created as an interface type only
// matches that interface type, never the dynamic type of the value inside.
//
// The zero Property behaves as Undefined.
type Property struct {
	typ   reflect.Type
	ptr   any  // *T where T is typ
	owned bool // held by a Store; only the store may consume it
}

// NewProperty creates a property fixed to type T holding v.
func NewProperty[T any](v T) *Property {
	ptr := new(T)
	*ptr = v
	return &Property{typ: reflect.TypeFor[T](), ptr: ptr}
}

// Type returns the fixed type of the property.
func (p *Property) Type() reflect.Type {
	if p == nil || p.typ == nil {
		return undefinedType
	}
	return p.typ
}

// IsUndefined reports whether p holds the Undefined marker.
func (p *Property) IsUndefined() bool {
	return p.Type() == undefinedType
}

// String names the property's type. The value is never printed.
func (p *Property) String() string {
	return fmt.Sprintf("Property(%s)", p.Type())
}

// cell returns the typed pointer into p when its type is exactly T.
func cell[T any](p *Property) (*T, bool) {
	if p.Type() != reflect.TypeFor[T]() {
		return nil, false
	}
	if p == nil || p.ptr == nil {
		// Zero property; only Undefined can match here.
		return any(&undefinedValue).(*T), true
	}
	return p.ptr.(*T), true
}

// Is reports whether p holds a value of exactly type T.
func Is[T any](p *Property) bool {
	return p.Type() == reflect.TypeFor[T]()
}

// Read returns a copy of the value when p holds exactly type T.
func Read[T any](p *Property) (T, bool) {
	ptr, ok := cell[T](p)
	if !ok {
		var zero T
		return zero, false
	}
	return *ptr, true
}

// Write returns a pointer to the value inside p when p holds exactly type T.
// The pointer stays valid until the property is replaced by Extract or
// removed from its store.
func Write[T any](p *Property) (*T, bool) {
	return cell[T](p)
}

// Replace swaps v into p and returns the previous value. When p does not
// hold type T the property is untouched and v is handed back together with
// types.ErrTypeMismatch.
func Replace[T any](p *Property, v T) (T, error) {
	ptr, ok := cell[T](p)
	if !ok {
		return v, types.ErrTypeMismatch
	}
	old := *ptr
	*ptr = v
	return old, nil
}

// Extract consumes p. When p holds type T its value is returned; otherwise
// the value is dropped and types.ErrTypeMismatch is returned. Either way p
// is Undefined afterwards.
//
// A property still held by a store, and the shared Undefined property, are
// never consumed: Extract returns types.ErrTypeMismatch and leaves them as
// they are. Use Remove to take a value out of a store.
func Extract[T any](p *Property) (T, error) {
	var out T
	if p == undefinedProperty || (p != nil && p.owned) {
		return out, types.ErrTypeMismatch
	}
	ptr, ok := cell[T](p)
	if ok {
		out = *ptr
	}
	p.clear()
	if !ok {
		return out, types.ErrTypeMismatch
	}
	return out, nil
}

func (p *Property) clear() {
	if p == nil {
		return
	}
	p.typ = undefinedType
	p.ptr = &undefinedValue
	p.owned = false
}
