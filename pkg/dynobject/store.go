package dynobject

import (
	"iter"
	"maps"
	"reflect"

	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// Store is a keyed collection of properties. A key is present if and only if
// Create succeeded for it and no later Remove or Discard did.
//
// A Store is usually reached through Object.Acquire, but it can also be used
// on its own; a standalone store has no uplink.
type Store[K comparable] struct {
	data     map[K]*Property
	uplink   *Uplink[K]
	observer Observer
	handle   string
}

// NewStore creates an empty store.
func NewStore[K comparable](opts ...Option) *Store[K] {
	o := buildOptions(opts)
	return &Store[K]{
		data:     make(map[K]*Property),
		observer: o.observer,
	}
}

// Create inserts a new property holding value under key. When key already
// exists nothing changes and value is handed back with types.ErrKeyExists.
func Create[T any, K comparable](s *Store[K], key K, value T) (T, error) {
	if _, ok := s.data[key]; ok {
		s.notify(OpCreate, key, reflect.TypeFor[T](), types.ErrKeyExists)
		return value, types.ErrKeyExists
	}
	p := NewProperty(value)
	p.owned = true
	s.data[key] = p
	s.notify(OpCreate, key, reflect.TypeFor[T](), nil)
	var zero T
	return zero, nil
}

// Set replaces the value stored under key and returns the previous one.
// It fails, handing value back, with types.ErrKeyNotFound when key is absent
// and types.ErrTypeMismatch when the stored type is not T.
func Set[T any, K comparable](s *Store[K], key K, value T) (T, error) {
	p, ok := s.data[key]
	if !ok {
		s.notify(OpSet, key, reflect.TypeFor[T](), types.ErrKeyNotFound)
		return value, types.ErrKeyNotFound
	}
	old, err := Replace(p, value)
	s.notify(OpSet, key, reflect.TypeFor[T](), err)
	return old, err
}

// Remove deletes key and returns its value. It fails with
// types.ErrKeyNotFound when key is absent and types.ErrTypeMismatch when the
// stored type is not T; a mismatch leaves the entry in place.
func Remove[T any, K comparable](s *Store[K], key K) (T, error) {
	var zero T
	p, ok := s.data[key]
	if !ok {
		s.notify(OpRemove, key, reflect.TypeFor[T](), types.ErrKeyNotFound)
		return zero, types.ErrKeyNotFound
	}
	if !Is[T](p) {
		s.notify(OpRemove, key, reflect.TypeFor[T](), types.ErrTypeMismatch)
		return zero, types.ErrTypeMismatch
	}
	delete(s.data, key)
	p.owned = false
	v, err := Extract[T](p)
	s.notify(OpRemove, key, reflect.TypeFor[T](), err)
	return v, err
}

// Discard deletes key without knowing its type. The value is dropped.
func (s *Store[K]) Discard(key K) error {
	p, ok := s.data[key]
	if !ok {
		s.notify(OpRemove, key, nil, types.ErrKeyNotFound)
		return types.ErrKeyNotFound
	}
	delete(s.data, key)
	typ := p.Type()
	p.clear()
	s.notify(OpRemove, key, typ, nil)
	return nil
}

// ExistsWithType reports whether key is present and holds exactly type T.
func ExistsWithType[T any, K comparable](s *Store[K], key K) bool {
	p, ok := s.data[key]
	return ok && Is[T](p)
}

// Get reads the value under key as type T.
func Get[T any, K comparable](s *Store[K], key K) (T, bool) {
	return Read[T](s.Index(key))
}

// Ref returns a pointer to the value under key when it holds type T.
func Ref[T any, K comparable](s *Store[K], key K) (*T, bool) {
	return Write[T](s.Index(key))
}

// Exists reports whether key is present.
func (s *Store[K]) Exists(key K) bool {
	_, ok := s.data[key]
	return ok
}

// Index returns the property stored under key, or the shared Undefined
// property when key is absent. The result is never nil.
func (s *Store[K]) Index(key K) *Property {
	if p, ok := s.data[key]; ok {
		return p
	}
	return undefinedProperty
}

// Len returns the number of keys.
func (s *Store[K]) Len() int {
	return len(s.data)
}

// Keys iterates over the keys in unspecified order.
func (s *Store[K]) Keys() iter.Seq[K] {
	return maps.Keys(s.data)
}

// SetUplink registers the back-reference to the owning Object. It may be
// called once; later calls return types.ErrUplinkAlreadySet.
func (s *Store[K]) SetUplink(u *Uplink[K]) error {
	if u == nil {
		return types.ErrNoUplink
	}
	if s.uplink != nil {
		return types.ErrUplinkAlreadySet
	}
	s.uplink = u
	return nil
}

// Uplink returns the registered back-reference, or nil.
func (s *Store[K]) Uplink() *Uplink[K] {
	return s.uplink
}

// destroy drops every property. The uplink stays registered but can no
// longer be upgraded.
func (s *Store[K]) destroy() {
	for k, p := range s.data {
		p.clear()
		delete(s.data, k)
	}
}

func (s *Store[K]) notify(op Op, key K, typ reflect.Type, err error) {
	if s.observer == nil {
		return
	}
	s.observer.Observe(Event{Op: op, Handle: s.handle, Key: key, Type: typ, Err: err})
}
