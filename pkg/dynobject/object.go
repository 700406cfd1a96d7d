package dynobject

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// UsageError is the panic value for violations of the handle contract:
// acquiring a store that is already acquired, using a released handle or
// guard, or reconstructing a handle from a store without a live uplink.
type UsageError struct {
	Op     string
	Handle string
	Err    error
}

func (e *UsageError) Error() string {
	return fmt.Sprintf("dynobject: %s on handle %s: %v", e.Op, e.Handle, e.Err)
}

func (e *UsageError) Unwrap() error { return e.Err }

// core is shared by every clone of an Object.
type core[K comparable] struct {
	id       string
	store    *Store[K]
	refs     int
	borrowed bool
	observer Observer
}

// Object is a shared, reference-counted handle to one Store. Clones share
// the store; the store is destroyed when the last handle is released.
type Object[K comparable] struct {
	core     *core[K]
	released bool
}

// New creates an Object owning a fresh empty store whose uplink points back
// at the new handle's shared state.
func New[K comparable](opts ...Option) *Object[K] {
	o := buildOptions(opts)
	c := &core[K]{
		id:       generateID(),
		refs:     1,
		observer: o.observer,
	}
	c.store = NewStore[K](opts...)
	c.store.handle = c.id
	obj := &Object[K]{core: c}
	if err := c.store.SetUplink(obj.uplink()); err != nil {
		panic(&UsageError{Op: "new", Handle: c.id, Err: err})
	}
	return obj
}

// FromStore reconstructs an owning handle from a store's uplink. It fails
// with types.ErrNoUplink when the store never had one, or has one pointing at
// another store, and types.ErrUplinkDead when every handle to it has been
// released or collected.
func FromStore[K comparable](s *Store[K]) (*Object[K], error) {
	if s == nil || s.uplink == nil {
		return nil, types.ErrNoUplink
	}
	c, err := s.uplink.upgrade()
	if err != nil {
		return nil, err
	}
	if c.store != s {
		return nil, types.ErrNoUplink
	}
	c.refs++
	return &Object[K]{core: c}, nil
}

// MustFromStore is FromStore, panicking with a *UsageError on failure.
func MustFromStore[K comparable](s *Store[K]) *Object[K] {
	obj, err := FromStore(s)
	if err != nil {
		handle := ""
		if s != nil {
			handle = s.handle
		}
		panic(&UsageError{Op: "from store", Handle: handle, Err: err})
	}
	return obj
}

// ID identifies the shared store in logs and panics. Clones share it.
func (o *Object[K]) ID() string {
	return o.core.id
}

// Refs returns the number of live handles sharing the store.
func (o *Object[K]) Refs() int {
	return o.core.refs
}

// Acquire returns the exclusive guard on the store. It panics with a
// *UsageError wrapping types.ErrAlreadyAcquired when another guard, from
// this or any clone, is outstanding.
func (o *Object[K]) Acquire() *Guard[K] {
	g, err := o.TryAcquire()
	if err != nil {
		panic(&UsageError{Op: "acquire", Handle: o.core.id, Err: err})
	}
	return g
}

// TryAcquire is Acquire returning types.ErrAlreadyAcquired or
// types.ErrHandleReleased instead of panicking.
func (o *Object[K]) TryAcquire() (*Guard[K], error) {
	if o.released {
		return nil, types.ErrHandleReleased
	}
	c := o.core
	if c.borrowed {
		c.notify(OpAcquire, types.ErrAlreadyAcquired)
		return nil, types.ErrAlreadyAcquired
	}
	c.borrowed = true
	c.notify(OpAcquire, nil)
	return &Guard[K]{core: c}, nil
}

// With runs fn with exclusive access to the store. The guard is released
// when fn returns or panics.
func (o *Object[K]) With(fn func(s *Store[K]) error) error {
	g, err := o.TryAcquire()
	if err != nil {
		return fmt.Errorf("acquire %s: %w", o.core.id, err)
	}
	defer g.Release()
	return fn(g.Store())
}

// Clone returns a new handle sharing the same store.
func (o *Object[K]) Clone() *Object[K] {
	o.mustLive("clone")
	o.core.refs++
	return &Object[K]{core: o.core}
}

// Release drops this handle. Releasing the last handle destroys the store,
// deferred until the outstanding guard, if any, is released. Release is
// idempotent.
func (o *Object[K]) Release() {
	if o.released {
		return
	}
	o.released = true
	c := o.core
	c.refs--
	if c.refs == 0 && !c.borrowed {
		c.destroy()
	}
}

// Uplink returns a new non-owning reference to the shared store.
func (o *Object[K]) Uplink() *Uplink[K] {
	o.mustLive("uplink")
	return o.uplink()
}

func (o *Object[K]) uplink() *Uplink[K] {
	return newUplink(o.core)
}

func (o *Object[K]) mustLive(op string) {
	if o.released {
		panic(&UsageError{Op: op, Handle: o.core.id, Err: types.ErrHandleReleased})
	}
}

func (c *core[K]) destroy() {
	c.store.destroy()
	c.notify(OpDestroy, nil)
}

func (c *core[K]) notify(op Op, err error) {
	if c.observer == nil {
		return
	}
	c.observer.Observe(Event{Op: op, Handle: c.id, Err: err})
}

// Guard is exclusive access to a store. Release it on every path, usually
// with defer.
type Guard[K comparable] struct {
	core     *core[K]
	released bool
}

// Store returns the guarded store. It panics with a *UsageError once the
// guard is released.
func (g *Guard[K]) Store() *Store[K] {
	if g.released {
		panic(&UsageError{Op: "store", Handle: g.core.id, Err: types.ErrGuardReleased})
	}
	return g.core.store
}

// Release ends exclusive access. It is idempotent.
func (g *Guard[K]) Release() {
	if g.released {
		return
	}
	g.released = true
	c := g.core
	c.borrowed = false
	c.notify(OpRelease, nil)
	if c.refs == 0 {
		c.destroy()
	}
}

// IsUsageError reports whether v, typically a recovered panic value, is a
// *UsageError wrapping target.
func IsUsageError(v any, target error) bool {
	err, ok := v.(error)
	if !ok {
		return false
	}
	var ue *UsageError
	return errors.As(err, &ue) && errors.Is(ue, target)
}

// generateID returns a UUID v7, falling back to v4.
func generateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
