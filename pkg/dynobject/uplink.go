package dynobject

import (
	"weak"

	"github.com/mesh-intelligence/dynobject/pkg/types"
)

// Uplink is a non-owning reference from a store to the state shared by its
// owning Object handles. It does not keep that state alive.
type Uplink[K comparable] struct {
	ref weak.Pointer[core[K]]
}

func newUplink[K comparable](c *core[K]) *Uplink[K] {
	return &Uplink[K]{ref: weak.Make(c)}
}

// Alive reports whether Upgrade would currently succeed.
func (u *Uplink[K]) Alive() bool {
	_, err := u.upgrade()
	return err == nil
}

// Upgrade returns a new owning handle, or types.ErrUplinkDead when no live
// handle remains.
func (u *Uplink[K]) Upgrade() (*Object[K], error) {
	c, err := u.upgrade()
	if err != nil {
		return nil, err
	}
	c.refs++
	return &Object[K]{core: c}, nil
}

func (u *Uplink[K]) upgrade() (*core[K], error) {
	if u == nil {
		return nil, types.ErrNoUplink
	}
	c := u.ref.Value()
	if c == nil || c.refs == 0 {
		return nil, types.ErrUplinkDead
	}
	return c, nil
}
