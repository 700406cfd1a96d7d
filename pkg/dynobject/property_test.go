package dynobject

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/mesh-intelligence/dynobject/pkg/types"
)

func TestReadExactType(t *testing.T) {
	tests := []struct {
		name  string
		prop  *Property
		check func(p *Property) bool
	}{
		{"int32 as int32", NewProperty(int32(23)), func(p *Property) bool { v, ok := Read[int32](p); return ok && v == 23 }},
		{"int32 as int64", NewProperty(int32(23)), func(p *Property) bool { _, ok := Read[int64](p); return !ok }},
		{"uint32 as uint32", NewProperty(uint32(4)), func(p *Property) bool { v, ok := Read[uint32](p); return ok && v == 4 }},
		{"string as []byte", NewProperty("hallo"), func(p *Property) bool { _, ok := Read[[]byte](p); return !ok }},
		{"slice as slice", NewProperty([]int{1, 2}), func(p *Property) bool { v, ok := Read[[]int](p); return ok && len(v) == 2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.check(tt.prop) {
				t.Errorf("unexpected Read result for %s", tt.prop)
			}
		})
	}
}

type boomError struct{}

func (boomError) Error() string { return "boom" }

func TestInterfaceTypedProperty(t *testing.T) {
	p := NewProperty[error](boomError{})

	if !Is[error](p) {
		t.Fatal("Is[error] = false, want true")
	}
	if Is[fmt.Stringer](p) {
		t.Error("Is[fmt.Stringer] = true, want false")
	}
	// The dynamic type of the value does not count.
	if Is[boomError](p) {
		t.Error("dynamic type matched, want exact static type only")
	}
	if got := p.Type(); got != reflect.TypeFor[error]() {
		t.Errorf("Type() = %v, want error", got)
	}
}

func TestReplace(t *testing.T) {
	p := NewProperty(int32(123))

	old, err := Replace(p, int32(321))
	if err != nil {
		t.Fatalf("Replace same type: %v", err)
	}
	if old != 123 {
		t.Errorf("old = %d, want 123", old)
	}

	back, err := Replace(p, "hallo")
	if !errors.Is(err, types.ErrTypeMismatch) {
		t.Fatalf("Replace other type error = %v, want ErrTypeMismatch", err)
	}
	if back != "hallo" {
		t.Errorf("rejected value = %q, want %q", back, "hallo")
	}
	if v, ok := Read[int32](p); !ok || v != 321 {
		t.Errorf("after failed Replace: Read = %d, %v; want 321, true", v, ok)
	}
}

func TestWrite(t *testing.T) {
	p := NewProperty(uint32(1))

	ptr, ok := Write[uint32](p)
	if !ok {
		t.Fatal("Write[uint32] failed")
	}
	*ptr += 2

	if v, _ := Read[uint32](p); v != 3 {
		t.Errorf("Read after Write = %d, want 3", v)
	}
	if _, ok := Write[int](p); ok {
		t.Error("Write[int] on uint32 property succeeded")
	}
}

func TestExtract(t *testing.T) {
	t.Run("matching type", func(t *testing.T) {
		p := NewProperty("value")
		v, err := Extract[string](p)
		if err != nil {
			t.Fatalf("Extract: %v", err)
		}
		if v != "value" {
			t.Errorf("Extract = %q, want %q", v, "value")
		}
		if !p.IsUndefined() {
			t.Error("property not undefined after Extract")
		}
	})

	t.Run("mismatched type drops the value", func(t *testing.T) {
		p := NewProperty(42)
		_, err := Extract[string](p)
		if !errors.Is(err, types.ErrTypeMismatch) {
			t.Fatalf("Extract error = %v, want ErrTypeMismatch", err)
		}
		if !p.IsUndefined() {
			t.Error("property not undefined after failed Extract")
		}
		if _, ok := Read[int](p); ok {
			t.Error("value still readable after failed Extract")
		}
	})
}

func TestZeroPropertyIsUndefined(t *testing.T) {
	var p Property
	if !p.IsUndefined() {
		t.Fatal("zero Property is not undefined")
	}
	if _, ok := Read[Undefined](&p); !ok {
		t.Error("Read[Undefined] on zero Property failed")
	}
	if _, ok := Read[int](&p); ok {
		t.Error("Read[int] on zero Property succeeded")
	}
}

func TestPropertyString(t *testing.T) {
	if got, want := NewProperty(uint32(7)).String(), "Property(uint32)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
