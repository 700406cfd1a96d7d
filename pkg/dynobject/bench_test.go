package dynobject

import (
	"fmt"
	"testing"
)

// seedStore creates n uint32 entries keyed key-0..key-(n-1).
func seedStore(b *testing.B, n int) *Store[string] {
	b.Helper()
	s := NewStore[string]()
	for i := 0; i < n; i++ {
		if _, err := Create(s, fmt.Sprintf("key-%d", i), uint32(i)); err != nil {
			b.Fatalf("failed to seed entry %d: %v", i, err)
		}
	}
	return s
}

var benchSizes = []int{10, 100, 1000}

func BenchmarkStoreGet(b *testing.B) {
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			s := seedStore(b, n)
			key := fmt.Sprintf("key-%d", n/2)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, ok := Get[uint32](s, key); !ok {
					b.Fatal("missing key")
				}
			}
		})
	}
}

func BenchmarkStoreSet(b *testing.B) {
	for _, n := range benchSizes {
		b.Run(fmt.Sprintf("n=%d", n), func(b *testing.B) {
			s := seedStore(b, n)
			key := fmt.Sprintf("key-%d", n/2)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Set(s, key, uint32(i)); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkStoreCreateRemove(b *testing.B) {
	s := NewStore[int]()
	for i := 0; i < b.N; i++ {
		if _, err := Create(s, i, i); err != nil {
			b.Fatal(err)
		}
		if _, err := Remove[int](s, i); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkObjectWith(b *testing.B) {
	obj := New[string]()
	defer obj.Release()
	if err := obj.With(func(s *Store[string]) error {
		_, err := Create(s, "counter", uint32(0))
		return err
	}); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := obj.With(func(s *Store[string]) error {
			c, _ := Ref[uint32](s, "counter")
			*c++
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFromStore(b *testing.B) {
	obj := New[string]()
	defer obj.Release()
	g := obj.Acquire()
	s := g.Store()
	g.Release()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		h, err := FromStore(s)
		if err != nil {
			b.Fatal(err)
		}
		h.Release()
	}
}
