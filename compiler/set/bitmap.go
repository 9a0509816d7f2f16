package set

import (
	"math/bits"

	"tlog.app/go/tlog/tlwire"
)

type (
	Key interface {
		~int
	}

	// Bitmap is a set of small non-negative integers.
	// The zero value is an empty set.
	Bitmap[K Key] struct {
		b []uint64
	}
)

func (s *Bitmap[K]) Set(k K) {
	i, j := ij(k)

	s.grow(i)

	s.b[i] |= 1 << j
}

func (s *Bitmap[K]) Clear(k K) {
	i, j := ij(k)

	if i >= len(s.b) {
		return
	}

	s.b[i] &^= 1 << j
}

func (s Bitmap[K]) IsSet(k K) bool {
	i, j := ij(k)

	if i >= len(s.b) {
		return false
	}

	return s.b[i]&(1<<j) != 0
}

func (s *Bitmap[K]) Or(x Bitmap[K]) {
	if len(x.b) == 0 {
		return
	}

	s.grow(len(x.b) - 1)

	for i, x := range x.b {
		s.b[i] |= x
	}
}

func (s *Bitmap[K]) AndNot(x Bitmap[K]) {
	for i, x := range x.b {
		if i == len(s.b) {
			break
		}

		s.b[i] &^= x
	}
}

func (s Bitmap[K]) AndNotCopy(x Bitmap[K]) Bitmap[K] {
	cp := s.Copy()
	cp.AndNot(x)

	return cp
}

func (s Bitmap[K]) Copy() Bitmap[K] {
	if s.b == nil {
		return Bitmap[K]{}
	}

	return Bitmap[K]{b: append([]uint64(nil), s.b...)}
}

func (s Bitmap[K]) Size() (r int) {
	for _, c := range s.b {
		r += bits.OnesCount64(c)
	}

	return r
}

// Range calls f in increasing order until it returns false.
func (s Bitmap[K]) Range(f func(k K) bool) {
	for i, x := range s.b {
		for x != 0 {
			j := bits.TrailingZeros64(x)
			x &^= 1 << j

			if !f(K(i*64 + j)) {
				return
			}
		}
	}
}

// Slice returns the elements in increasing order.
func (s Bitmap[K]) Slice() []K {
	r := make([]K, 0, s.Size())

	s.Range(func(k K) bool {
		r = append(r, k)
		return true
	})

	return r
}

func (s *Bitmap[K]) Reset() {
	for i := range s.b {
		s.b[i] = 0
	}
}

func (s Bitmap[K]) TlogAppend(b []byte) []byte {
	var e tlwire.LowEncoder

	if s.b == nil {
		return e.AppendNil(b)
	}

	b = e.AppendTag(b, tlwire.Array, -1)

	s.Range(func(k K) bool {
		b = e.AppendInt(b, int(k))

		return true
	})

	b = e.AppendBreak(b)

	return b
}

func ij[K Key](k K) (i int, j int) {
	if k < 0 {
		panic(k)
	}

	return int(k) / 64, int(k) % 64
}

func (s *Bitmap[K]) grow(i int) {
	for i >= len(s.b) {
		s.b = append(s.b, 0)
	}
}
