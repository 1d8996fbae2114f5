// Package noise implements composable scalar noise fields. A Noise is an immutable tree of operations
// over gradient (Perlin) and simplex noise leaves. Every transform returns a new Noise, leaving the
// receiver untouched, so a Noise may be shared freely between goroutines once built.
//
// Evaluation is bit-reproducible: the same tree evaluated at the same position returns the same value on
// every platform.
package noise

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Kind is the operation performed by a node of a Noise tree.
type Kind uint8

const (
	KindConstant Kind = iota
	KindPerlin
	KindSimplex
	KindFbm
	KindAbs
	KindSquare
	KindClamp
	KindAdd
	KindMul
	KindMax
	KindRange
)

// Frequency is the spatial frequency of a noise leaf, independent per axis. A zero component collapses
// that axis: the noise is constant along it.
type Frequency = mgl64.Vec3

// Uniform returns a Frequency with the same value on every axis.
func Uniform(f float64) Frequency {
	return Frequency{f, f, f}
}

// Noise is a composable scalar field. The zero value evaluates to 0 everywhere.
type Noise struct {
	n *node
}

// node is one operation in a Noise tree. Which fields are used depends on kind.
type node struct {
	kind Kind

	// KindConstant
	value float64

	// KindPerlin, KindSimplex
	freq Frequency
	seed uint32
	perm *permutation

	// KindFbm
	octaves                 int
	persistence, lacunarity float64

	// KindClamp, KindRange
	lo, hi float64

	// Operands: src is the input of unary operations and the selector of KindRange, a and b are the
	// second operand of binary operations or the low and high branches of KindRange.
	src, a, b *node
}

// Constant returns a Noise with the same value everywhere.
func Constant(v float64) Noise {
	return Noise{n: &node{kind: KindConstant, value: finite(v)}}
}

// Perlin returns a gradient noise leaf with the frequency passed, seeded with 0. Use Seed to change the
// seed.
func Perlin(freq Frequency) Noise {
	return Noise{n: newLeaf(KindPerlin, freq, 0)}
}

// Simplex returns a simplex noise leaf with the frequency passed, seeded with 0. Use Seed to change the
// seed.
func Simplex(freq Frequency) Noise {
	return Noise{n: newLeaf(KindSimplex, freq, 0)}
}

func newLeaf(kind Kind, freq Frequency, seed uint32) *node {
	n := &node{kind: kind, freq: freq, seed: seed}
	switch kind {
	case KindPerlin:
		n.perm = newPermutation(seed, gradientStream)
	case KindSimplex:
		n.perm = newPermutation(seed, simplexStream)
	}
	return n
}

// Kind returns the operation at the root of the Noise.
func (n Noise) Kind() Kind {
	if n.n == nil {
		return KindConstant
	}
	return n.n.kind
}

// IsZero reports if the Noise is the zero value.
func (n Noise) IsZero() bool {
	return n.n == nil
}

// Seed returns a copy of the Noise with every leaf re-seeded with seed. Callers derive distinct seeds for
// distinct fields by adding an offset to the world seed, wrapping around on overflow.
func (n Noise) Seed(seed uint32) Noise {
	return Noise{n: n.n.reseed(seed)}
}

func (n *node) reseed(seed uint32) *node {
	if n == nil {
		return nil
	}
	switch n.kind {
	case KindPerlin, KindSimplex:
		return newLeaf(n.kind, n.freq, seed)
	case KindConstant:
		return n
	}
	c := *n
	c.src, c.a, c.b = n.src.reseed(seed), n.a.reseed(seed), n.b.reseed(seed)
	return &c
}

// Fbm returns fractal Brownian motion over the Noise: the sum of octaves evaluations, each at lacunarity
// times the frequency and persistence times the amplitude of the previous one. The sum is divided by the
// total amplitude so that the output stays in the range of the source.
func (n Noise) Fbm(octaves int, persistence, lacunarity float64) Noise {
	if octaves < 1 {
		octaves = 1
	}
	return Noise{n: &node{kind: KindFbm, src: n.n, octaves: octaves, persistence: persistence, lacunarity: lacunarity}}
}

// Abs returns the absolute value of the Noise.
func (n Noise) Abs() Noise {
	return Noise{n: &node{kind: KindAbs, src: n.n}}
}

// Square returns the Noise multiplied by itself.
func (n Noise) Square() Noise {
	return Noise{n: &node{kind: KindSquare, src: n.n}}
}

// Clamp limits the Noise to the range [min, max].
func (n Noise) Clamp(min, max float64) Noise {
	if min > max {
		min, max = max, min
	}
	return Noise{n: &node{kind: KindClamp, src: n.n, lo: min, hi: max}}
}

// Add returns the sum of n and o, both evaluated at the same position.
func (n Noise) Add(o Noise) Noise {
	return Noise{n: &node{kind: KindAdd, src: n.n, a: o.n}}
}

// AddConst returns n with v added to it.
func (n Noise) AddConst(v float64) Noise {
	return n.Add(Constant(v))
}

// Mul returns the product of n and o, both evaluated at the same position.
func (n Noise) Mul(o Noise) Noise {
	return Noise{n: &node{kind: KindMul, src: n.n, a: o.n}}
}

// MulConst returns n multiplied by v.
func (n Noise) MulConst(v float64) Noise {
	return n.Mul(Constant(v))
}

// Max returns the larger of n and o at every position.
func (n Noise) Max(o Noise) Noise {
	return Noise{n: &node{kind: KindMax, src: n.n, a: o.n}}
}

// Range evaluates n and uses the result to select between two other fields. Below lo the value of below
// is returned, above hi the value of above, and in between the two are blended linearly.
func (n Noise) Range(lo, hi float64, below, above Noise) Noise {
	if lo > hi {
		lo, hi = hi, lo
	}
	return Noise{n: &node{kind: KindRange, src: n.n, lo: lo, hi: hi, a: below.n, b: above.n}}
}

// At evaluates the Noise at a position. The result is always a finite number.
func (n Noise) At(x, y, z float64) float64 {
	return n.n.eval(x, y, z)
}

// At2D evaluates the Noise in the y = 0 plane.
func (n Noise) At2D(x, z float64) float64 {
	return n.n.eval(x, 0, z)
}

// Generate3D samples w*h*d points at unit spacing starting at x, y, z. The sample at offset (i, j, k) is
// stored at i*d*h + k*h + j.
func (n Noise) Generate3D(x, y, z float64, w, h, d int) []float64 {
	out := make([]float64, w*h*d)
	for i := 0; i < w; i++ {
		for k := 0; k < d; k++ {
			for j := 0; j < h; j++ {
				out[i*d*h+k*h+j] = n.n.eval(x+float64(i), y+float64(j), z+float64(k))
			}
		}
	}
	return out
}

// Generate2D samples w*d points at unit spacing in the y = 0 plane starting at x, z. The sample at offset
// (i, k) is stored at i*d + k.
func (n Noise) Generate2D(x, z float64, w, d int) []float64 {
	out := make([]float64, w*d)
	for i := 0; i < w; i++ {
		for k := 0; k < d; k++ {
			out[i*d+k] = n.n.eval(x+float64(i), 0, z+float64(k))
		}
	}
	return out
}

func (n *node) eval(x, y, z float64) float64 {
	if n == nil {
		return 0
	}
	return finite(n.evalRaw(x, y, z))
}

func (n *node) evalRaw(x, y, z float64) float64 {
	switch n.kind {
	case KindConstant:
		return n.value
	case KindPerlin:
		return n.perm.gradient(float64(x*n.freq[0]), float64(y*n.freq[1]), float64(z*n.freq[2]))
	case KindSimplex:
		return n.perm.simplex(float64(x*n.freq[0]), float64(y*n.freq[1]), float64(z*n.freq[2]))
	case KindFbm:
		var sum, total float64
		amplitude, scale := 1.0, 1.0
		for i := 0; i < n.octaves; i++ {
			sum += float64(amplitude * n.src.eval(x*scale, y*scale, z*scale))
			total += amplitude
			amplitude *= n.persistence
			scale *= n.lacunarity
		}
		if total == 0 {
			return 0
		}
		return sum / total
	case KindAbs:
		return math.Abs(n.src.eval(x, y, z))
	case KindSquare:
		v := n.src.eval(x, y, z)
		return v * v
	case KindClamp:
		return mgl64.Clamp(n.src.eval(x, y, z), n.lo, n.hi)
	case KindAdd:
		return n.src.eval(x, y, z) + n.a.eval(x, y, z)
	case KindMul:
		return n.src.eval(x, y, z) * n.a.eval(x, y, z)
	case KindMax:
		return math.Max(n.src.eval(x, y, z), n.a.eval(x, y, z))
	case KindRange:
		v := n.src.eval(x, y, z)
		switch {
		case v < n.lo:
			return n.a.eval(x, y, z)
		case v > n.hi:
			return n.b.eval(x, y, z)
		case n.hi-n.lo == 0:
			return n.a.eval(x, y, z)
		}
		t := (v - n.lo) / (n.hi - n.lo)
		below, above := n.a.eval(x, y, z), n.b.eval(x, y, z)
		return below + float64(t*(above-below))
	}
	return 0
}

// finite maps NaN to 0 and infinities to the largest finite values so that degenerate compositions never
// leak non-numeric values into generated terrain.
func finite(v float64) float64 {
	switch {
	case math.IsNaN(v):
		return 0
	case math.IsInf(v, 1):
		return math.MaxFloat64
	case math.IsInf(v, -1):
		return -math.MaxFloat64
	}
	return v
}
