package noise

import "math"

// Streams mixed into the seed of a permutation table, so that a gradient and a simplex leaf with the same
// seed do not share one.
const (
	gradientStream = 0
	simplexStream  = 0x9e3779b97f4a7c15
)

// permutation is a shuffled table of the bytes 0-255, repeated once so that hashing a lattice corner
// never has to wrap an index.
type permutation [512]uint8

func newPermutation(seed uint32, stream uint64) *permutation {
	var base [256]uint8
	for i := range base {
		base[i] = uint8(i)
	}
	s := uint64(seed) ^ stream
	for i := 255; i > 0; i-- {
		s = s*6364136223846793005 + 1442695040888963407
		j := int((s >> 33) % uint64(i+1))
		base[i], base[j] = base[j], base[i]
	}
	p := new(permutation)
	for i := range p {
		p[i] = base[i&255]
	}
	return p
}

// cell splits v into the index of its lattice cell, reduced to 0-255, and the offset within the cell.
// The cell is found with a floor, so negative coordinates of any magnitude land in the right cell.
func cell(v float64) (int, float64) {
	f := math.Floor(v)
	return int(math.Mod(f, 256)) & 255, v - f
}

// gradient evaluates improved Perlin noise at a position. Every product that feeds a sum is rounded
// explicitly so that the compiler cannot fuse it into a multiply-add, keeping results identical on every
// architecture.
func (p *permutation) gradient(x, y, z float64) float64 {
	xi, xf := cell(x)
	yi, yf := cell(y)
	zi, zf := cell(z)
	u, v, w := fade(xf), fade(yf), fade(zf)

	a, b := int(p[xi])+yi, int(p[xi+1])+yi
	aa, ab := int(p[a])+zi, int(p[a+1])+zi
	ba, bb := int(p[b])+zi, int(p[b+1])+zi

	x1 := lerp(u, grad(p[aa], xf, yf, zf), grad(p[ba], xf-1, yf, zf))
	x2 := lerp(u, grad(p[ab], xf, yf-1, zf), grad(p[bb], xf-1, yf-1, zf))
	y1 := lerp(v, x1, x2)

	x1 = lerp(u, grad(p[aa+1], xf, yf, zf-1), grad(p[ba+1], xf-1, yf, zf-1))
	x2 = lerp(u, grad(p[ab+1], xf, yf-1, zf-1), grad(p[bb+1], xf-1, yf-1, zf-1))
	y2 := lerp(v, x1, x2)

	return lerp(w, y1, y2)
}

const (
	skew3    = 1.0 / 3
	unskew3  = 1.0 / 6
	unskew3b = 1.0 / 3
	unskew3c = 0.5
)

// simplex evaluates 3D simplex noise at a position, scaled to roughly [-1, 1]. Products feeding sums are
// rounded explicitly, as in gradient.
func (p *permutation) simplex(x, y, z float64) float64 {
	s := float64((x + y + z) * skew3)
	i, j, k := math.Floor(x+s), math.Floor(y+s), math.Floor(z+s)
	t := float64((i + j + k) * unskew3)
	x0, y0, z0 := x-(i-t), y-(j-t), z-(k-t)

	// Offsets of the second and third corner of the simplex the position lies in.
	var i1, j1, k1, i2, j2, k2 int
	switch {
	case x0 >= y0 && y0 >= z0:
		i1, i2, j2 = 1, 1, 1
	case x0 >= y0 && x0 >= z0:
		i1, i2, k2 = 1, 1, 1
	case x0 >= y0:
		k1, i2, k2 = 1, 1, 1
	case y0 < z0:
		k1, j2, k2 = 1, 1, 1
	case x0 < z0:
		j1, j2, k2 = 1, 1, 1
	default:
		j1, i2, j2 = 1, 1, 1
	}

	x1, y1, z1 := x0-float64(i1)+unskew3, y0-float64(j1)+unskew3, z0-float64(k1)+unskew3
	x2, y2, z2 := x0-float64(i2)+unskew3b, y0-float64(j2)+unskew3b, z0-float64(k2)+unskew3b
	x3, y3, z3 := x0-1+unskew3c, y0-1+unskew3c, z0-1+unskew3c

	ii := int(math.Mod(i, 256)) & 255
	jj := int(math.Mod(j, 256)) & 255
	kk := int(math.Mod(k, 256)) & 255
	h0 := p[ii+int(p[jj+int(p[kk])])]
	h1 := p[ii+i1+int(p[jj+j1+int(p[kk+k1])])]
	h2 := p[ii+i2+int(p[jj+j2+int(p[kk+k2])])]
	h3 := p[ii+1+int(p[jj+1+int(p[kk+1])])]

	n := corner(h0, x0, y0, z0) + corner(h1, x1, y1, z1) + corner(h2, x2, y2, z2) + corner(h3, x3, y3, z3)
	return 32 * n
}

// corner returns the contribution of one simplex corner at the offset passed.
func corner(h uint8, x, y, z float64) float64 {
	t := 0.6 - float64(x*x) - float64(y*y) - float64(z*z)
	if t < 0 {
		return 0
	}
	t *= t
	return t * t * grad(h, x, y, z)
}

// fade is the quintic 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 {
	inner := float64(t*6) - 15
	inner = float64(t*inner) + 10
	return t * t * t * inner
}

func lerp(t, a, b float64) float64 {
	return a + float64(t*(b-a))
}

// grad returns the dot product of the offset with one of the twelve cube edge gradients picked by h.
func grad(h uint8, x, y, z float64) float64 {
	h &= 15
	u := x
	if h >= 8 {
		u = y
	}
	v := y
	if h >= 4 {
		if h == 12 || h == 14 {
			v = x
		} else {
			v = z
		}
	}
	if h&1 != 0 {
		u = -u
	}
	if h&2 != 0 {
		v = -v
	}
	return u + v
}
