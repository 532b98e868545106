package qrsvg

// GF(256) arithmetic for QR's Reed-Solomon error correction, using the
// primitive polynomial x^8+x^4+x^3+x^2+1 (0x11D) and generator 2 — the
// constants mandated by ISO 18004, shared by every QR implementation.

var gfExp [512]byte
var gfLog [256]byte

func init() {
	x := 1
	for i := 0; i < 255; i++ {
		gfExp[i] = byte(x)
		gfLog[x] = byte(i)
		x <<= 1
		if x&0x100 != 0 {
			x ^= 0x11D
		}
	}
	for i := 255; i < 512; i++ {
		gfExp[i] = gfExp[i-255]
	}
}

func gfMul(a, b byte) byte {
	if a == 0 || b == 0 {
		return 0
	}
	return gfExp[int(gfLog[a])+int(gfLog[b])]
}

// rsGeneratorPoly returns the coefficients (highest degree first) of the
// Reed-Solomon generator polynomial of the given degree.
func rsGeneratorPoly(degree int) []byte {
	poly := []byte{1}
	for i := 0; i < degree; i++ {
		// Multiply poly by (x - gfExp[i]) = (x + gfExp[i]) in GF(256).
		next := make([]byte, len(poly)+1)
		root := gfExp[i]
		for j, coef := range poly {
			next[j] ^= gfMul(coef, root)
			next[j+1] ^= coef
		}
		poly = next
	}
	return poly
}

// rsRemainder computes the eccLen error-correction codewords for data by
// polynomial long division against the generator polynomial of degree
// eccLen, over GF(256).
func rsRemainder(data []byte, eccLen int) []byte {
	gen := rsGeneratorPoly(eccLen)
	rem := make([]byte, eccLen)
	for _, d := range data {
		factor := d ^ rem[0]
		copy(rem, rem[1:])
		rem[len(rem)-1] = 0
		for i, g := range gen[1:] {
			rem[i] ^= gfMul(g, factor)
		}
	}
	return rem
}
