// Package matrix implements the 3x3 affine transform math used to track
// the PDF content-stream graphics state (CTM) and to compute image
// placement in user space.
package matrix

import (
	"fmt"
)

// Matrix is a 3x3 affine transform in row-major form, PDF-style: the last
// column is always (0,0,1) and translation lives in row 2.
type Matrix [3][3]float64

// Identity is the identity transform.
var Identity = Matrix{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}

// Point is a user-space coordinate pair.
type Point struct {
	X, Y float64
}

// FromOperands builds the matrix for a content-stream `cm a b c d e f`
// operator: [[a b 0] [c d 0] [e f 1]].
func FromOperands(a, b, c, d, e, f float64) Matrix {
	return Matrix{{a, b, 0}, {c, d, 0}, {e, f, 1}}
}

// Multiply returns m * n (apply m first, then n — matches the PDF
// convention that concatenating cm right-multiplies the CTM).
func (m Matrix) Multiply(n Matrix) Matrix {
	var p Matrix
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			for k := 0; k < 3; k++ {
				p[i][j] += m[i][k] * n[k][j]
			}
		}
	}
	return p
}

// Transform applies m to p.
func (m Matrix) Transform(p Point) Point {
	x := p.X*m[0][0] + p.Y*m[1][0] + m[2][0]
	y := p.X*m[0][1] + p.Y*m[1][1] + m[2][1]
	return Point{X: x, Y: y}
}

func (m Matrix) String() string {
	return fmt.Sprintf("%3.2f %3.2f %3.2f\n%3.2f %3.2f %3.2f\n%3.2f %3.2f %3.2f\n",
		m[0][0], m[0][1], m[0][2],
		m[1][0], m[1][1], m[1][2],
		m[2][0], m[2][1], m[2][2])
}
