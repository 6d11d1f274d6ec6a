package math3d

import "math"

// Mat3 is a 3x3 rotation matrix stored in column-major order, matching
// the Mat4 layout.
//
// Memory layout (indices):
// | 0 3 6 |
// | 1 4 7 |
// | 2 5 8 |
type Mat3 [9]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Mat3 {
	return Mat3{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// Rotation3 creates a rotation matrix around an arbitrary axis.
func Rotation3(axis Unit, angle float64) Mat3 {
	c, s := math.Cos(angle), math.Sin(angle)
	t := 1 - c
	x, y, z := axis.X, axis.Y, axis.Z

	return Mat3{
		t*x*x + c, t*x*y + s*z, t*x*z - s*y,
		t*x*y - s*z, t*y*y + c, t*y*z + s*x,
		t*x*z + s*y, t*y*z - s*x, t*z*z + c,
	}
}

// RotationAlign creates the rotation that takes direction a onto
// direction b (Rodrigues form). When a and b are antiparallel the
// rotation is by pi around an arbitrary perpendicular axis.
func RotationAlign(a, b Unit) Mat3 {
	k := a.Cross(b)
	c := a.Dot(b)
	s2 := k.LenSq()

	if s2 < 1e-24 {
		if c > 0 {
			return Identity3()
		}
		// Antiparallel: rotate pi around the cardinal axis least
		// aligned with a.
		perp := Up().Cross(a.Vec3())
		if perp.LenSq() < 1e-12 {
			perp = V3(1, 0, 0).Cross(a.Vec3())
		}
		return Rotation3(perp.Unit(), math.Pi)
	}

	f := (1 - c) / s2
	return Mat3{
		1 + f*(-k.Y*k.Y-k.Z*k.Z), k.Z + f*k.X*k.Y, -k.Y + f*k.X*k.Z,
		-k.Z + f*k.X*k.Y, 1 + f*(-k.X*k.X-k.Z*k.Z), k.X + f*k.Y*k.Z,
		k.Y + f*k.X*k.Z, -k.X + f*k.Y*k.Z, 1 + f*(-k.X*k.X-k.Y*k.Y),
	}
}

// Mul multiplies two matrices: a * b. Applying the product applies b
// first, then a.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat3) Mul(b Mat3) Mat3 {
	var m Mat3
	for col := range 3 {
		for row := range 3 {
			var sum float64
			for k := range 3 {
				sum += a[row+k*3] * b[k+col*3]
			}
			m[row+col*3] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3.
func (m Mat3) MulVec3(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[3]*v.Y + m[6]*v.Z,
		m[1]*v.X + m[4]*v.Y + m[7]*v.Z,
		m[2]*v.X + m[5]*v.Y + m[8]*v.Z,
	}
}

// MulUnit transforms a Unit. The receiver must be a pure rotation for
// the result to remain unit length.
func (m Mat3) MulUnit(u Unit) Unit {
	v := m.MulVec3(u.Vec3())
	return Unit{v.X, v.Y, v.Z}
}

// Transpose returns the transposed matrix, which for a pure rotation
// is also its inverse.
func (m Mat3) Transpose() Mat3 {
	return Mat3{
		m[0], m[3], m[6],
		m[1], m[4], m[7],
		m[2], m[5], m[8],
	}
}

// Get returns the element at (row, col).
func (m Mat3) Get(row, col int) float64 {
	return m[row+col*3]
}
