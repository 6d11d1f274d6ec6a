package math3d

// Unit is a unit-length 3D vector. Values must come from NewUnit, the
// axis constructors, or rotation application; they are never mutated
// after construction, so |u| == 1 holds for the lifetime of the value
// (up to floating tolerance).
type Unit struct {
	X, Y, Z float64
}

// NewUnit normalizes v into a Unit. A zero vector yields NaN
// components; the NaNs propagate rather than being trapped.
func NewUnit(v Vec3) Unit {
	l := v.Len()
	return Unit{v.X / l, v.Y / l, v.Z / l}
}

// UnitX returns the +X axis.
func UnitX() Unit {
	return Unit{1, 0, 0}
}

// UnitY returns the +Y axis.
func UnitY() Unit {
	return Unit{0, 1, 0}
}

// UnitZ returns the +Z axis.
func UnitZ() Unit {
	return Unit{0, 0, 1}
}

// Vec3 returns the unit vector as a plain Vec3.
func (u Unit) Vec3() Vec3 {
	return Vec3{u.X, u.Y, u.Z}
}

// Neg returns the opposite direction.
func (u Unit) Neg() Unit {
	return Unit{-u.X, -u.Y, -u.Z}
}

// Scale returns the vector u * s.
func (u Unit) Scale(s float64) Vec3 {
	return Vec3{u.X * s, u.Y * s, u.Z * s}
}

// Dot returns the dot product u · v, the cosine of the angle between
// the two directions.
func (u Unit) Dot(v Unit) float64 {
	return u.X*v.X + u.Y*v.Y + u.Z*v.Z
}

// DotVec returns the dot product of u with an arbitrary vector.
func (u Unit) DotVec(v Vec3) float64 {
	return u.X*v.X + u.Y*v.Y + u.Z*v.Z
}

// Cross returns the cross product u × v. The result is not
// normalized; its length is the sine of the angle between u and v.
func (u Unit) Cross(v Unit) Vec3 {
	return u.Vec3().Cross(v.Vec3())
}
