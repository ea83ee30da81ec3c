// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package metafile

// Affine3 is a 3D affine transform stored as three axis vectors and an
// origin. A point p maps to Origin + X*p.X + Y*p.Y + Z*p.Z.
type Affine3 struct {
	X, Y, Z Vec3
	Origin  Vec3
}

// Identity3 returns the identity transform.
func Identity3() Affine3 {
	return Affine3{X: V3(1, 0, 0), Y: V3(0, 1, 0), Z: V3(0, 0, 1)}
}

// Translate3 returns a translation.
func Translate3(x, y, z float32) Affine3 {
	m := Identity3()
	m.Origin = V3(x, y, z)
	return m
}

// Scale3 returns a scale about the origin.
func Scale3(x, y, z float32) Affine3 {
	return Affine3{X: V3(x, 0, 0), Y: V3(0, y, 0), Z: V3(0, 0, z)}
}

// Apply transforms a point.
func (m Affine3) Apply(p Vec3) Vec3 {
	return m.Origin.Add(m.ApplyVector(p))
}

// ApplyVector transforms a direction, ignoring the origin.
func (m Affine3) ApplyVector(v Vec3) Vec3 {
	return m.X.Mul(v.X).Add(m.Y.Mul(v.Y)).Add(m.Z.Mul(v.Z))
}

// Multiply returns the transform that applies n first, then m.
func (m Affine3) Multiply(n Affine3) Affine3 {
	return Affine3{
		X:      m.ApplyVector(n.X),
		Y:      m.ApplyVector(n.Y),
		Z:      m.ApplyVector(n.Z),
		Origin: m.Apply(n.Origin),
	}
}

// Floats returns the transform as 12 floats: X, Y, Z, Origin.
func (m Affine3) Floats() [12]float32 {
	return [12]float32{
		m.X.X, m.X.Y, m.X.Z,
		m.Y.X, m.Y.Y, m.Y.Z,
		m.Z.X, m.Z.Y, m.Z.Z,
		m.Origin.X, m.Origin.Y, m.Origin.Z,
	}
}

// Affine3FromFloats is the inverse of Floats.
func Affine3FromFloats(f [12]float32) Affine3 {
	return Affine3{
		X:      V3(f[0], f[1], f[2]),
		Y:      V3(f[3], f[4], f[5]),
		Z:      V3(f[6], f[7], f[8]),
		Origin: V3(f[9], f[10], f[11]),
	}
}
