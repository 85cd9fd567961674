package math3d

import "math"

// Mat4 is a 4x4 matrix stored column by column, the layout uniform uploads
// expect: element (row, col) is m[col*4+row] and m[12:15] is the translation.
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// RotateX creates a rotation matrix around the X axis.
func RotateX(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		1, 0, 0, 0,
		0, c, s, 0,
		0, -s, c, 0,
		0, 0, 0, 1,
	}
}

// RotateY creates a rotation matrix around the Y axis.
func RotateY(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, 0, -s, 0,
		0, 1, 0, 0,
		s, 0, c, 0,
		0, 0, 0, 1,
	}
}

// RotateZ creates a rotation matrix around the Z axis.
func RotateZ(angle float64) Mat4 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Mat4{
		c, s, 0, 0,
		-s, c, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Perspective creates a perspective projection matrix.
// fovy is vertical field of view in radians.
// aspect is width/height.
// near and far are clipping planes.
func Perspective(fovy, aspect, near, far float64) Mat4 {
	f := 1.0 / math.Tan(fovy/2)
	nf := 1.0 / (near - far)

	return Mat4{
		f / aspect, 0, 0, 0,
		0, f, 0, 0,
		0, 0, (far + near) * nf, -1,
		0, 0, 2 * far * near * nf, 0,
	}
}

// Col returns column i: the image of basis vector i, or the translation for
// i == 3.
func (m Mat4) Col(i int) Vec4 {
	return Vec4{m[i*4], m[i*4+1], m[i*4+2], m[i*4+3]}
}

// Mul returns a * b, the transform that applies b first.
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		c := a.MulVec4(b.Col(col))
		m[col*4], m[col*4+1], m[col*4+2], m[col*4+3] = c.X, c.Y, c.Z, c.W
	}
	return m
}

// MulVec4 transforms a homogeneous vector.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// MulVec3 transforms v as a point (w=1) and divides by the resulting w
// unless it is zero.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms v as a direction (w=0), ignoring translation.
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 0)).Vec3()
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	var t Mat4
	for i := range 4 {
		for j := range 4 {
			t[i*4+j] = m[j*4+i]
		}
	}
	return t
}

// minors holds the 2x2 determinants of the upper (s) and lower (c) halves
// of the matrix read in storage order. Determinant and Inverse share them.
type minors struct {
	s0, s1, s2, s3, s4, s5 float64
	c0, c1, c2, c3, c4, c5 float64
}

func (m *Mat4) minors() minors {
	return minors{
		s0: m[0]*m[5] - m[4]*m[1],
		s1: m[0]*m[6] - m[4]*m[2],
		s2: m[0]*m[7] - m[4]*m[3],
		s3: m[1]*m[6] - m[5]*m[2],
		s4: m[1]*m[7] - m[5]*m[3],
		s5: m[2]*m[7] - m[6]*m[3],

		c0: m[8]*m[13] - m[12]*m[9],
		c1: m[8]*m[14] - m[12]*m[10],
		c2: m[8]*m[15] - m[12]*m[11],
		c3: m[9]*m[14] - m[13]*m[10],
		c4: m[9]*m[15] - m[13]*m[11],
		c5: m[10]*m[15] - m[14]*m[11],
	}
}

func (k minors) det() float64 {
	return k.s0*k.c5 - k.s1*k.c4 + k.s2*k.c3 + k.s3*k.c2 - k.s4*k.c1 + k.s5*k.c0
}

// Determinant returns the determinant of the matrix.
func (m Mat4) Determinant() float64 {
	return m.minors().det()
}

// Inverse returns the inverse of the matrix, or the identity when the
// matrix is singular.
func (m Mat4) Inverse() Mat4 {
	k := m.minors()
	det := k.det()
	if det == 0 {
		return Identity()
	}
	id := 1 / det

	// Inversion commutes with transposition, so the cofactor expansion can
	// run directly on storage order.
	return Mat4{
		(m[5]*k.c5 - m[6]*k.c4 + m[7]*k.c3) * id,
		(-m[1]*k.c5 + m[2]*k.c4 - m[3]*k.c3) * id,
		(m[13]*k.s5 - m[14]*k.s4 + m[15]*k.s3) * id,
		(-m[9]*k.s5 + m[10]*k.s4 - m[11]*k.s3) * id,

		(-m[4]*k.c5 + m[6]*k.c2 - m[7]*k.c1) * id,
		(m[0]*k.c5 - m[2]*k.c2 + m[3]*k.c1) * id,
		(-m[12]*k.s5 + m[14]*k.s2 - m[15]*k.s1) * id,
		(m[8]*k.s5 - m[10]*k.s2 + m[11]*k.s1) * id,

		(m[4]*k.c4 - m[5]*k.c2 + m[7]*k.c0) * id,
		(-m[0]*k.c4 + m[1]*k.c2 - m[3]*k.c0) * id,
		(m[12]*k.s4 - m[13]*k.s2 + m[15]*k.s0) * id,
		(-m[8]*k.s4 + m[9]*k.s2 - m[11]*k.s0) * id,

		(-m[4]*k.c3 + m[5]*k.c1 - m[6]*k.c0) * id,
		(m[0]*k.c3 - m[1]*k.c1 + m[2]*k.c0) * id,
		(-m[12]*k.s3 + m[13]*k.s1 - m[14]*k.s0) * id,
		(m[8]*k.s3 - m[9]*k.s1 + m[10]*k.s0) * id,
	}
}

// NormalMatrix returns transpose(inverse(m)), the matrix that carries surface
// normals through m without skewing them under non-uniform scale.
func (m Mat4) NormalMatrix() Mat4 {
	return m.Inverse().Transpose()
}

// TRS composes translate * rotate * scale.
func TRS(translate Vec3, rotate Mat4, scale Vec3) Mat4 {
	return Translate(translate).Mul(rotate).Mul(Scale(scale))
}
