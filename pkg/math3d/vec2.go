package math3d

// Vec2 represents a 2D vector, used for texture coordinates.
type Vec2 struct {
	X, Y float64
}

// V2 creates a new Vec2.
func V2(x, y float64) Vec2 {
	return Vec2{x, y}
}

// Sub returns the vector difference a - b.
func (a Vec2) Sub(b Vec2) Vec2 {
	return Vec2{a.X - b.X, a.Y - b.Y}
}

// Blend2 is Blend3 for texture coordinates.
func Blend2(a, b, c Vec2, wa, wb, wc float64) Vec2 {
	return Vec2{wa*a.X + wb*b.X + wc*c.X, wa*a.Y + wb*b.Y + wc*c.Y}
}
