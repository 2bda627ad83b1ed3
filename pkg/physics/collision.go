// pkg/physics/collision.go
package physics

// Circle represents a circular collision shape
type Circle struct {
	Center Vector2D
	Radius float64
}

// Overlaps reports whether two circles touch or intersect.
func (c Circle) Overlaps(other Circle) bool {
	return c.Center.Distance(other.Center) <= c.Radius+other.Radius
}

// Rect is an axis-aligned rectangle anchored at its top-left corner, which
// is how level data places obstacles.
type Rect struct {
	X      float64 `json:"x" msgpack:"x"`
	Y      float64 `json:"y" msgpack:"y"`
	Width  float64 `json:"width" msgpack:"width"`
	Height float64 `json:"height" msgpack:"height"`
}

// Center returns the midpoint of the rectangle
func (r Rect) Center() Vector2D {
	return Vector2D{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// HalfExtent is half of the larger side, used as the rectangle's reach in
// radial queries.
func (r Rect) HalfExtent() float64 {
	if r.Width > r.Height {
		return r.Width / 2
	}
	return r.Height / 2
}

// ClosestPoint returns the point of r nearest to p.
func (r Rect) ClosestPoint(p Vector2D) Vector2D {
	return Vector2D{
		X: Clamp(p.X, r.X, r.X+r.Width),
		Y: Clamp(p.Y, r.Y, r.Y+r.Height),
	}
}

// CircleRectOverlap tests a circle against a rectangle using the closest
// point on the rectangle to the circle center. Touching counts as a hit.
func CircleRectOverlap(c Circle, r Rect) bool {
	closest := r.ClosestPoint(c.Center)
	return c.Center.Sub(closest).LengthSquared() <= c.Radius*c.Radius
}
