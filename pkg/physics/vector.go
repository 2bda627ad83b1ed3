// pkg/physics/vector.go
package physics

import "math"

// Vector2D is a point or direction in screen space. Y grows downward, so
// gravity is a positive Y acceleration.
type Vector2D struct {
	X float64 `json:"x" yaml:"x" msgpack:"x"`
	Y float64 `json:"y" yaml:"y" msgpack:"y"`
}

// Add returns v + other
func (v Vector2D) Add(other Vector2D) Vector2D {
	return Vector2D{X: v.X + other.X, Y: v.Y + other.Y}
}

// Sub returns v - other
func (v Vector2D) Sub(other Vector2D) Vector2D {
	return Vector2D{X: v.X - other.X, Y: v.Y - other.Y}
}

// Scale multiplies both components by factor
func (v Vector2D) Scale(factor float64) Vector2D {
	return Vector2D{X: v.X * factor, Y: v.Y * factor}
}

// Length returns the magnitude of the vector
func (v Vector2D) Length() float64 {
	return math.Hypot(v.X, v.Y)
}

// LengthSquared avoids the square root for range comparisons
func (v Vector2D) LengthSquared() float64 {
	return v.X*v.X + v.Y*v.Y
}

// Distance returns the euclidean distance between two points
func (v Vector2D) Distance(other Vector2D) float64 {
	return math.Hypot(v.X-other.X, v.Y-other.Y)
}

// Heading returns the direction of v in radians. A zero X component is
// replaced by a small epsilon so a purely vertical vector still resolves to
// ±π/2 instead of depending on the sign of zero.
func (v Vector2D) Heading() float64 {
	x := v.X
	if x == 0 {
		x = headingEpsilon
	}
	return math.Atan2(v.Y, x)
}

const headingEpsilon = 0.001

// FromAngle creates a vector from an angle and magnitude
func FromAngle(angle, magnitude float64) Vector2D {
	return Vector2D{
		X: magnitude * math.Cos(angle),
		Y: magnitude * math.Sin(angle),
	}
}

// Clamp limits value to [lo, hi].
func Clamp(value, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, value))
}

// NormalizeAngle wraps an angle into [-π, π].
func NormalizeAngle(angle float64) float64 {
	for angle > math.Pi {
		angle -= 2 * math.Pi
	}
	for angle < -math.Pi {
		angle += 2 * math.Pi
	}
	return angle
}

// RoundHalfUp rounds to the nearest integer with ties going toward +Inf.
// math.Round sends -2.5 to -3; the tuned scores expect -2.
func RoundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}

// RoundTo rounds x to the given number of decimals using RoundHalfUp.
func RoundTo(x float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return RoundHalfUp(x*p) / p
}
