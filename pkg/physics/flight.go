package physics

import "math"

// FlightBody is the kinematic state of an airframe: position, velocity and
// a body angle with its angular velocity.
type FlightBody struct {
	Position        Vector2D
	Velocity        Vector2D
	Angle           float64 // radians
	AngularVelocity float64
}

// FlightForces are the per-step coefficients the integrator applies. They
// are resolved from the airframe's live stats by the caller.
type FlightForces struct {
	Command         float64 // pitch command after control authority
	AngularGain     float64
	Damping         float64 // fraction of angular velocity shed per second
	Wind            Vector2D
	DragCoefficient float64
	LiftStrength    float64
	Thrust          float64
	Gravity         float64
}

// IntegrateFlight advances body by dt using semi-implicit Euler: rotation
// first, then drag against the relative wind, lift, thrust along the body
// axis, gravity, and finally position.
func IntegrateFlight(body *FlightBody, f FlightForces, dt float64) {
	body.AngularVelocity += f.Command * dt * f.AngularGain
	body.AngularVelocity *= 1 - f.Damping*dt
	body.Angle += body.AngularVelocity * dt

	relative := body.Velocity.Sub(f.Wind)
	body.Velocity = body.Velocity.Add(relative.Scale(-f.DragCoefficient * dt))

	sin, cos := math.Sincos(body.Angle)
	body.Velocity = body.Velocity.Add(Vector2D{X: -sin, Y: -cos}.Scale(f.LiftStrength * dt))
	body.Velocity = body.Velocity.Add(Vector2D{X: cos, Y: sin}.Scale(f.Thrust * dt))

	body.Velocity.Y += f.Gravity * dt
	body.Position = body.Position.Add(body.Velocity.Scale(dt))
}
