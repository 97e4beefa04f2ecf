// Package physics provides the lab models driven by [dynamo.Driver].
//
// Each model owns its state and is advanced only through Advance:
//
//   - [Pendulum]: rigid bar pivoted off its centre, RK4, period counter
//   - [AirTable]: puck on an inclined air table, semi-implicit Euler, wall bounces
//   - [Centripetal]: spring-hung cylinder coupled to a swinging bob
//
// Units are CGS throughout: cm, g, s, dyn. Configuration setters fail with
// [dynamo.ErrPreconditionViolation] while a run is in progress and
// re-initialise the model otherwise.
package physics

// Gravity is the lab value of g in cm/s².
const Gravity = 980.0
