// Package dynamo provides the simulation primitives shared by the labs.
//
// The package defines the interfaces and types every lab model is built on:
//
//   - [State]: vector representing system state
//   - [System]: interface for ODE systems (dX/dt = f(X, t))
//   - [Integrator]: numerical integrator interface
//   - [Model]: a lab model advanced by a time delta
//   - [Driver]: turns wall-clock frame intervals into bounded fixed sub-steps
//
// # Example
//
//	p, _ := physics.NewPendulum(physics.DefaultPendulumConfig())
//	d := dynamo.NewDriver(0.0005, 100)
//	frames, err := d.Run(ctx, p, 1.0/60, 0)
//
// # Thread Safety
//
// Models and drivers are NOT thread-safe. A model is advanced by exactly one
// driver, one call at a time.
package dynamo
