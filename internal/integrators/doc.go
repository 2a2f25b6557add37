// Package integrators implements the time steppers for mass-spring scenes.
//
// Each stepper satisfies [dynamo.Stepper] and differs only in how it
// sequences force evaluation, velocity update and position update:
//
//   - [Euler]: semi-implicit Euler, velocity first then position
//   - [Midpoint]: explicit midpoint (RK2), forces at start and half step
//   - [Leapfrog]: staggered velocities, first step only primes v(t0+h/2)
//
// [Leapfrog] is stateful; call [Leapfrog.Reset] whenever the scene is
// rebuilt.
package integrators
