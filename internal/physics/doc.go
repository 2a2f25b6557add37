// Package physics provides the force model and collision response for
// mass-spring scenes.
//
//   - [SpringForce]: scalar Hookean force k*(l-rest)/l of one spring
//   - [Evaluator]: implements [dynamo.Forces] with uniform mass and stiffness
//   - [Floor]: ground plane clamp applied after integration
//
// All functions mutate velocities and positions in place through slice
// indices and skip points marked fixed.
//
// # Energy
//
// [Evaluator.Energy] splits the total energy into kinetic, elastic and
// gravitational parts so integrators can be compared by drift:
//
//	ke, pe, ge := eval.Energy(scene.Points, scene.Springs)
//	total := ke + pe + ge
package physics
