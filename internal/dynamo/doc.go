// Package dynamo provides the data model shared by the mass-spring
// simulator.
//
// The package defines the persistent simulation state and the contracts
// the other packages implement:
//
//   - [Point]: a point mass with position, velocity and a fixed flag
//   - [Spring]: an ideal spring between two points with a fixed rest length
//   - [Scene]: the ordered point and spring collections
//   - [Params]: uniform mass, stiffness, gravity, wind and floor height
//   - [Stepper]: a time integrator advancing a [Scene] through [Forces]
//
// # Example
//
//	scene := &dynamo.Scene{}
//	a := scene.AddPoint(r3.Vec{}, r3.Vec{}, false)
//	b := scene.AddPoint(r3.Vec{Y: 2}, r3.Vec{}, false)
//	if err := scene.AddSpring(a, b, 1); err != nil {
//	    return err
//	}
//
// # Thread Safety
//
// Scenes are plain values with no locking. A scene is owned by exactly one
// simulator; readers receive copies.
package dynamo
