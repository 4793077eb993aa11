// Package dynamo provides the core types shared by the thermal simulation:
//
//   - [Particle]: position, lateral velocity, gravity fall rate, orientation and spin
//   - [Ensemble]: the fixed-size ordered particle collection
//   - [Rand]: injectable random source for reproducible trajectories
//
// It also holds the domain errors returned by configuration validation and
// experiment runs, and a trig lookup table used by the renderers.
//
// # Thread Safety
//
// Nothing in this package synchronizes. An [Ensemble] is owned by exactly one
// engine; copy it with [Ensemble.Clone] before handing it to another goroutine.
package dynamo
