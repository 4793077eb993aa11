// Package thermal maps a temperature to the kinematic multipliers that drive
// the particle engine: speed, rotation, gravity, floor friction and the
// coolness factor that strengthens attraction as temperature drops.
//
// All functions are pure. Temperatures are Celsius; callers clamp with
// [Clamp] at the boundary.
package thermal
