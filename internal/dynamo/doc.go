// Package dynamo provides the core primitives of the plane-bounce simulator.
//
// The package defines the value types shared by every other layer:
//
//   - [Body]: a simulated object with position, velocity and a [Shape]
//   - [Shape]: closed set of body extents ([Ball], [Point])
//   - [Plane]: an infinite axis-aligned boundary a body rebounds off
//   - [BoundingBox]: derived extents used for the boundary overlap test
//   - [Snapshot]: read-only copy of world state handed to renderers
//
// # Axis naming
//
// Plane axes keep the historical naming: an [AxisX] plane constrains the
// Y coordinate and an [AxisY] plane constrains X. [Axis.Constrains] is the
// single place that mapping lives.
//
// # Units
//
// Positions are world units, velocities units/ms and accelerations
// units/ms². Time deltas are milliseconds.
package dynamo
