// Package transform defines the engine-side client interface for remote
// units (gRPC plugins) and the UnitService they implement. A RemoteUnit
// wraps a transform.Client as a unit.Unit so row transformers can
// broadcast it like any in-process unit.
package transform
