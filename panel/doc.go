// Package panel holds the panel data model shared by every transformer in
// panelcomp.
//
// A panel is a collection of instances, each holding one or more
// time-indexed variable sequences. Frame is the nested view: one row per
// instance, one column per variable, one Series per cell. Long is the long
// view: one row per (instance, time) pair. Both convert losslessly for
// instances whose variables share one time index.
//
// A Frame may also carry scalar columns (one float64 per row); a frame made
// only of scalar columns is a flat table, which is what series-to-primitives
// transforms produce.
//
// Frames are treated as immutable values: selections share cell storage with
// their parent, so callers that need to mutate must Clone first.
package panel
