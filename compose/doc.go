// Package compose combines independently written transformers over panel
// data into one stage.
//
//   - ColumnTransformer routes column subsets of a frame to named
//     transformers and stacks their outputs (dense, sparse or table) into
//     one block.
//   - RowTransformer broadcasts a single-instance unit over every instance
//     of a panel and reassembles the results, either as a flat table
//     (series-to-primitives) or as a panel (series-to-series).
//   - Concatenator reshapes a multivariate panel into a univariate one by
//     laying each instance's variables end to end along time.
//   - Pipeline chains transformers, feeding each table output into the
//     next step.
//
// A caller builds a transformer, calls Fit once, then Transform any number
// of times on data of compatible shape. Transformers are not safe for
// concurrent use; Clone gives each goroutine its own unfitted copy.
package compose
