package compose

import (
	"fmt"

	"panelcomp/block"
	"panelcomp/panel"
)

// NameSep joins a spec name and a column name when stacked table columns
// need disambiguating.
const NameSep = "__"

type part struct {
	name string
	b    block.Block
}

type stackOptions struct {
	index     []string
	threshold float64
	preserve  bool
	disjoint  bool
}

// chooseRepresentation picks the stacked layout from block metadata alone.
// Sparse wins over table, table over dense; a sparse stack at or above the
// threshold density is densified, and tables need preserve.
func chooseRepresentation(blocks []block.Block, threshold float64, preserve bool) block.Representation {
	rep := block.RepDense
	for _, b := range blocks {
		rep = max(rep, b.Representation())
	}
	switch rep {
	case block.RepSparse:
		if block.Density(blocks) < threshold {
			return block.RepSparse
		}
	case block.RepTable:
		if preserve {
			return block.RepTable
		}
	}
	return block.RepDense
}

func stack(parts []part, o stackOptions) (block.Block, error) {
	blocks := make([]block.Block, len(parts))
	for k, p := range parts {
		blocks[k] = p.b
	}
	switch chooseRepresentation(blocks, o.threshold, o.preserve) {
	case block.RepSparse:
		return stackSparse(parts)
	case block.RepTable:
		return stackTables(parts, o)
	default:
		return stackDense(parts, len(o.index))
	}
}

func stackSparse(parts []part) (block.Block, error) {
	ss := make([]*block.Sparse, len(parts))
	for k, p := range parts {
		s, err := block.ToSparse(p.b)
		if err != nil {
			return nil, fmt.Errorf("compose: stack %q: %w", p.name, err)
		}
		ss[k] = s
	}
	return block.HStackSparse(ss)
}

func stackDense(parts []part, rows int) (block.Block, error) {
	if len(parts) == 0 {
		return block.NewDense(rows, 0, nil)
	}
	ds := make([]*block.Dense, len(parts))
	for k, p := range parts {
		d, err := block.ToDense(p.b)
		if err != nil {
			return nil, fmt.Errorf("compose: stack %q: %w", p.name, err)
		}
		ds[k] = d
	}
	return block.HStackDense(ds)
}

// stackTables concatenates blocks column-wise under the input row labels.
// Column names survive when no input column was claimed twice and no two
// output columns share a name; otherwise every column becomes
// "<spec>__<column>".
func stackTables(parts []part, o stackOptions) (block.Block, error) {
	var (
		cols   []panel.Column
		owners []string
	)
	for _, p := range parts {
		t, err := block.ToTable(p.b, o.index)
		if err != nil {
			return nil, fmt.Errorf("compose: stack %q: %w", p.name, err)
		}
		for _, col := range t.Frame().Columns() {
			cols = append(cols, col)
			owners = append(owners, p.name)
		}
	}

	if !o.disjoint || collides(cols) {
		for k := range cols {
			cols[k] = cols[k].Renamed(owners[k] + NameSep + cols[k].Name)
		}
	}
	f, err := panel.NewFrame(o.index, cols...)
	if err != nil {
		return nil, fmt.Errorf("compose: stack: %w", err)
	}
	return block.NewTable(f), nil
}

func collides(cols []panel.Column) bool {
	seen := make(map[string]struct{}, len(cols))
	for _, c := range cols {
		if _, ok := seen[c.Name]; ok {
			return true
		}
		seen[c.Name] = struct{}{}
	}
	return false
}
