// panelcomp/sink/stdout/driver.go
package stdout

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"panelcomp/block"
	"panelcomp/panel"
	"panelcomp/sink"
)

/* ────────── public YAML config ────────── */
type Config struct {
	PrintCounter bool      `yaml:"print_counter"` // "# output N" line before each block
	Out          io.Writer `yaml:"-"`             // nil = os.Stdout
}

/* ────────── driver ────────── */
type driver struct {
	cfg Config

	mu sync.Mutex // guards w
	w  *csv.Writer
}

var seq uint64

/* ────────── sink.Adapter ────────── */
func (d *driver) Configure(raw any) error {
	c, ok := raw.(Config)
	if !ok {
		return fmt.Errorf("stdout-sink: expected Config, got %T", raw)
	}
	if c.Out == nil {
		c.Out = os.Stdout
	}
	d.cfg = c
	d.w = csv.NewWriter(c.Out)
	return nil
}

// Push writes b as CSV. Tables with series cells are written in long form
// (instance,time,<var>...), scalar tables as instance,<col>..., matrices
// row-major under ordinal headers.
func (d *driver) Push(b block.Block) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.w == nil {
		return fmt.Errorf("stdout-sink: not configured")
	}

	if d.cfg.PrintCounter {
		if _, err := fmt.Fprintf(d.cfg.Out, "# output %d\n", atomic.AddUint64(&seq, 1)); err != nil {
			return err
		}
	}

	var err error
	switch v := b.(type) {
	case *block.Table:
		err = d.writeTable(v.Frame())
	case *block.Dense:
		err = d.writeDense(v)
	case *block.Sparse:
		err = d.writeDense(v.ToDense())
	default:
		err = fmt.Errorf("stdout-sink: cannot write %T", b)
	}
	if err != nil {
		return err
	}
	d.w.Flush()
	return d.w.Error()
}

func (d *driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.w != nil {
		d.w.Flush()
		return d.w.Error()
	}
	return nil
}

/* ────────── internals ────────── */

func (d *driver) writeTable(f *panel.Frame) error {
	if f.NCols() > 0 && f.IsNested() {
		l, err := f.ToLong()
		if errors.Is(err, panel.ErrUnequalLength) || errors.Is(err, panel.ErrMisalignedIndex) {
			return d.writeRagged(f)
		}
		if err != nil {
			return err
		}
		if err := d.w.Write(append([]string{"instance", "time"}, l.Columns...)); err != nil {
			return err
		}
		for r := 0; r < l.Len(); r++ {
			rec := append([]string{l.Instances[r], strconv.FormatInt(l.Times[r], 10)}, formatRow(l.Values[r])...)
			if err := d.w.Write(rec); err != nil {
				return err
			}
		}
		return nil
	}

	cols := f.Columns()
	for _, c := range cols {
		if c.IsNested() {
			return fmt.Errorf("stdout-sink: column %q mixes series into a scalar table", c.Name)
		}
	}
	if err := d.w.Write(append([]string{"instance"}, f.Names()...)); err != nil {
		return err
	}
	for i := 0; i < f.NRows(); i++ {
		rec := make([]string, 1, len(cols)+1)
		rec[0] = f.ID(i)
		for _, c := range cols {
			rec = append(rec, formatFloat(c.Values[i]))
		}
		if err := d.w.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

// writeRagged writes a nested table whose variables disagree on length or
// time labels within an instance. Each instance gets the sorted union of
// its time labels; a variable without a value at a label leaves the cell
// empty.
func (d *driver) writeRagged(f *panel.Frame) error {
	cols := f.Columns()
	if err := d.w.Write(append([]string{"instance", "time"}, f.Names()...)); err != nil {
		return err
	}
	for i := 0; i < f.NRows(); i++ {
		cells := make([]map[int64]float64, len(cols))
		var times []int64
		seen := map[int64]bool{}
		for j, c := range cols {
			s := c.Series[i]
			cells[j] = make(map[int64]float64, s.Len())
			for k, t := range s.Index {
				cells[j][t] = s.Values[k]
				if !seen[t] {
					seen[t] = true
					times = append(times, t)
				}
			}
		}
		slices.Sort(times)
		for _, t := range times {
			rec := make([]string, 2, len(cols)+2)
			rec[0], rec[1] = f.ID(i), strconv.FormatInt(t, 10)
			for j := range cols {
				if v, ok := cells[j][t]; ok {
					rec = append(rec, formatFloat(v))
				} else {
					rec = append(rec, "")
				}
			}
			if err := d.w.Write(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

func (d *driver) writeDense(m *block.Dense) error {
	if err := d.w.Write(panel.DefaultNames(m.Cols())); err != nil {
		return err
	}
	for i := 0; i < m.Rows(); i++ {
		if err := d.w.Write(formatRow(m.Row(i))); err != nil {
			return err
		}
	}
	return nil
}

func formatRow(vals []float64) []string {
	out := make([]string, len(vals))
	for j, v := range vals {
		out[j] = formatFloat(v)
	}
	return out
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

/* ────────── auto-register ────────── */
func init() {
	sink.Register("stdout", func() sink.Adapter { return &driver{} })
}
