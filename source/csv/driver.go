// Package csv reads a panel from long-form CSV:
//
//	instance,time,<var>,<var>...
//	a,0,1.5,2
//	a,1,1.7,2.1
//
// Instances keep their order of first appearance; rows of one instance may
// come in any time order.
package csv

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"panelcomp/internal/logging"
	"panelcomp/panel"
	"panelcomp/source"
)

var ErrHeader = errors.New("csv-source: header must start with instance,time")

type driver struct {
	cfg source.Config
	f   *os.File
}

func (d *driver) Configure(c source.Config) error {
	if c.Path == "" {
		return fmt.Errorf("csv-source: empty path")
	}
	d.cfg = c
	return nil
}

func (d *driver) Read(ctx context.Context) (*panel.Frame, error) {
	f, err := os.Open(d.cfg.Path)
	if err != nil {
		return nil, err
	}
	d.f = f
	defer d.Close()

	frame, err := Decode(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("csv-source %s: %w", d.cfg.Path, err)
	}
	logging.For("csv_source").Info("panel loaded",
		"path", d.cfg.Path, "instances", frame.NRows(), "variables", frame.NCols())
	return frame, nil
}

func (d *driver) Close() error {
	if d.f == nil {
		return nil
	}
	err := d.f.Close()
	d.f = nil
	return err
}

// Decode parses long-form CSV from r.
func Decode(ctx context.Context, r io.Reader) (*panel.Frame, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if len(header) < 2 || !strings.EqualFold(header[0], "instance") || !strings.EqualFold(header[1], "time") {
		return nil, ErrHeader
	}
	cr.FieldsPerRecord = len(header)

	l := &panel.Long{Columns: append([]string(nil), header[2:]...)}
	for line := 2; ; line++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t, err := strconv.ParseInt(rec[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: time %q: %w", line, rec[1], err)
		}
		vals := make([]float64, len(rec)-2)
		for j, s := range rec[2:] {
			if vals[j], err = strconv.ParseFloat(s, 64); err != nil {
				return nil, fmt.Errorf("line %d: %s %q: %w", line, header[j+2], s, err)
			}
		}
		l.Instances = append(l.Instances, rec[0])
		l.Times = append(l.Times, t)
		l.Values = append(l.Values, vals)
	}
	return panel.FromLong(l)
}

/* ────────── auto-register ────────── */
func init() {
	source.Register("csv", func() source.Adapter { return &driver{} })
}
