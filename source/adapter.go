package source

import (
	"context"
	"fmt"

	"panelcomp/panel"
)

// Config is the driver-independent part of a composition's source block.
type Config struct {
	Path string
}

// Adapter is the common behaviour every source exposes.
type Adapter interface {
	Configure(Config) error
	Read(context.Context) (*panel.Frame, error)
	Close() error // idempotent
}

/*──────── registry ───────*/

type factory = func() Adapter

var reg = map[string]factory{}

func Register(name string, f factory) { reg[name] = f }

func NewAdapter(name string) (Adapter, error) {
	if f, ok := reg[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("unknown source %q", name)
}
