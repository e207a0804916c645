package unit

import (
	"fmt"
	"sort"
)

// Factory builds a fresh, unfitted unit.
type Factory func() Unit

var registry = map[string]Factory{}

// Register is called from init() or main() for every unit that can be
// named in a composition file or served over gRPC.
func Register(name string, f Factory) {
	registry[name] = f
}

// New returns a fresh unit by name.
func New(name string) (Unit, error) {
	if f, ok := registry[name]; ok {
		return f(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnknownUnit, name)
}

// Names lists registered units in lexical order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register("standard_scaler", func() Unit { return &StandardScaler{} })
	Register("differencer", func() Unit { return &Differencer{Lag: 1} })
	Register("mean", func() Unit { return &Mean{} })
	Register("summary", func() Unit { return &Summary{} })
}
