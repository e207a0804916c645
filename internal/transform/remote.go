package transform

import (
	"context"
	"time"

	"gonum.org/v1/gonum/mat"

	"panelcomp/unit"
)

// DefaultTimeout bounds one Apply call of a RemoteUnit.
const DefaultTimeout = 5 * time.Second

// RemoteUnit is a unit.Unit served by a Client. The server is stateless,
// so Fit only keeps the fit data and Transform sends it along with x.
type RemoteUnit struct {
	client  Client
	name    string
	kind    unit.Kind
	timeout time.Duration

	fit *mat.Dense
}

// NewRemoteUnit asks the client for the unit's kind. A non-positive
// timeout means DefaultTimeout.
func NewRemoteUnit(ctx context.Context, c Client, name string, timeout time.Duration) (*RemoteUnit, error) {
	kind, err := c.Describe(ctx, name)
	if err != nil {
		return nil, err
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &RemoteUnit{client: c, name: name, kind: kind, timeout: timeout}, nil
}

func (r *RemoteUnit) Name() string    { return r.name }
func (r *RemoteUnit) Kind() unit.Kind { return r.kind }

func (r *RemoteUnit) Fit(x *mat.Dense) error {
	r.fit = mat.DenseCopyOf(x)
	return nil
}

func (r *RemoteUnit) Transform(x *mat.Dense) (*mat.Dense, error) {
	if r.fit == nil {
		return nil, unit.ErrNotFitted
	}
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()
	return r.client.Apply(ctx, r.name, r.fit, x)
}

// Clone shares the client, which is safe for concurrent use, but not the
// fit data.
func (r *RemoteUnit) Clone() unit.Unit {
	return &RemoteUnit{client: r.client, name: r.name, kind: r.kind, timeout: r.timeout}
}
