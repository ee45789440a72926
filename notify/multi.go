package notify

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Named attaches a sink name used in delivery errors.
type Named struct {
	Name string
	Notifier
}

// Multi delivers each event to every sink concurrently. One sink failing does
// not stop the others; all failures are joined.
type Multi struct {
	sinks []Named
}

func NewMulti(sinks ...Named) *Multi {
	return &Multi{sinks: sinks}
}

func (m *Multi) Add(name string, n Notifier) {
	m.sinks = append(m.sinks, Named{Name: name, Notifier: n})
}

func (m *Multi) Len() int {
	return len(m.sinks)
}

func (m *Multi) Notify(ctx context.Context, e Event) error {
	errs := make([]error, len(m.sinks))

	var g errgroup.Group
	for i, sink := range m.sinks {
		i, sink := i, sink
		g.Go(func() error {
			if err := sink.Notify(ctx, e); err != nil {
				errs[i] = fmt.Errorf("%s: %w", sink.Name, err)
			}
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}
