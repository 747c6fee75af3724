package notify

import (
	"context"
	"errors"
	"fmt"
)

type fanout []Sink

// Fanout sends every event to each sink in turn and joins their failures.
func Fanout(sinks ...Sink) Sink {
	out := make(fanout, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return out
}

func (f fanout) Name() string { return "fanout" }

func (f fanout) Send(ctx context.Context, ev Event) error {
	var errs []error
	for _, s := range f {
		if err := s.Send(ctx, ev); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
