package experiment

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Sweep runs independent experiments concurrently. Each run owns its engine,
// so runs share nothing. Results keep the order of cfgs. The first failure
// cancels the remaining runs. opts apply to every run, so metrics or
// observers passed through them must be safe for concurrent use.
func Sweep(ctx context.Context, cfgs []Config, opts ...Option) ([]*Result, error) {
	results := make([]*Result, len(cfgs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i, cfg := range cfgs {
		i, cfg := i, cfg
		g.Go(func() error {
			exp, err := New(cfg, opts...)
			if err != nil {
				return err
			}
			res, err := exp.Run(ctx)
			results[i] = res
			return err
		})
	}

	if err := g.Wait(); err != nil {
		return results, err
	}
	return results, nil
}

// Seeds builds one config per seed from base.
func Seeds(base Config, seeds ...int64) []Config {
	out := make([]Config, len(seeds))
	for i, s := range seeds {
		out[i] = base
		out[i].Engine.Seed = s
	}
	return out
}

// Holds builds one config per temperature, each holding base's engine at
// that temperature for duration seconds.
func Holds(base Config, duration float64, temps ...float64) []Config {
	out := make([]Config, len(temps))
	for i, t := range temps {
		out[i] = base
		out[i].Schedule = Schedule{
			Name:     fmt.Sprintf("hold%+g", t),
			Start:    t,
			Segments: []Segment{{Kind: Hold, To: t, Duration: duration}},
		}
	}
	return out
}
