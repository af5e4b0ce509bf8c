package r2pipe

import (
	"context"
	"fmt"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

// QueryAll runs the same radare2 command against several targets and returns
// the response texts keyed by target path.
//
// Each target gets its own subprocess, so the one-in-flight-command rule
// holds per pipe and the targets are analyzed concurrently, bounded by the
// number of CPUs. The first failure cancels the remaining queries and is
// returned wrapped with its target path.
func QueryAll(ctx context.Context, cmd string, targets []string, opts ...Option) (map[string]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	var mu sync.Mutex

	results := make(map[string]string, len(targets))

	for _, target := range targets {
		g.Go(func() error {
			p, err := Spawn(ctx, target, opts...)
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}
			defer p.Close(ctx)

			out, err := p.Cmd(ctx, cmd)
			if err != nil {
				return fmt.Errorf("%s: %w", target, err)
			}

			mu.Lock()
			results[target] = out
			mu.Unlock()

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}
