// Package batch processes URL lists with bounded concurrency. The limit
// is a backpressure mechanism, not parallelism: one driver instance
// multiplexes every page, so workers are cooperative tasks drawing from
// a shared queue.
package batch

import (
	"context"
	"fmt"
	"time"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the worker limit applied when the caller does
// not set one.
const DefaultConcurrency = 3

// Result is the per-URL outcome record.
type Result struct {
	URL        string      `json:"url"`
	OK         bool        `json:"ok"`
	Skipped    bool        `json:"skipped,omitempty"`
	Value      interface{} `json:"value,omitempty"`
	Error      string      `json:"error,omitempty"`
	DurationMs int64       `json:"duration_ms"`
}

// Func processes one URL and returns its result value.
type Func func(ctx context.Context, url string) (interface{}, error)

// Runner runs a Func over a URL list with a concurrency limit and
// optional exclusion patterns.
type Runner struct {
	// Concurrency bounds the number of in-flight URLs. Zero or negative
	// means DefaultConcurrency.
	Concurrency int

	// Timeout bounds each URL individually. Zero means no per-URL bound.
	Timeout time.Duration

	// Exclude skips URLs matching any pattern.
	Exclude []glob.Glob
}

// CompileExcludes parses glob patterns for Runner.Exclude.
func CompileExcludes(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

func (r *Runner) excluded(url string) bool {
	for _, g := range r.Exclude {
		if g.Match(url) {
			return true
		}
	}
	return false
}

// Run processes every URL and returns one Result per input, in input
// order. Individual failures are recorded, never propagated; only
// context cancellation stops the batch early.
func (r *Runner) Run(ctx context.Context, urls []string, fn Func) []Result {
	limit := r.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	results := make([]Result, len(urls))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, url := range urls {
		if r.excluded(url) {
			results[i] = Result{URL: url, Skipped: true}
			continue
		}

		i, url := i, url
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{URL: url, Error: err.Error()}
				return nil
			}

			urlCtx := ctx
			if r.Timeout > 0 {
				var cancel context.CancelFunc
				urlCtx, cancel = context.WithTimeout(ctx, r.Timeout)
				defer cancel()
			}

			start := time.Now()
			value, err := fn(urlCtx, url)
			res := Result{URL: url, DurationMs: time.Since(start).Milliseconds()}
			if err != nil {
				res.Error = err.Error()
			} else {
				res.OK = true
				res.Value = value
			}
			results[i] = res
			return nil
		})
	}

	g.Wait()
	return results
}
