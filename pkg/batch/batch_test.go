package batch

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunPreservesInputOrder(t *testing.T) {
	urls := []string{"https://a.test", "https://b.test", "https://c.test"}
	r := &Runner{Concurrency: 2}

	results := r.Run(context.Background(), urls, func(ctx context.Context, url string) (interface{}, error) {
		return "ok:" + url, nil
	})

	require.Len(t, results, 3)
	for i, url := range urls {
		assert.Equal(t, url, results[i].URL)
		assert.True(t, results[i].OK)
		assert.Equal(t, "ok:"+url, results[i].Value)
	}
}

func TestRunBoundsConcurrency(t *testing.T) {
	var mu sync.Mutex
	inFlight, maxInFlight := 0, 0

	urls := make([]string, 20)
	for i := range urls {
		urls[i] = fmt.Sprintf("https://site-%d.test", i)
	}

	r := &Runner{Concurrency: 3}
	r.Run(context.Background(), urls, func(ctx context.Context, url string) (interface{}, error) {
		mu.Lock()
		inFlight++
		if inFlight > maxInFlight {
			maxInFlight = inFlight
		}
		mu.Unlock()

		time.Sleep(5 * time.Millisecond)

		mu.Lock()
		inFlight--
		mu.Unlock()
		return nil, nil
	})

	assert.LessOrEqual(t, maxInFlight, 3, "worker pool must respect the concurrency limit")
	assert.Greater(t, maxInFlight, 1, "work should actually overlap")
}

func TestRunRecordsFailuresWithoutStopping(t *testing.T) {
	urls := []string{"https://good.test", "https://bad.test", "https://also-good.test"}
	r := &Runner{Concurrency: 1}

	results := r.Run(context.Background(), urls, func(ctx context.Context, url string) (interface{}, error) {
		if url == "https://bad.test" {
			return nil, errors.New("navigation refused")
		}
		return "fine", nil
	})

	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.Equal(t, "navigation refused", results[1].Error)
	assert.True(t, results[2].OK, "a failing URL must not abort the rest of the batch")
}

func TestRunExcludesMatchingURLs(t *testing.T) {
	globs, err := CompileExcludes([]string{"*accounts*", "https://admin.test/*"})
	require.NoError(t, err)

	var processed []string
	var mu sync.Mutex
	r := &Runner{Concurrency: 2, Exclude: globs}

	results := r.Run(context.Background(), []string{
		"https://public.test/page",
		"https://accounts.test/login",
		"https://admin.test/panel",
	}, func(ctx context.Context, url string) (interface{}, error) {
		mu.Lock()
		processed = append(processed, url)
		mu.Unlock()
		return nil, nil
	})

	assert.Equal(t, []string{"https://public.test/page"}, processed)
	assert.False(t, results[1].OK)
	assert.True(t, results[1].Skipped)
	assert.True(t, results[2].Skipped)
}

func TestCompileExcludesRejectsBadPattern(t *testing.T) {
	_, err := CompileExcludes([]string{"[unclosed"})
	assert.Error(t, err)
}

func TestRunAppliesPerURLTimeout(t *testing.T) {
	r := &Runner{Concurrency: 1, Timeout: 10 * time.Millisecond}

	results := r.Run(context.Background(), []string{"https://slow.test"}, func(ctx context.Context, url string) (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Second):
			return "too late", nil
		}
	})

	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "deadline")
}

func TestRunHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Concurrency: 2}
	results := r.Run(ctx, []string{"https://a.test", "https://b.test"}, func(ctx context.Context, url string) (interface{}, error) {
		return nil, ctx.Err()
	})

	for _, res := range results {
		assert.False(t, res.OK)
	}
}

func TestRunDefaultConcurrency(t *testing.T) {
	r := &Runner{}
	results := r.Run(context.Background(), []string{"https://a.test"}, func(ctx context.Context, url string) (interface{}, error) {
		return nil, nil
	})
	require.Len(t, results, 1)
	assert.True(t, results[0].OK)
}
