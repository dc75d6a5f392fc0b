// Package viewmodel turns one user action on a page into a bounded set of
// concurrent API calls and keeps the page's state.
//
// Every page follows the same rules:
//   - Starting an action cancels the one still in flight. Only the newest
//     action may write state, so a slow stale response never replaces a fresh one.
//   - Each fetch in an action is Required or Optional. An Optional failure is
//     logged and replaced by a fallback. Any Required failure fails the whole
//     action with a single error and leaves the previous results in place.
//   - Local validation runs before anything touches the network.
package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"cropsense/internal/metrics"
	"cropsense/internal/models"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrSuperseded is returned by an action that was replaced by a newer one
// before it finished. Its results were discarded.
var ErrSuperseded = errors.New("superseded by a newer request")

// Tier is how much a page depends on one fetch
type Tier int

const (
	Required Tier = iota
	Optional
)

// fetch is one API call in an action
type fetch struct {
	name     string
	tier     Tier
	call     func(ctx context.Context) error
	fallback func()
}

// gather runs fetches concurrently. It returns the first Required failure;
// the remaining fetches are cancelled when that happens.
func gather(ctx context.Context, logger *zap.Logger, fetches ...fetch) error {
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range fetches {
		f := f
		g.Go(func() error {
			err := f.call(gctx)
			if err == nil {
				return nil
			}
			if f.tier == Optional {
				logger.Warn("optional fetch failed, using fallback",
					zap.String("fetch", f.name), zap.Error(err))
				if f.fallback != nil {
					f.fallback()
				}
				return nil
			}
			return fmt.Errorf("%s: %w", f.name, err)
		})
	}
	return g.Wait()
}

// run sequences the actions of one page. The page's state shares mu.
type run struct {
	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
}

// beginLocked cancels the in-flight action and starts a new generation.
// Caller holds mu.
func (r *run) beginLocked(ctx context.Context) (context.Context, uint64) {
	if r.cancel != nil {
		r.cancel()
	}
	r.gen++
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	return ctx, r.gen
}

// finishLocked reports whether gen is still the newest action and, if so,
// releases its context. Caller holds mu.
func (r *run) finishLocked(gen uint64) bool {
	if gen != r.gen {
		return false
	}
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	return true
}

// cancelLocked stops the in-flight action, if any. Its results will be
// discarded. Caller holds mu.
func (r *run) cancelLocked() {
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.gen++
}

func record(page string, err error) {
	switch {
	case err == nil:
		metrics.RecordViewModelRun(page, "success")
	case errors.Is(err, ErrSuperseded):
		metrics.RecordViewModelRun(page, "superseded")
	case errors.Is(err, models.ErrValidation):
		metrics.RecordViewModelRun(page, "invalid")
	default:
		metrics.RecordViewModelRun(page, "error")
	}
}
