package app

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"

	"github.com/five82/shelf/internal/catalog"
	"github.com/five82/shelf/internal/product"
	"github.com/five82/shelf/internal/state"
)

const (
	defaultRefreshInterval = 15 * time.Second
	maxBackoff             = 2 * time.Minute
)

// catalogSource is the part of the reconciler the refresher drives.
type catalogSource interface {
	Reload(ctx context.Context) catalog.LoadResult
	Products() []product.Product
	Categories(ctx context.Context) ([]product.Category, error)
}

// StartRefresher launches a background goroutine that reloads the latest
// requested catalog query and publishes the merged view to store. It waits one
// interval before the first reload and backs off while the API keeps
// failing. It returns immediately.
func StartRefresher(ctx context.Context, store *state.Store, src catalogSource, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 {
		interval = defaultRefreshInterval
	}
	go func() {
		for {
			wait := calculateBackoff(store.Snapshot().ConsecutiveFailures, interval)
			timer := time.NewTimer(wait)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			refresh(ctx, store, src, log)
		}
	}()
}

// calculateBackoff doubles the base interval per consecutive failure,
// capped at maxBackoff.
func calculateBackoff(failures int, base time.Duration) time.Duration {
	if failures <= 0 {
		return base
	}
	backoff := base
	for range failures {
		backoff *= 2
		if backoff >= maxBackoff {
			return maxBackoff
		}
	}
	return backoff
}

// refresh reloads the requested query and records the outcome.
func refresh(ctx context.Context, store *state.Store, src catalogSource, log zerolog.Logger) catalog.LoadResult {
	return publish(ctx, store, src, src.Reload(ctx), log)
}

// publish records a load outcome in store. Superseded responses are
// dropped without touching the failure count.
func publish(ctx context.Context, store *state.Store, src catalogSource, res catalog.LoadResult, log zerolog.Logger) catalog.LoadResult {
	if res.Stale {
		return res
	}
	if !res.Success {
		store.Update(nil, nil, errors.New(res.Message))
		log.Warn().Str("reason", res.Message).Msg("catalog refresh failed")
		return res
	}

	categories, err := src.Categories(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("category refresh failed")
		categories = nil
	}
	store.Update(src.Products(), categories, nil)
	return res
}
