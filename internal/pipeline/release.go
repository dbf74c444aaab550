package pipeline

import (
	"errors"
	"fmt"
	"log/slog"
)

// releaseList holds the cleanup actions for resources a run acquired.
// Actions run in reverse registration order when the list drains.
type releaseList struct {
	items []releaseItem
}

type releaseItem struct {
	what string
	fn   func() error
}

// add registers fn to release what.
func (r *releaseList) add(what string, fn func() error) {
	r.items = append(r.items, releaseItem{what: what, fn: fn})
}

// drain runs every action, newest first, even when some fail.
// Each failure is logged as a warning; the combined error is returned.
// The list is empty afterwards, so a second drain is a no-op.
func (r *releaseList) drain(logger *slog.Logger) error {
	var errs []error
	for i := len(r.items) - 1; i >= 0; i-- {
		item := r.items[i]
		if err := item.fn(); err != nil {
			logger.Warn("cleanup failed", "resource", item.what, "error", err)
			errs = append(errs, fmt.Errorf("release %s: %w", item.what, err))
		}
	}
	r.items = nil
	return errors.Join(errs...)
}
