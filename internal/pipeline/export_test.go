package pipeline

import "log/slog"

// Exports for testing the release list from the black-box test package.

type ReleaseList = releaseList

func (r *releaseList) Add(what string, fn func() error) { r.add(what, fn) }

func (r *releaseList) Drain(logger *slog.Logger) error { return r.drain(logger) }

func (r *releaseList) Len() int { return len(r.items) }
