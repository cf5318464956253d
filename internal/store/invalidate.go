package store

import (
	"context"

	"github.com/dmorgan81/promobot/internal/log"
)

type Invalidator interface {
	Invalidate(context.Context, []string) error
}

// NopInvalidator is used when no CDN sits in front of the artifacts.
type NopInvalidator struct{}

func (NopInvalidator) Invalidate(ctx context.Context, paths []string) error {
	log.FromContextOrDiscard(ctx).Debug("no distribution configured, skipping invalidation", "paths", paths)
	return nil
}
