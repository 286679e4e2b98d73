package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/mishasvintus/bugcake/internal/notify"
)

// publish sends an event and logs delivery failures. Notifications never fail the caller.
func publish(ctx context.Context, n notify.Notifier, log *zap.Logger, event notify.Event) {
	if n == nil {
		return
	}
	if err := n.Notify(ctx, event); err != nil {
		log.Warn("notification failed",
			zap.String("kind", string(event.Kind)),
			zap.String("resource", event.Resource.String()),
			zap.Error(err),
		)
	}
}
