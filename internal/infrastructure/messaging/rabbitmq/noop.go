package rabbitmq

import (
	"context"

	"github.com/baechuer/admin-dashboard/services/account-service/internal/application/accounts"
	"github.com/baechuer/admin-dashboard/services/account-service/internal/logger"
)

// NoopPublisher stands in for the broker when RABBIT_URL is unset. It only
// logs the event at debug level.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (NoopPublisher) PublishAccountEvent(ctx context.Context, evt accounts.AccountEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("event", string(evt.Type)).
		Str("account_id", evt.AccountID).
		Msg("[noop-pub] account event")
	return nil
}
