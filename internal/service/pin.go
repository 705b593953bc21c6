package service

import (
	"context"
	"log/slog"

	"channelpost/internal/gateway"
	"channelpost/internal/models"
	"channelpost/internal/observability"
	"channelpost/internal/repository"
)

// DefaultPinThreshold is the like count that promotes a post.
const DefaultPinThreshold = 100

// PinWatcher promotes a post once its likes reach the threshold. The unique
// pin record decides the single winner; losers see "already pinned".
type PinWatcher struct {
	pins      repository.PinRepository
	gateway   gateway.ChannelGateway
	notifier  *NotificationDispatcher
	threshold int64
}

func NewPinWatcher(pins repository.PinRepository, gw gateway.ChannelGateway, notifier *NotificationDispatcher, threshold int64) *PinWatcher {
	if threshold <= 0 {
		threshold = DefaultPinThreshold
	}
	return &PinWatcher{pins: pins, gateway: gw, notifier: notifier, threshold: threshold}
}

// Observe is called after a like-producing toggle. It reports whether this
// call promoted the post.
func (w *PinWatcher) Observe(ctx context.Context, post *models.Submission, likes int64) (bool, error) {
	if likes < w.threshold {
		return false, nil
	}

	exists, err := w.pins.Exists(ctx, post.ChannelMessageID)
	if err != nil || exists {
		return false, err
	}

	// The recorded count is the threshold itself so the row does not depend
	// on which concurrent like won.
	won, err := w.pins.Insert(ctx, post.ChannelMessageID, w.threshold)
	if err != nil || !won {
		return false, err
	}

	observability.PinsTotal.Inc()
	result, err := w.gateway.PinMessage(ctx, post.ChannelMessageID)
	if result != gateway.ResultOK && result != gateway.ResultAlreadyPinned {
		observability.Logger.WarnContext(ctx, "Pin message rejected",
			slog.String("result", string(result)),
			slog.Any("error", err),
		)
	}

	w.notifier.NotifyPromotion(ctx, post, likes)
	return true, nil
}
