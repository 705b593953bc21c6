package service

import (
	"context"

	"channelpost/internal/gateway"
	"channelpost/internal/models"
	"channelpost/internal/observability"
)

// RenderOutcome is the reconciler's decision for one render.
type RenderOutcome string

const (
	RenderUnchanged RenderOutcome = "unchanged"
	RenderEdited    RenderOutcome = "edited"
	RenderFailed    RenderOutcome = "failed"
)

// RenderReconciler gates edits: a surface equal to the displayed one is
// never re-sent.
type RenderReconciler struct {
	gateway gateway.ChannelGateway
}

func NewRenderReconciler(gw gateway.ChannelGateway) *RenderReconciler {
	return &RenderReconciler{gateway: gw}
}

// Reconcile issues at most one edit. A nil displayed surface is unknown and
// always edits.
func (r *RenderReconciler) Reconcile(ctx context.Context, postID int64, displayed *models.Surface, target models.Surface) (RenderOutcome, error) {
	if displayed != nil && displayed.Equal(target) {
		observability.RenderOutcomes.WithLabelValues(string(RenderUnchanged)).Inc()
		return RenderUnchanged, nil
	}

	result, err := r.gateway.EditCaption(ctx, postID, target.Caption, target.Layout)
	if result != gateway.ResultOK {
		observability.RenderOutcomes.WithLabelValues(string(RenderFailed)).Inc()
		return RenderFailed, models.NewGatewayRejectedError("edit_caption "+string(result), err)
	}

	observability.RenderOutcomes.WithLabelValues(string(RenderEdited)).Inc()
	return RenderEdited, nil
}
