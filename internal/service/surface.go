package service

import (
	"fmt"
	"strings"

	"channelpost/internal/events"
	"channelpost/internal/models"
)

const (
	pinnedPrefix = "🔥 "
	footerRule   = "━━━━━━━━━━━━━━"
)

// SurfaceBuilder assembles the caption and inline controls of a post.
type SurfaceBuilder struct {
	links Links
}

func NewSurfaceBuilder(links Links) *SurfaceBuilder {
	return &SurfaceBuilder{links: links}
}

// Build composes the target surface for a view state. thread is only used
// in expanded mode.
func (b *SurfaceBuilder) Build(post *models.Submission, pinned bool, counts models.Counts, state models.ViewState, thread string) models.Surface {
	caption := b.caption(post, pinned)
	if state.Mode == models.ViewExpanded {
		return models.Surface{Caption: caption + thread, Layout: b.expandedLayout(post.ChannelMessageID)}
	}
	return models.Surface{Caption: caption, Layout: b.collapsedLayout(post.ChannelMessageID, counts)}
}

// ThreadBudget is what the caption limit leaves for the comment block once
// the post itself is rendered.
func (b *SurfaceBuilder) ThreadBudget(post *models.Submission, pinned bool) int {
	return max(CaptionLimit-visibleLen(b.caption(post, pinned)), 0)
}

func (b *SurfaceBuilder) caption(post *models.Submission, pinned bool) string {
	footer := fmt.Sprintf("\n\n%s\n👤 Author: %s  |  %s",
		footerRule,
		userLink(post.UserID, post.UserName),
		anchor(b.links.Start(string(events.StartMain)), "📱 My"),
	)
	var prefix string
	if pinned {
		prefix = pinnedPrefix
	}
	room := CaptionLimit - utf16Len(prefix) - visibleLen(footer)
	return prefix + escape(fitVisible(post.ContentText, room, "…")) + footer
}

func (b *SurfaceBuilder) collapsedLayout(postID int64, counts models.Counts) models.Layout {
	return models.Layout{
		{
			{Text: fmt.Sprintf("👍 %d", counts.Likes), Data: events.ReactData(postID, models.ToggleLike)},
			{Text: fmt.Sprintf("👎 %d", counts.Dislikes), Data: events.ReactData(postID, models.ToggleDislike)},
			{Text: fmt.Sprintf("⭐ %d", counts.Collections), Data: events.CollectData(postID)},
		},
		{
			{Text: fmt.Sprintf("💬 %d", counts.Comments), Data: events.CommentData(postID, events.CommentShow)},
		},
	}
}

func (b *SurfaceBuilder) expandedLayout(postID int64) models.Layout {
	return models.Layout{
		{
			{Text: "✍️ Comment", URL: b.links.Start(events.CommentPayload(postID, nil))},
			{Text: "🗑️ Delete", URL: b.links.Start(events.ManagePayload(postID))},
			{Text: "🔄 Refresh", Data: events.CommentData(postID, events.CommentRefresh)},
		},
		{
			{Text: "⬆️ Hide", Data: events.CommentData(postID, events.CommentHide)},
		},
	}
}

// InferMode recovers the view mode from a displayed caption when no state
// was persisted for the post.
func InferMode(displayedCaption string) models.ViewMode {
	if strings.Contains(displayedCaption, CommentSectionMarker) {
		return models.ViewExpanded
	}
	return models.ViewCollapsed
}
