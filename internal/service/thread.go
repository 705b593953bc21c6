package service

import (
	"context"
	"fmt"
	"strings"

	"channelpost/internal/events"
	"channelpost/internal/models"
	"channelpost/internal/repository"
)

const (
	// CommentSectionMarker heads the comment block in an expanded caption.
	CommentSectionMarker = "💬 Comments"

	// Replies up to this many are always shown inline.
	revealThreshold = 2

	commentPreviewRunes = 80
	defaultRowCap       = 12
)

// ThreadBuilder flattens a post's two-level comment tree into a bounded
// caption block. At most one top-level comment is expanded at a time.
type ThreadBuilder struct {
	comments repository.CommentRepository
	links    Links
	rowCap   int
}

func NewThreadBuilder(comments repository.CommentRepository, links Links, rowCap int) *ThreadBuilder {
	if rowCap <= 0 {
		rowCap = defaultRowCap
	}
	return &ThreadBuilder{comments: comments, links: links, rowCap: rowCap}
}

// Build returns the rendered block and the total number of comments. The
// block takes at most budget visible characters of the caption. The output
// depends only on store contents, the expanded id and the budget.
func (b *ThreadBuilder) Build(ctx context.Context, postID int64, expanded *uint, budget int) (string, int, error) {
	all, err := b.comments.ListByPost(ctx, postID)
	if err != nil {
		return "", 0, err
	}
	if len(all) == 0 {
		empty := "\n\n" + CommentSectionMarker + "\n✨ No comments yet. Be the first!"
		if visibleLen(empty) > budget {
			return "", 0, nil
		}
		return empty, 0, nil
	}

	var tops []*models.Comment
	replies := make(map[uint][]*models.Comment)
	for _, c := range all {
		if c.IsTopLevel() {
			tops = append(tops, c)
			continue
		}
		replies[*c.ParentID] = append(replies[*c.ParentID], c)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n\n%s (%d)", CommentSectionMarker, len(all))
	size := visibleLen(sb.String())
	if size > budget {
		return "", len(all), nil
	}

	used := 0
	for i, top := range tops {
		block := b.block(postID, i+1, top, replies[top.ID], expanded)

		// Keep room for the trailer in case the next thread does not fit.
		room := budget - size
		if rest := len(tops) - i - 1; rest > 0 {
			room -= visibleLen(moreLine(rest))
		}

		if used+len(block) > b.rowCap || visibleLen(joinRows(block)) > room {
			if used > 0 {
				sb.WriteString(moreLine(len(tops) - i))
				break
			}
			// A single thread larger than the limits is cut rather than dropped.
			if block = b.cut(block, room); block == nil {
				if more := moreLine(len(tops) - i); size+visibleLen(more) <= budget {
					sb.WriteString(more)
				}
				break
			}
		}
		text := joinRows(block)
		sb.WriteString(text)
		size += visibleLen(text)
		used += len(block)
	}

	return sb.String(), len(all), nil
}

// cut keeps the leading rows of block that fit both the row cap and room,
// marking the cut. It returns nil when not even the first row fits.
func (b *ThreadBuilder) cut(block []string, room int) []string {
	for k := min(len(block), b.rowCap) - 1; k >= 1; k-- {
		rows := append(block[:k:k], "   …")
		if visibleLen(joinRows(rows)) <= room {
			return rows
		}
	}
	return nil
}

func joinRows(rows []string) string {
	return "\n" + strings.Join(rows, "\n")
}

func moreLine(n int) string {
	return fmt.Sprintf("\n… and %d more", n)
}

func (b *ThreadBuilder) block(postID int64, n int, top *models.Comment, replies []*models.Comment, expanded *uint) []string {
	rows := []string{fmt.Sprintf("%d. %s", n, b.line(postID, top))}

	isExpanded := expanded != nil && *expanded == top.ID
	switch {
	case len(replies) == 0:
	case len(replies) <= revealThreshold || isExpanded:
		for _, r := range replies {
			rows = append(rows, "   └ "+b.line(postID, r))
		}
		if len(replies) > revealThreshold {
			rows = append(rows, "   "+anchor(b.links.Start(events.CollapsePayload(postID)), "▴ Hide replies"))
		}
	default:
		label := fmt.Sprintf("▸ Show %d replies", len(replies))
		rows = append(rows, "   "+anchor(b.links.Start(events.ExpandPayload(postID, top.ID)), label))
	}
	return rows
}

func (b *ThreadBuilder) line(postID int64, c *models.Comment) string {
	id := c.ID
	text := escape(truncate(c.CommentText, commentPreviewRunes, "…"))
	return fmt.Sprintf("%s: %s %s",
		userLink(c.UserID, c.UserName),
		text,
		anchor(b.links.Start(events.CommentPayload(postID, &id)), "↩️"),
	)
}
