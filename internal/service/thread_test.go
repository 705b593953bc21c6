package service

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"channelpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// threadFixture builds top-level comments 1..len(replyCounts), each with the
// given number of replies, in display order.
func threadFixture(replyCounts ...int) []*models.Comment {
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	var out []*models.Comment
	next := uint(1)
	for i, n := range replyCounts {
		top := &models.Comment{
			ID:               next,
			ChannelMessageID: 10,
			UserID:           int64(100 + i),
			UserName:         fmt.Sprintf("user%d", i),
			CommentText:      fmt.Sprintf("top %d", i+1),
			Timestamp:        base.Add(time.Duration(next) * time.Minute),
		}
		next++
		out = append(out, top)
		for r := 0; r < n; r++ {
			parent := top.ID
			out = append(out, &models.Comment{
				ID:               next,
				ChannelMessageID: 10,
				UserID:           200,
				UserName:         "replier",
				CommentText:      fmt.Sprintf("reply %d.%d", i+1, r+1),
				ParentID:         &parent,
				Timestamp:        base.Add(time.Duration(next) * time.Minute),
			})
			next++
		}
	}
	return out
}

func builderFor(comments []*models.Comment, rowCap int) *ThreadBuilder {
	repo := noopCommentRepo()
	repo.listByPostFn = func(_ context.Context, _ int64) ([]*models.Comment, error) { return comments, nil }
	return NewThreadBuilder(repo, testLinks, rowCap)
}

func TestThreadBuilder_EmptyPlaceholder(t *testing.T) {
	t.Parallel()

	text, count, err := builderFor(nil, 0).Build(context.Background(), 10, nil, CaptionLimit)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
	assert.Contains(t, text, CommentSectionMarker)
	assert.Contains(t, text, "No comments yet")
}

func TestThreadBuilder_RevealThreshold(t *testing.T) {
	t.Parallel()

	t.Run("two replies render inline without expand", func(t *testing.T) {
		t.Parallel()
		text, count, err := builderFor(threadFixture(2), 0).Build(context.Background(), 10, nil, CaptionLimit)
		require.NoError(t, err)
		assert.Equal(t, 3, count)
		assert.Contains(t, text, "reply 1.1")
		assert.Contains(t, text, "reply 1.2")
		assert.NotContains(t, text, "thread_expand_")
		assert.NotContains(t, text, "thread_collapse_")
	})

	t.Run("three replies hide behind expand", func(t *testing.T) {
		t.Parallel()
		text, count, err := builderFor(threadFixture(3), 0).Build(context.Background(), 10, nil, CaptionLimit)
		require.NoError(t, err)
		assert.Equal(t, 4, count)
		assert.NotContains(t, text, "reply 1.1")
		assert.Contains(t, text, "https://t.me/postbot?start=thread_expand_10_1")
		assert.Contains(t, text, "Show 3 replies")
	})

	t.Run("expanded thread shows all replies and collapse", func(t *testing.T) {
		t.Parallel()
		text, _, err := builderFor(threadFixture(3, 4), 0).Build(context.Background(), 10, uintPtr(1), CaptionLimit)
		require.NoError(t, err)
		for r := 1; r <= 3; r++ {
			assert.Contains(t, text, fmt.Sprintf("reply 1.%d", r))
		}
		assert.Contains(t, text, "thread_collapse_10")
		// Only one thread is expanded at a time.
		assert.NotContains(t, text, "reply 2.1")
		assert.Contains(t, text, "thread_expand_10_5")
	})

	t.Run("expand disappears after a deletion brings replies to two", func(t *testing.T) {
		t.Parallel()
		comments := threadFixture(3)
		comments = comments[:len(comments)-1]
		text, _, err := builderFor(comments, 0).Build(context.Background(), 10, uintPtr(1), CaptionLimit)
		require.NoError(t, err)
		assert.NotContains(t, text, "thread_expand_")
		assert.NotContains(t, text, "thread_collapse_")
	})
}

func TestThreadBuilder_OrderAndNumbering(t *testing.T) {
	t.Parallel()

	text, _, err := builderFor(threadFixture(0, 1, 0), 0).Build(context.Background(), 10, nil, CaptionLimit)
	require.NoError(t, err)

	first := strings.Index(text, "1. ")
	second := strings.Index(text, "2. ")
	third := strings.Index(text, "3. ")
	require.True(t, first >= 0 && second > first && third > second, text)
	assert.True(t, strings.Index(text, "reply 2.1") > second)
	assert.True(t, strings.Index(text, "reply 2.1") < third)
}

func TestThreadBuilder_Deterministic(t *testing.T) {
	t.Parallel()

	b := builderFor(threadFixture(1, 3, 2, 0), 0)
	first, _, err := b.Build(context.Background(), 10, nil, CaptionLimit)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, _, err := b.Build(context.Background(), 10, nil, CaptionLimit)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestThreadBuilder_EscapesUserText(t *testing.T) {
	t.Parallel()

	comments := []*models.Comment{{
		ID:               1,
		ChannelMessageID: 10,
		UserID:           5,
		UserName:         "<b>eve</b>",
		CommentText:      `<script>alert("x")</script> & more`,
	}}
	text, _, err := builderFor(comments, 0).Build(context.Background(), 10, nil, CaptionLimit)
	require.NoError(t, err)
	assert.NotContains(t, text, "<script>")
	assert.NotContains(t, text, "<b>eve</b>")
	assert.Contains(t, text, "&lt;script&gt;")
	assert.Contains(t, text, "&amp; more")
}

func TestThreadBuilder_RowCap(t *testing.T) {
	t.Parallel()

	// Four threads of one row each with a cap of 3 leaves one out.
	text, count, err := builderFor(threadFixture(0, 0, 0, 0), 3).Build(context.Background(), 10, nil, CaptionLimit)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
	assert.Contains(t, text, "top 3")
	assert.NotContains(t, text, "top 4")
	assert.Contains(t, text, "… and 1 more")

	// A single expanded thread larger than the cap is cut, not dropped.
	text, _, err = builderFor(threadFixture(10), 4).Build(context.Background(), 10, uintPtr(1), CaptionLimit)
	require.NoError(t, err)
	assert.Contains(t, text, "top 1")
	assert.Contains(t, text, "reply 1.2")
	assert.NotContains(t, text, "reply 1.4")
}

func TestThreadBuilder_ReplyAffordance(t *testing.T) {
	t.Parallel()

	text, _, err := builderFor(threadFixture(1), 0).Build(context.Background(), 10, nil, CaptionLimit)
	require.NoError(t, err)
	assert.Contains(t, text, "start=comment_10_1")
	assert.Contains(t, text, "start=comment_10_2")
}

func TestVisibleLen(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 4, visibleLen(`<a href="tg://user?id=1">é&amp;😀</a>`))
	assert.Equal(t, 6, visibleLen("a\n&lt;b&gt;\n"))
	assert.Equal(t, "ab…", fitVisible("abcdef", 3, "…"))
	assert.Equal(t, "…", fitVisible("😀😀", 2, "…"))
}

func TestThreadBuilder_CaptionLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	surfaces := NewSurfaceBuilder(testLinks)

	t.Run("busy post stops before the limit", func(t *testing.T) {
		t.Parallel()
		comments := threadFixture(0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0)
		for _, c := range comments {
			c.CommentText = strings.Repeat("ж", commentPreviewRunes)
		}
		post := &models.Submission{ChannelMessageID: 10, UserID: 1, UserName: "author", ContentText: strings.Repeat("p", 200)}

		budget := surfaces.ThreadBudget(post, true)
		thread, count, err := builderFor(comments, 12).Build(ctx, 10, nil, budget)
		require.NoError(t, err)
		assert.Equal(t, 12, count)
		assert.LessOrEqual(t, visibleLen(thread), budget)
		assert.Contains(t, thread, "1. ")
		assert.Regexp(t, `… and \d+ more$`, thread)

		surface := surfaces.Build(post, true, models.Counts{Comments: 12}, models.ExpandedState(nil), thread)
		assert.LessOrEqual(t, visibleLen(surface.Caption), CaptionLimit)
	})

	t.Run("oversized thread is cut to fit", func(t *testing.T) {
		t.Parallel()
		text, _, err := builderFor(threadFixture(10), 12).Build(ctx, 10, uintPtr(1), 200)
		require.NoError(t, err)
		assert.LessOrEqual(t, visibleLen(text), 200)
		assert.Contains(t, text, "top 1")
		assert.True(t, strings.HasSuffix(text, "\n   …"), text)
	})

	t.Run("no room leaves the block out", func(t *testing.T) {
		t.Parallel()
		text, count, err := builderFor(threadFixture(1), 0).Build(ctx, 10, nil, 1)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
		assert.Empty(t, text)
	})

	t.Run("long post text is shortened", func(t *testing.T) {
		t.Parallel()
		post := &models.Submission{ChannelMessageID: 10, UserID: 1, UserName: "author", ContentText: strings.Repeat("😀", 700)}

		collapsed := surfaces.Build(post, true, models.Counts{}, models.CollapsedState(), "")
		assert.LessOrEqual(t, visibleLen(collapsed.Caption), CaptionLimit)
		assert.Contains(t, collapsed.Caption, "…\n\n"+footerRule)
		assert.LessOrEqual(t, surfaces.ThreadBudget(post, true), 1)
	})
}
