package events

import (
	"testing"

	"channelpost/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCallback(t *testing.T) {
	t.Parallel()

	tests := []struct {
		data    string
		want    Event
		wantErr bool
	}{
		{data: "react:like:42", want: Event{Action: ActionReact, Sub: "like", PostID: 42}},
		{data: "react:dislike:42", want: Event{Action: ActionReact, Sub: "dislike", PostID: 42}},
		{data: "collect:42", want: Event{Action: ActionCollect, PostID: 42}},
		{data: "comment:show:7", want: Event{Action: ActionComment, Sub: "show", PostID: 7}},
		{data: "comment:hide:7", want: Event{Action: ActionComment, Sub: "hide", PostID: 7}},
		{data: "comment:refresh:7", want: Event{Action: ActionComment, Sub: "refresh", PostID: 7}},
		{data: "react:love:42", wantErr: true},
		{data: "react:like", wantErr: true},
		{data: "react:like:abc", wantErr: true},
		{data: "react:like:-1", wantErr: true},
		{data: "collect:1:2", wantErr: true},
		{data: "comment:open:7", wantErr: true},
		{data: "approve:7", wantErr: true},
		{data: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.data, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCallback(tt.data)
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeInvalidEvent), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCallbackRoundTrip(t *testing.T) {
	t.Parallel()

	for _, data := range []string{
		ReactData(9, models.ToggleLike),
		ReactData(9, models.ToggleDislike),
		CollectData(9),
		CommentData(9, CommentShow),
		CommentData(9, CommentRefresh),
		CommentData(9, CommentHide),
	} {
		assert.True(t, IsChannelCallback(data), data)
		_, err := ParseCallback(data)
		assert.NoError(t, err, data)
	}
	assert.False(t, IsChannelCallback("library:posts:1"))
}

func TestParseStartPayload(t *testing.T) {
	t.Parallel()

	parent := uint(5)
	tests := []struct {
		payload string
		want    StartPayload
		wantErr bool
	}{
		{payload: "", want: StartPayload{Kind: StartMain}},
		{payload: "main", want: StartPayload{Kind: StartMain}},
		{payload: "thread_expand_100_5", want: StartPayload{Kind: StartThreadExpand, PostID: 100, CommentID: 5}},
		{payload: "thread_collapse_100", want: StartPayload{Kind: StartThreadCollapse, PostID: 100}},
		{payload: "comment_100", want: StartPayload{Kind: StartComment, PostID: 100}},
		{payload: "comment_100_5", want: StartPayload{Kind: StartComment, PostID: 100, ParentID: &parent}},
		{payload: "manage_comments_100", want: StartPayload{Kind: StartManageComments, PostID: 100}},
		{payload: "thread_expand_100", wantErr: true},
		{payload: "thread_expand_100_x", wantErr: true},
		{payload: "thread_collapse_", wantErr: true},
		{payload: "comment_1_2_3", wantErr: true},
		{payload: "unknown", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			t.Parallel()
			got, err := ParseStartPayload(tt.payload)
			if tt.wantErr {
				assert.True(t, models.IsCode(err, models.CodeInvalidEvent))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestStartPayload_Event(t *testing.T) {
	t.Parallel()

	p, err := ParseStartPayload(ExpandPayload(3, 8))
	require.NoError(t, err)
	ev, ok := p.Event()
	require.True(t, ok)
	assert.Equal(t, Event{Action: ActionThreadExpand, PostID: 3, CommentID: 8}, ev)

	p, err = ParseStartPayload(CollapsePayload(3))
	require.NoError(t, err)
	ev, ok = p.Event()
	require.True(t, ok)
	assert.Equal(t, Event{Action: ActionThreadCollapse, PostID: 3}, ev)

	p, err = ParseStartPayload(CommentPayload(3, nil))
	require.NoError(t, err)
	_, ok = p.Event()
	assert.False(t, ok)
	assert.Equal(t, "manage_comments_3", ManagePayload(3))
}

func TestParseMenuCallback(t *testing.T) {
	t.Parallel()

	got, err := ParseMenuCallback(LibraryData(MenuPosts, 2))
	require.NoError(t, err)
	assert.Equal(t, MenuRoute{Kind: MenuPosts, Page: 2}, got)

	got, err = ParseMenuCallback(MainMenuData())
	require.NoError(t, err)
	assert.Equal(t, MenuMain, got.Kind)

	for _, bad := range []string{"library:posts:0", "library:posts", "library:other:1", "menu:other"} {
		_, err := ParseMenuCallback(bad)
		assert.Error(t, err, bad)
	}
}

func TestEvent_ToggleKind(t *testing.T) {
	t.Parallel()

	kind, ok := Event{Action: ActionReact, Sub: "dislike"}.ToggleKind()
	assert.True(t, ok)
	assert.Equal(t, models.ToggleDislike, kind)

	kind, ok = Event{Action: ActionCollect}.ToggleKind()
	assert.True(t, ok)
	assert.Equal(t, models.ToggleCollect, kind)

	_, ok = Event{Action: ActionComment, Sub: "show"}.ToggleKind()
	assert.False(t, ok)
}
