package models

// Counts are the live interaction totals for one post.
type Counts struct {
	Likes       int64 `json:"likes"`
	Dislikes    int64 `json:"dislikes"`
	Comments    int64 `json:"comments"`
	Collections int64 `json:"collections"`
}

// ToggleKind selects the axis and value a toggle applies.
type ToggleKind string

const (
	ToggleLike    ToggleKind = "like"
	ToggleDislike ToggleKind = "dislike"
	ToggleCollect ToggleKind = "collect"
)

// ReactionValue maps like/dislike to their stored sign.
func (k ToggleKind) ReactionValue() int {
	if k == ToggleDislike {
		return ReactionDislike
	}
	return ReactionLike
}

// Transition is the state change a toggle produced.
type Transition string

const (
	// TransitionNone means a concurrent write for the same (post, user)
	// won and this call changed nothing.
	TransitionNone     Transition = "none"
	TransitionInserted Transition = "inserted"
	TransitionRemoved  Transition = "removed"
	TransitionSwitched Transition = "switched"
)

// ToggleResult is returned by the toggle service.
type ToggleResult struct {
	Kind       ToggleKind
	Transition Transition
}

// ProducesLike is true when the post gained a like: a fresh like or a
// dislike switched to like.
func (r ToggleResult) ProducesLike() bool {
	return r.Kind == ToggleLike &&
		(r.Transition == TransitionInserted || r.Transition == TransitionSwitched)
}

// NotificationKind returns the author notification the result implies, if any.
func (r ToggleResult) NotificationKind() (NotificationKind, bool) {
	switch {
	case r.ProducesLike():
		return NotifyLike, true
	case r.Kind == ToggleCollect && r.Transition == TransitionInserted:
		return NotifyCollect, true
	}
	return "", false
}
