package models

// SessionKind is the private-chat workflow a user is in.
type SessionKind string

const (
	SessionComment       SessionKind = "comment"
	SessionDeleteComment SessionKind = "delete_comment"
	SessionDeletePost    SessionKind = "delete_post"
)

// Session is the pending private-chat state of one user. Numbered menus keep
// the number-to-id mapping that was displayed so a reply resolves against
// exactly what the user saw.
type Session struct {
	Kind     SessionKind   `json:"kind"`
	PostID   int64         `json:"post_id,omitempty"`
	ParentID *uint         `json:"parent_id,omitempty"`
	Page     int           `json:"page,omitempty"`
	Menu     map[int]uint  `json:"menu,omitempty"`
	Posts    map[int]int64 `json:"posts,omitempty"`
}
