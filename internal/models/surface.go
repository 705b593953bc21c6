package models

// ViewMode is how a post's surface is rendered.
type ViewMode string

const (
	ViewCollapsed ViewMode = "collapsed"
	ViewExpanded  ViewMode = "expanded"
)

// ViewState is the persisted render state of one post: its mode, the single
// expanded thread (if any) and the last surface successfully displayed.
type ViewState struct {
	Mode       ViewMode `json:"mode"`
	ExpandedID *uint    `json:"expanded_id,omitempty"`
	Displayed  *Surface `json:"displayed,omitempty"`
}

// CollapsedState is the initial state of a freshly published post.
func CollapsedState() ViewState {
	return ViewState{Mode: ViewCollapsed}
}

// ExpandedState opens the comment section with an optional expanded thread.
func ExpandedState(expandedID *uint) ViewState {
	return ViewState{Mode: ViewExpanded, ExpandedID: expandedID}
}

// Button is a single inline control. Exactly one of Data or URL is set.
type Button struct {
	Text string `json:"text"`
	Data string `json:"data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// Layout is the rows of inline controls under a post.
type Layout [][]Button

// Equal compares two layouts button by button.
func (l Layout) Equal(other Layout) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if len(l[i]) != len(other[i]) {
			return false
		}
		for j := range l[i] {
			if l[i][j] != other[i][j] {
				return false
			}
		}
	}
	return true
}

// Surface is what the channel displays for a post.
type Surface struct {
	Caption string `json:"caption"`
	Layout  Layout `json:"layout"`
}

// Equal reports whether both caption text and control layout match.
func (s Surface) Equal(other Surface) bool {
	return s.Caption == other.Caption && s.Layout.Equal(other.Layout)
}
