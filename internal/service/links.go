package service

import (
	"fmt"
	"html"
	"unicode/utf16"

	"github.com/microcosm-cc/bluemonday"
)

// CaptionLimit is the most visible characters a media caption may carry.
const CaptionLimit = 1024

var markup = bluemonday.StrictPolicy()

// Links builds the t.me URLs embedded in captions, buttons and messages.
type Links struct {
	BotUsername     string
	ChannelUsername string
}

// Start is a deep link into the bot's private chat.
func (l Links) Start(payload string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", l.BotUsername, payload)
}

// Post is the public URL of a channel message.
func (l Links) Post(postID int64) string {
	return fmt.Sprintf("https://t.me/%s/%d", l.ChannelUsername, postID)
}

func userLink(userID int64, name string) string {
	return fmt.Sprintf(`<a href="tg://user?id=%d">%s</a>`, userID, escape(name))
}

func anchor(url, text string) string {
	return fmt.Sprintf(`<a href="%s">%s</a>`, url, text)
}

// escape neutralises the HTML subset the chat platform parses.
func escape(s string) string {
	return html.EscapeString(s)
}

// truncate cuts s to n runes and marks the cut with suffix.
func truncate(s string, n int, suffix string) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + suffix
}

// visibleLen measures rendered HTML the way the chat platform counts caption
// length: tags dropped, entities decoded, in UTF-16 code units.
func visibleLen(s string) int {
	return utf16Len(html.UnescapeString(markup.Sanitize(s)))
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// fitVisible cuts plain text to at most n UTF-16 units, suffix included.
func fitVisible(s string, n int, suffix string) string {
	if utf16Len(s) <= n {
		return s
	}
	room := n - utf16Len(suffix)
	if room <= 0 {
		return ""
	}
	used := 0
	for i, r := range s {
		w := utf16.RuneLen(r)
		if used+w > room {
			return s[:i] + suffix
		}
		used += w
	}
	return s
}
