package bot

import (
	"fmt"
	"html"
	"strings"

	"channelpost/internal/events"
	"channelpost/internal/models"
	"channelpost/internal/service"
)

const previewRunes = 40

func toast(res *service.EventResult) string {
	if res == nil || res.Toggle == nil {
		return ""
	}
	t := res.Toggle
	switch {
	case t.Transition == models.TransitionNone:
		return ""
	case t.Kind == models.ToggleCollect && t.Transition == models.TransitionInserted:
		return "⭐ Collected"
	case t.Kind == models.ToggleCollect:
		return "Removed from collection"
	case t.Transition == models.TransitionRemoved:
		return "Reaction removed"
	case t.Kind == models.ToggleLike:
		return "👍 Liked"
	default:
		return "👎 Disliked"
	}
}

func mainMenu() (string, models.Layout) {
	return "📱 <b>My menu</b>\n\nBrowse your posts and collections, or remove a post.", models.Layout{
		{
			{Text: "📝 My posts", Data: events.LibraryData(events.MenuPosts, 1)},
			{Text: "⭐ My collections", Data: events.LibraryData(events.MenuCollections, 1)},
		},
		{{Text: "🗑️ Delete a post", Data: events.LibraryData(events.MenuDeletePost, 1)}},
	}
}

func mainMenuButton() models.Layout {
	return models.Layout{{{Text: "⬅️ Main menu", Data: events.MainMenuData()}}}
}

func backToPost(links service.Links, postID int64) models.Layout {
	return models.Layout{{{Text: "↩️ Back to the post", URL: links.Post(postID)}}}
}

func postsPage(links service.Links, page *service.LibraryPage) (string, models.Layout) {
	if page.Total == 0 {
		return "📝 You have not published any posts yet.", mainMenuButton()
	}
	return listing("📝 <b>My posts</b>", links, page), pager(events.MenuPosts, page)
}

func collectionsPage(links service.Links, page *service.LibraryPage) (string, models.Layout) {
	if page.Total == 0 {
		return "⭐ Your collection is empty.", mainMenuButton()
	}
	return listing("⭐ <b>My collections</b>", links, page), pager(events.MenuCollections, page)
}

func deletePostPrompt(page *service.LibraryPage) string {
	if page.Total == 0 {
		return "🗑️ You have no posts to delete."
	}
	var b strings.Builder
	fmt.Fprintf(&b, "🗑️ <b>Delete a post</b> (page %d/%d)\n\n", page.Page, page.TotalPages)
	for i, post := range page.Items {
		fmt.Fprintf(&b, "%d. %s\n", i+1, preview(post.ContentText))
	}
	b.WriteString("\nSend the number of the post to delete, or /cancel.")
	return b.String()
}

func listing(title string, links service.Links, page *service.LibraryPage) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (page %d/%d, %d total)\n\n", title, page.Page, page.TotalPages, page.Total)
	for i, post := range page.Items {
		fmt.Fprintf(&b, "%d. <a href=\"%s\">%s</a>\n",
			page.Offset()+i+1, links.Post(post.ChannelMessageID), preview(post.ContentText))
	}
	return b.String()
}

func pager(kind events.MenuKind, page *service.LibraryPage) models.Layout {
	var nav []models.Button
	if page.Page > 1 {
		nav = append(nav, models.Button{Text: "⬅️ Prev", Data: events.LibraryData(kind, page.Page-1)})
	}
	if page.Page < page.TotalPages {
		nav = append(nav, models.Button{Text: "Next ➡️", Data: events.LibraryData(kind, page.Page+1)})
	}
	return append(models.Layout{nav}, mainMenuButton()...)
}

func deleteCommentMenu(links service.Links, menu *service.DeleteMenu) (string, models.Layout) {
	if menu.Size() == 0 {
		return "🗑️ There are no comments you can delete on this post.", backToPost(links, menu.PostID)
	}

	var b strings.Builder
	b.WriteString("🗑️ <b>Delete a comment</b>\n")
	if len(menu.Own) > 0 {
		b.WriteString("\n<b>Your comments</b>\n")
		writeEntries(&b, menu.Own)
	}
	if len(menu.Others) > 0 {
		b.WriteString("\n<b>Other comments on your post</b>\n")
		writeEntries(&b, menu.Others)
	}
	b.WriteString("\nSend the number of the comment to delete, or /cancel.")
	return b.String(), backToPost(links, menu.PostID)
}

func writeEntries(b *strings.Builder, entries []service.MenuEntry) {
	for _, e := range entries {
		fmt.Fprintf(b, "%d. %s: %s\n", e.Number, html.EscapeString(e.Comment.UserName), preview(e.Comment.CommentText))
	}
}

func commentDeleted(d *service.CommentDeletion) string {
	if d.Removed > 1 {
		return fmt.Sprintf("✅ Comment deleted with %d replies.", d.Removed-1)
	}
	return "✅ Comment deleted."
}

func postDeleted(d *service.PostDeletion) string {
	if !d.ChannelDeleted {
		return "✅ Post deleted. The channel message could not be removed, delete it by hand."
	}
	return "✅ Post deleted."
}

func preview(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > previewRunes {
		s = string(r[:previewRunes]) + "…"
	}
	return html.EscapeString(s)
}
