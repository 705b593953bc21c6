package events

import (
	"fmt"
	"strconv"
	"strings"

	"channelpost/internal/models"
)

// MenuKind is a private-chat menu route.
type MenuKind string

const (
	MenuMain        MenuKind = "main"
	MenuPosts       MenuKind = "posts"
	MenuCollections MenuKind = "collections"
	MenuDeletePost  MenuKind = "delete"
)

// MenuRoute is a decoded private-chat callback.
type MenuRoute struct {
	Kind MenuKind
	Page int
}

// ParseMenuCallback decodes `menu:main` and `library:<view>:<page>`.
func ParseMenuCallback(data string) (MenuRoute, error) {
	if data == "menu:main" {
		return MenuRoute{Kind: MenuMain}, nil
	}

	parts := strings.Split(data, ":")
	if len(parts) != 3 || parts[0] != "library" {
		return MenuRoute{}, models.NewInvalidEventError(data)
	}
	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 1 {
		return MenuRoute{}, models.NewInvalidEventError(data)
	}

	switch kind := MenuKind(parts[1]); kind {
	case MenuPosts, MenuCollections, MenuDeletePost:
		return MenuRoute{Kind: kind, Page: page}, nil
	}
	return MenuRoute{}, models.NewInvalidEventError(data)
}

// MainMenuData is the callback data of the back-to-menu button.
func MainMenuData() string {
	return "menu:main"
}

// LibraryData encodes a library page button.
func LibraryData(kind MenuKind, page int) string {
	return fmt.Sprintf("library:%s:%d", kind, page)
}
