package models

import "github.com/a-h/templ"

// NavItem is one link of the top bar.
type NavItem struct {
	Name string
	Path string
	Key  string
}

// MainNav is shown to signed-in users.
var MainNav = []NavItem{
	{Name: "View Itineraries", Path: "/my-itineraries", Key: "itineraries"},
	{Name: "Search Cities", Path: "/search-page", Key: "search"},
}

// LayoutTempl is everything the page shell renders around a page's content.
type LayoutTempl struct {
	Title     string
	Nav       []NavItem
	ActiveNav string
	User      *User
	Content   templ.Component
}
