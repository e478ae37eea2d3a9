// Package common provides shared types and utilities for UI features.
package common

import (
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/metastore/internal/ui/flash"
)

// PageData carries what the shell needs on every full page render.
type PageData struct {
	Title       string
	CurrentPath string
	IsDev       bool
	Toast       *flash.Toast
}

// NavItem is one sidebar link.
type NavItem struct {
	Label string
	Href  string
	Icon  string
}

// Nav lists the sidebar links in display order.
var Nav = []NavItem{
	{Label: "Dashboard", Href: "/", Icon: "▦"},
	{Label: "Models", Href: "/models", Icon: "▤"},
	{Label: "Create Model", Href: "/models/create", Icon: "+"},
	{Label: "Settings", Href: "/settings", Icon: "⚙"},
}

// NewPageData returns the shell data for a full page, consuming the pending
// toast. It must run before the response header is written.
func NewPageData(w http.ResponseWriter, r *http.Request, store sessions.Store, title string, isDev bool) PageData {
	return PageData{
		Title:       title,
		CurrentPath: r.URL.Path,
		IsDev:       isDev,
		Toast:       flash.Pop(store, w, r),
	}
}
