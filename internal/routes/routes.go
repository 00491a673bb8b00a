// Package routes is the shell's client-side route table. Paths are matched
// with a gorilla/mux router so parameterised routes resolve the same way the
// backend's do.
package routes

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
)

// Route names.
const (
	Login          = "login"
	Dashboard      = "dashboard"
	Items          = "items"
	NewItem        = "item.new"
	ViewItem       = "item.view"
	EditProfile    = "profile.edit"
	ChangePassword = "profile.password"
	History        = "history"
	Tickets        = "tickets"
	Orders         = "orders"
	StockIn        = "stock.in"
	StockOut       = "stock.out"
	LowStock       = "report.lowstock"
)

// Route is one entry in the table.
type Route struct {
	Name    string
	Pattern string
	Title   string
	// Auth routes are only reachable with a usable credential.
	Auth bool
}

var table = []Route{
	{Login, "/", "Sign in", false},
	{Dashboard, "/admin-dashboard", "Dashboard", true},
	{Items, "/item", "Inventory Items", true},
	{NewItem, "/item/add-item", "New Inventory Item", true},
	{ViewItem, "/item/view-item/{itemID}", "Item Details", true},
	{EditProfile, "/userprofile/editprofile", "Edit Profile", true},
	{ChangePassword, "/userprofile/changepassword", "Change Password", true},
	{History, "/history/{userId}", "Activity History", true},
	{Tickets, "/ticket", "Tickets", true},
	{Orders, "/order", "Orders", true},
	{StockIn, "/stockIn", "Stock In", true},
	{StockOut, "/stockOut", "Stock Out", true},
	{LowStock, "/report/low-stock-report", "Low Stock Report", true},
}

// Match is a resolved path.
type Match struct {
	Route
	Path string
	Vars map[string]string
}

// Table resolves and builds shell paths.
type Table struct {
	router *mux.Router
	byName map[string]Route
}

// New builds the route table.
func New() *Table {
	t := &Table{router: mux.NewRouter(), byName: make(map[string]Route, len(table))}
	for _, r := range table {
		t.router.Path(r.Pattern).Name(r.Name)
		t.byName[r.Name] = r
	}
	return t
}

// Resolve matches path against the table.
func (t *Table) Resolve(path string) (Match, bool) {
	req := &http.Request{Method: http.MethodGet, URL: &url.URL{Path: path}}
	var rm mux.RouteMatch
	if !t.router.Match(req, &rm) || rm.Route == nil {
		return Match{}, false
	}
	r := t.byName[rm.Route.GetName()]
	return Match{Route: r, Path: path, Vars: rm.Vars}, true
}

// Path builds the path of the named route from key/value pairs.
func (t *Table) Path(name string, pairs ...string) (string, error) {
	mr := t.router.Get(name)
	if mr == nil {
		return "", fmt.Errorf("routes: unknown route %q", name)
	}
	u, err := mr.URLPath(pairs...)
	if err != nil {
		return "", fmt.Errorf("routes: build %s: %w", name, err)
	}
	return u.Path, nil
}

// Get returns the named route.
func (t *Table) Get(name string) (Route, bool) {
	r, ok := t.byName[name]
	return r, ok
}

// Title returns the display title for path, or the path itself when it is
// not in the table.
func (t *Table) Title(path string) string {
	if m, ok := t.Resolve(path); ok {
		return m.Title
	}
	return strings.TrimPrefix(path, "/")
}

// MenuEntry is one line of the profile menu.
type MenuEntry struct {
	Label string
	// Path is empty for actions that do not navigate.
	Path   string
	Logout bool
}

// Menu returns the profile menu. The history entry points at the user's own
// history and is left out when no usable user id is known; Logout is listed
// only when authenticated.
func (t *Table) Menu(authenticated bool, userID string) []MenuEntry {
	var entries []MenuEntry
	add := func(label, name string, pairs ...string) {
		p, err := t.Path(name, pairs...)
		if err != nil {
			return
		}
		entries = append(entries, MenuEntry{Label: label, Path: p})
	}
	add("Edit Profile", EditProfile)
	if userID != "" {
		add("View History", History, "userId", userID)
	}
	add("Change Password", ChangePassword)
	if authenticated {
		entries = append(entries, MenuEntry{Label: "Logout", Logout: true})
	}
	return entries
}
