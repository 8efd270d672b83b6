// Package site holds the page route table and renders the server-side pages.
package site

// Route maps a URL path to a page template.
type Route struct {
	Path         string
	Name         string
	Title        string
	Template     string
	RequiresAuth bool
}

var routes = []Route{
	{Path: "/", Name: "home", Title: "Azenia Technology Group", Template: "home"},
	{Path: "/our-services", Name: "services", Title: "Our Services", Template: "services"},
	{Path: "/industries", Name: "industries", Title: "Industries We Serve", Template: "industries"},
	{Path: "/about", Name: "about", Title: "About Us", Template: "about"},
	{Path: "/careers", Name: "careers", Title: "Careers", Template: "careers"},
	{Path: "/contact", Name: "contact", Title: "Contact Us", Template: "contact"},
	{Path: "/partner", Name: "partner", Title: "Partner With Us", Template: "partner"},
	{Path: "/jobs", Name: "jobs", Title: "Job Search", Template: "jobs"},
	{Path: "/admin", Name: "admin", Title: "Job Management", Template: "admin", RequiresAuth: true},
	{Path: "/login", Name: "login", Title: "Admin Login", Template: "login"},
}

// NotFound is rendered for unknown paths.
var NotFound = Route{Name: "not-found", Title: "Page Not Found", Template: "not-found"}

// Routes returns the page table in navigation order.
func Routes() []Route {
	out := make([]Route, len(routes))
	copy(out, routes)
	return out
}

// Lookup finds the route for an exact path.
func Lookup(path string) (Route, bool) {
	for _, r := range routes {
		if r.Path == path {
			return r, true
		}
	}
	return Route{}, false
}
