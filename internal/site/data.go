package site

import (
	"net/url"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/jobboard"
	"github.com/azenia/website/internal/relay"
)

// Notice is a one-shot message shown above a form.
type Notice struct {
	Success bool
	Message string
}

// Stat is a headline number on the home page.
type Stat struct {
	Value string
	Label string
}

// HomeStats are the headline numbers on the home page.
var HomeStats = []Stat{
	{"25+", "Years of Experience"},
	{"500+", "Client Engagements"},
	{"98%", "Client Satisfaction"},
	{"50+", "Industry Awards"},
}

// HomeData feeds the home page.
type HomeData struct {
	Logos    []db.ClientLogo
	Stats    []Stat
	Openings []db.Job
}

// CareersData feeds the careers page.
type CareersData struct {
	Openings []db.Job
}

// JobsData feeds the job board.
type JobsData struct {
	Filter      jobboard.Filter
	Jobs        []db.Job
	Total       int
	Departments []string
	Selected    *db.Job
	Application FormData
}

// AdminData feeds the admin panel.
type AdminData struct {
	Jobs    []db.Job
	Editing *db.Job
	Logos   []db.ClientLogo
	Notice  *Notice
}

// FormData carries a form's submitted values back to the page.
type FormData struct {
	Values url.Values
	Notice *Notice
}

// Get returns a submitted value.
func (f FormData) Get(key string) string {
	return f.Values.Get(key)
}

// Checked reports whether a checkbox was submitted.
func (f FormData) Checked(key string) bool {
	return f.Values.Has(key)
}

// ContactData feeds the contact page.
type ContactData struct {
	Form       FormData
	Categories []relay.Option
}

// PartnerData feeds the partner page.
type PartnerData struct {
	Form        FormData
	Services    []relay.Option
	Specialties []relay.Option
	Offices     []relay.Option
}

// NewContactData returns contact page data with the category options.
func NewContactData(form FormData) ContactData {
	return ContactData{Form: form, Categories: relay.ContactCategories}
}

// NewPartnerData returns partner page data with its option lists.
func NewPartnerData(form FormData) PartnerData {
	return PartnerData{
		Form:        form,
		Services:    relay.PartnerServices,
		Specialties: relay.PartnerSpecialties,
		Offices:     relay.PartnerOffices,
	}
}

// LoginData feeds the login page.
type LoginData struct {
	Email string
	Error string
	Next  string
}
