// Package nav describes the site navigation and models the header's
// dropdown and visibility behavior.
package nav

// MenuID identifies a top-level navigation entry.
type MenuID string

// Top-level menus.
const (
	Solutions  MenuID = "solutions"
	Industries MenuID = "industries"
	About      MenuID = "about"
	Careers    MenuID = "careers"
)

// Link is a navigation target.
type Link struct {
	Label       string
	Href        string
	Description string
}

// Section groups dropdown links under an optional title.
type Section struct {
	Title string
	Items []Link
}

// Dropdown is the panel opened by a top-level menu.
type Dropdown struct {
	Tabs     []Link
	Sections []Section
}

// Menu is a top-level navigation entry. Dropdown is nil for plain links.
type Menu struct {
	ID       MenuID
	Label    string
	Href     string
	Dropdown *Dropdown
}

const industrySolutions = "/our-services#industry-solutions"

func servicesItems(labels ...string) []Link {
	items := make([]Link, len(labels))
	for i, l := range labels {
		items[i] = Link{Label: l, Href: "/our-services"}
	}
	return items
}

// Menus returns the header navigation in display order.
func Menus() []Menu {
	return []Menu{
		{
			ID:    Solutions,
			Label: "Solutions",
			Href:  "/our-services",
			Dropdown: &Dropdown{
				Tabs: []Link{
					{Label: "Our Services", Href: "/our-services"},
					{Label: "Why Choose Us", Href: "/about"},
					{Label: "Partner With Us", Href: "/partner"},
				},
				Sections: []Section{
					{Title: "Consulting Services", Items: servicesItems(
						"Salesforce CRM Solutions", "Strategy Consulting", "Enterprise Architecture", "Project Management")},
					{Title: "Managed Services", Items: servicesItems(
						"IT Infrastructure Management", "Cloud Services", "Application Support", "Security Operations")},
					{Title: "Intelligence", Items: servicesItems(
						"AI & ML", "DataTech & Analytics", "MarTech", "Identity Management")},
					{Title: "Risk & Security", Items: servicesItems(
						"Cybersecurity", "GRC & Compliance", "Risk Assessment", "Penetration Testing / Threat Modeling")},
				},
			},
		},
		{
			ID:    Industries,
			Label: "Industries",
			Href:  "/industries",
			Dropdown: &Dropdown{
				Sections: []Section{
					{Items: []Link{
						{Label: "Business, Consulting & Technology Services", Href: industrySolutions,
							Description: "Modern Compliance Solutions for Consulting and Technology Firms That Can't Miss a Deadline"},
						{Label: "Financial Services", Href: industrySolutions,
							Description: "Proactive Compliance Software Built for Banks, Insurers, Credit Unions, and Investment Firms"},
						{Label: "Hospitality & Retail", Href: industrySolutions,
							Description: "Compliance Software Built to Keep Up With Every Shift, Store, and Staff Member"},
						{Label: "Manufacturing & Construction", Href: industrySolutions,
							Description: "Compliance Software to Keep Your Worksites Safe and Your Factories Running Smoothly"},
					}},
					{Items: []Link{
						{Label: "Education", Href: industrySolutions,
							Description: "Dynamic Compliance Solutions Designed to Safeguard Your Institution and the Learners and Leaders Who Depend on It"},
						{Label: "Government", Href: industrySolutions,
							Description: "Defensible Compliance Software Built to Help Federal, State, and Local Teams Respond Stay Audit-Ready"},
						{Label: "Insurance", Href: industrySolutions,
							Description: "Compliance Solutions to Keep Every Policy Defensible and Audit-Ready, Including Your Own"},
						{Label: "Media & Entertainment", Href: industrySolutions,
							Description: "Technology Solutions Built for Content, Confidentiality, and Everything Behind the Scenes"},
					}},
					{Items: []Link{
						{Label: "Energy & Utilities", Href: industrySolutions,
							Description: "Compliance Solutions to Help You Stay Current and Compliant Across Pipelines, Platforms, and Plants"},
						{Label: "Healthcare", Href: industrySolutions,
							Description: "Automated Compliance Solutions to Protect People, Data, and Patient Care Delivery"},
						{Label: "Law Firm Practice & Management", Href: industrySolutions,
							Description: "Automation & Compliance Built to Empower Law Firms and the Teams Running Them"},
					}},
				},
			},
		},
		{
			ID:    About,
			Label: "About",
			Href:  "/about",
			Dropdown: &Dropdown{
				Sections: []Section{
					{Items: []Link{
						{Label: "Who We Are", Href: "/about"},
						{Label: "Leadership", Href: "/about"},
						{Label: "News & Resources", Href: "/about"},
						{Label: "Job Openings", Href: "/jobs"},
					}},
				},
			},
		},
		{ID: Careers, Label: "Careers", Href: "/jobs"},
	}
}
