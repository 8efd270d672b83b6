package site

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/jobboard"
	"github.com/azenia/website/internal/nav"
)

func render(t *testing.T, routePath string, data any) *goquery.Document {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)

	route, ok := Lookup(routePath)
	require.True(t, ok, "route %s", routePath)

	var buf bytes.Buffer
	require.NoError(t, r.Render(&buf, NewPage(route, data)))

	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func sampleJobs() []db.Job {
	created := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	return []db.Job{
		{ID: uuid.New(), Title: "DevOps Engineer", Department: "Engineering", Location: "Remote", IsNew: true, CreatedAt: created,
			Description: "Run the platform.\nAutomate everything.", Requirements: "Go\nKubernetes"},
		{ID: uuid.New(), Title: "Analyst", Department: "Security", Location: "NYC", CreatedAt: created},
	}
}

func TestRoutes(t *testing.T) {
	paths := []string{"/", "/our-services", "/industries", "/about", "/careers", "/contact", "/partner", "/jobs", "/admin", "/login"}
	got := Routes()
	require.Len(t, got, len(paths))
	for i, p := range paths {
		assert.Equal(t, p, got[i].Path)
	}

	admin, ok := Lookup("/admin")
	require.True(t, ok)
	assert.True(t, admin.RequiresAuth)

	_, ok = Lookup("/nope")
	assert.False(t, ok)

	got[0].Path = "/changed"
	home, _ := Lookup("/")
	assert.Equal(t, "/", home.Path, "Routes returns a copy")
}

func TestRenderer_HasEveryRouteTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	for _, route := range Routes() {
		assert.True(t, r.Has(route.Template), route.Template)
	}
	assert.True(t, r.Has(NotFound.Template))
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	err = r.Render(&bytes.Buffer{}, NewPage(Route{Template: "missing"}, nil))
	assert.Error(t, err)
}

func TestRender_HeaderAndNav(t *testing.T) {
	doc := render(t, "/about", nil)

	assert.Equal(t, "About Us | Azenia Technology Group", doc.Find("title").Text())
	assert.Equal(t, "true", doc.Find("header.site-header").AttrOr("data-visible", ""))
	assert.Equal(t, 4, doc.Find(".primary-nav > ul > li.menu").Length())
	assert.Equal(t, 3, doc.Find(".primary-nav li.has-dropdown").Length())
	assert.Equal(t, "page", doc.Find(`.primary-nav li[data-menu="about"] > a`).AttrOr("aria-current", ""))
	assert.Equal(t, 0, doc.Find(`form[action="/logout"]`).Length())
	assert.Contains(t, doc.Find("footer .copyright").Text(), "Azenia Technology Group, LLC")
}

func TestRender_HeaderState(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)
	route, ok := Lookup("/about")
	require.True(t, ok)

	renderPage := func(page Page) *goquery.Document {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, page))
		doc, err := goquery.NewDocumentFromReader(&buf)
		require.NoError(t, err)
		return doc
	}

	page := NewPage(route, nil)
	doc := renderPage(page)
	header := doc.Find("header.site-header")
	assert.Equal(t, "300", header.AttrOr("data-close-delay", ""))
	assert.Equal(t, "100", header.AttrOr("data-scroll-threshold", ""))
	assert.Equal(t, 3, doc.Find(".dropdown[hidden]").Length())

	page.Header.Active = nav.Solutions
	doc = renderPage(page)
	_, hidden := doc.Find(`li[data-menu="solutions"] .dropdown`).Attr("hidden")
	assert.False(t, hidden)
	assert.Equal(t, 2, doc.Find(".dropdown[hidden]").Length())
}

func TestRender_Home(t *testing.T) {
	doc := render(t, "/", HomeData{
		Logos:    []db.ClientLogo{{Name: "Acme", ImageURL: "https://cdn.example.org/acme.png"}},
		Stats:    HomeStats,
		Openings: sampleJobs()[:1],
	})

	assert.Equal(t, "https://cdn.example.org/acme.png", doc.Find(".logo-carousel img").AttrOr("src", ""))
	assert.Equal(t, 4, doc.Find(".stats .stat").Length())
	assert.Equal(t, 1, doc.Find(".latest-openings .job-card").Length())
	assert.Equal(t, 0, doc.Find(".clients .empty").Length())
}

func TestRender_HomeWithoutLogos(t *testing.T) {
	doc := render(t, "/", HomeData{Stats: HomeStats})
	assert.Contains(t, doc.Find(".clients .empty").Text(), "No client logos available yet")
	assert.Equal(t, 0, doc.Find(".latest-openings").Length())
}

func TestRender_Jobs(t *testing.T) {
	jobs := sampleJobs()
	filter := jobboard.Filter{Query: "devops", Department: "Engineering"}
	doc := render(t, "/jobs", JobsData{
		Filter:      filter,
		Jobs:        jobboard.Apply(jobs, filter),
		Total:       len(jobs),
		Departments: jobboard.Departments(jobs),
		Selected:    &jobs[0],
		Application: FormData{Values: url.Values{"firstName": {"Ada"}}},
	})

	cards := doc.Find(".results .job-card")
	require.Equal(t, 1, cards.Length())
	assert.Equal(t, "DevOps Engineer", strings.TrimSpace(cards.Find("h3 a").Text()))
	assert.Equal(t, "New", cards.Find(".badge").Text())
	assert.Equal(t, "devops", doc.Find(`input[name="q"]`).AttrOr("value", ""))
	assert.Equal(t, "Engineering", doc.Find(`select[name="department"] option[selected]`).AttrOr("value", ""))
	assert.Equal(t, 3, doc.Find(`select[name="department"] option`).Length())
	assert.Equal(t, "1 of 2 jobs", doc.Find(".result-count").Text())

	detail := doc.Find(".job-detail")
	assert.Equal(t, 2, detail.Find("p:not(.job-meta)").Length(), "description split into paragraphs")
	assert.Equal(t, 2, detail.Find(".requirements li").Length())

	form := doc.Find("#apply-form")
	assert.Equal(t, "multipart/form-data", form.AttrOr("enctype", ""))
	assert.Equal(t, jobs[0].ID.String(), form.Find(`input[name="jobId"]`).AttrOr("value", ""))
	assert.Equal(t, "Ada", form.Find(`input[name="firstName"]`).AttrOr("value", ""))
}

func TestRender_JobsEmpty(t *testing.T) {
	doc := render(t, "/jobs", JobsData{Departments: []string{"all"}})
	assert.Equal(t, "No jobs found matching your criteria", doc.Find(".results .empty").Text())
	assert.Equal(t, 0, doc.Find("#apply-form").Length())
}

func TestRender_ContactKeepsValuesAndNotice(t *testing.T) {
	form := FormData{
		Values: url.Values{
			"firstName":      {`<b>Ada</b>`},
			"category":       {"vendor"},
			"message":        {"Hello"},
			"agreeToContact": {"on"},
		},
		Notice: &Notice{Success: false, Message: "validation error: email - required"},
	}
	doc := render(t, "/contact", NewContactData(form))

	assert.Equal(t, `<b>Ada</b>`, doc.Find(`input[name="firstName"]`).AttrOr("value", ""))
	assert.Equal(t, "vendor", doc.Find(`select[name="category"] option[selected]`).AttrOr("value", ""))
	assert.Equal(t, 6, doc.Find(`select[name="category"] option`).Length())
	assert.Equal(t, "Hello", doc.Find(`textarea[name="message"]`).Text())
	_, checked := doc.Find(`input[name="agreeToContact"]`).Attr("checked")
	assert.True(t, checked)
	_, checked = doc.Find(`input[name="agreeToNewsletter"]`).Attr("checked")
	assert.False(t, checked)
	assert.Contains(t, doc.Find(".notice-error").Text(), "email - required")
}

func TestRender_Partner(t *testing.T) {
	doc := render(t, "/partner", NewPartnerData(FormData{
		Values: url.Values{"officeLocation": {"seattle"}},
		Notice: &Notice{Success: true, Message: "Submission received and email sent"},
	}))

	assert.Equal(t, 4, doc.Find(`input[name="serviceRequired"]`).Length())
	assert.Equal(t, 7, doc.Find(`select[name="specialtyNeeded"] option`).Length())
	assert.Equal(t, "seattle", doc.Find(`select[name="officeLocation"] option[selected]`).AttrOr("value", ""))
	assert.Equal(t, "Submission received and email sent", doc.Find(".notice-success").Text())
}

func TestRender_Admin(t *testing.T) {
	jobs := sampleJobs()
	doc := render(t, "/admin", AdminData{Jobs: jobs, Editing: &jobs[1]})

	assert.Equal(t, "Current Job Postings (2)", doc.Find(".admin-jobs h2").Text())
	assert.Equal(t, jobs[1].ID.String(), doc.Find(`#job-form input[name="id"]`).AttrOr("value", ""))
	assert.Equal(t, "Analyst", doc.Find(`#job-form input[name="title"]`).AttrOr("value", ""))
	_, checked := doc.Find(`#job-form input[name="is_new"]`).Attr("checked")
	assert.False(t, checked)
}

func TestRender_AdminEmpty(t *testing.T) {
	doc := render(t, "/admin", AdminData{})
	assert.Equal(t, "No job postings yet. Create your first one!", doc.Find(".admin-jobs .empty").Text())
	assert.Equal(t, 0, doc.Find(`#job-form input[name="id"]`).Length())
}

func TestRender_Login(t *testing.T) {
	doc := render(t, "/login", LoginData{Email: "admin@example.org", Error: "invalid email or password", Next: "/admin"})
	assert.Equal(t, "admin@example.org", doc.Find(`input[name="email"]`).AttrOr("value", ""))
	assert.Equal(t, "invalid email or password", doc.Find(".notice-error").Text())
}

func TestStaticHandler(t *testing.T) {
	rec := httptest.NewRecorder()
	StaticHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/nav.js", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "mouseenter")
}
