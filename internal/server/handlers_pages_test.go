package server

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/azenia/website/internal/server/middleware"
)

func htmlDoc(t *testing.T, rec *httptest.ResponseRecorder) *goquery.Document {
	t.Helper()
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	return doc
}

func withSession(req *http.Request, token string) *http.Request {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookie, Value: token})
	return req
}

func TestPages_Render(t *testing.T) {
	ts := newTestServer(t)
	ts.store.addJob("Analyst", "Security", "NYC")

	for _, path := range []string{"/", "/our-services", "/industries", "/about", "/careers", "/contact", "/partner", "/jobs", "/login"} {
		t.Run(path, func(t *testing.T) {
			rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			doc := htmlDoc(t, rec)
			assert.Equal(t, 1, doc.Find("header.site-header").Length())
			assert.Zero(t, doc.Find(`form[action="/logout"]`).Length())
		})
	}
}

func TestPages_NotFound(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/nope", "/jobs/123", "/admin/unknown"} {
		rec := ts.do(httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
		assert.Equal(t, "Page Not Found", htmlDoc(t, rec).Find(".page-hero h1").Text())
	}
}

func TestHome_ShowsLatestOpeningsAndActiveLogos(t *testing.T) {
	ts := newTestServer(t)
	for _, title := range []string{"One", "Two", "Three", "Four"} {
		ts.store.addJob(title, "Engineering", "Remote")
	}
	ts.store.addLogo("acme", true)
	ts.store.addLogo("hidden", false)

	doc := htmlDoc(t, ts.do(httptest.NewRequest(http.MethodGet, "/", nil)))

	cards := doc.Find(".job-card h3 a")
	require.Equal(t, homeOpenings, cards.Length())
	assert.Equal(t, "Four", cards.First().Text())

	logos := doc.Find(".logo-carousel img")
	require.Equal(t, 1, logos.Length())
	assert.Equal(t, "acme", logos.AttrOr("alt", ""))
}

func TestHome_DegradesWhenStoreFails(t *testing.T) {
	ts := newTestServer(t)
	ts.store.err = errStoreDown

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	doc := htmlDoc(t, rec)
	assert.Zero(t, doc.Find(".job-card").Length())
	assert.Contains(t, doc.Find(".clients .empty").Text(), "No client logos")
}

func TestCareers_StoreFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.store.err = errStoreDown

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/careers", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestJobsPage_FilterAndSelect(t *testing.T) {
	ts := newTestServer(t)
	analyst := ts.store.addJob("Analyst", "Security", "New York")
	ts.store.addJob("DevOps Engineer", "Engineering", "Remote")

	t.Run("filters by query", func(t *testing.T) {
		doc := htmlDoc(t, ts.do(httptest.NewRequest(http.MethodGet, "/jobs?q=devops", nil)))
		cards := doc.Find(".job-card")
		require.Equal(t, 1, cards.Length())
		assert.Contains(t, cards.Text(), "DevOps Engineer")
	})

	t.Run("filters by department", func(t *testing.T) {
		doc := htmlDoc(t, ts.do(httptest.NewRequest(http.MethodGet, "/jobs?department=Security", nil)))
		assert.Equal(t, 1, doc.Find(".job-card").Length())
	})

	t.Run("selects a job", func(t *testing.T) {
		doc := htmlDoc(t, ts.do(httptest.NewRequest(http.MethodGet, "/jobs?id="+analyst.ID.String(), nil)))
		assert.Equal(t, "Analyst", doc.Find(".job-detail h2").Text())
		assert.Equal(t, analyst.ID.String(), doc.Find(`#apply-form input[name="jobId"]`).AttrOr("value", ""))
	})

	t.Run("unknown id shows no detail", func(t *testing.T) {
		doc := htmlDoc(t, ts.do(httptest.NewRequest(http.MethodGet, "/jobs?id="+uuid.NewString(), nil)))
		assert.Zero(t, doc.Find(".job-detail").Length())
	})
}

func TestApplyForm(t *testing.T) {
	ts := newTestServer(t)
	job := ts.store.addJob("Analyst", "Security", "NYC")
	resume := formFile{field: "resume", name: "cv.pdf", body: []byte("%PDF-1.4")}

	t.Run("success", func(t *testing.T) {
		rec := ts.do(multipartRequest(t, http.MethodPost, "/jobs/apply", applicationFields(job.ID.String()), resume))
		require.Equal(t, http.StatusOK, rec.Code)
		doc := htmlDoc(t, rec)
		assert.Equal(t, noticeApplicationSent, doc.Find(".apply .notice-success").Text())
		assert.Equal(t, "Analyst", doc.Find(".job-detail h2").Text())
		assert.Len(t, ts.store.apps, 1)
	})

	t.Run("validation failure keeps values", func(t *testing.T) {
		fields := applicationFields(job.ID.String())
		fields.Set("email", "broken")
		rec := ts.do(multipartRequest(t, http.MethodPost, "/jobs/apply", fields, resume))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		doc := htmlDoc(t, rec)
		assert.Equal(t, 1, doc.Find(".apply .notice-error").Length())
		assert.Equal(t, "broken", doc.Find(`#apply-form input[name="email"]`).AttrOr("value", ""))
	})
}

func TestContactForm(t *testing.T) {
	ts := newTestServer(t)

	valid := url.Values{
		"firstName":      {"Ada"},
		"lastName":       {"Lovelace"},
		"email":          {"ada@example.com"},
		"category":       {"employer"},
		"message":        {"Need engineers"},
		"agreeToContact": {"on"},
	}

	t.Run("success clears the form", func(t *testing.T) {
		rec := ts.do(formRequest(http.MethodPost, "/contact", valid))
		require.Equal(t, http.StatusOK, rec.Code)
		doc := htmlDoc(t, rec)
		assert.Equal(t, noticeContactThanks, doc.Find(".notice-success").Text())
		assert.Empty(t, doc.Find(`input[name="firstName"]`).AttrOr("value", "x"))

		require.Len(t, ts.store.submissions, 1)
		assert.True(t, ts.store.submissions[0].AgreeToContact)
		assert.Equal(t, 1, ts.mailer.count())
	})

	t.Run("invalid field keeps values", func(t *testing.T) {
		bad := url.Values{}
		for k, v := range valid {
			bad[k] = v
		}
		bad.Set("email", "nope")

		rec := ts.do(formRequest(http.MethodPost, "/contact", bad))
		require.Equal(t, http.StatusBadRequest, rec.Code)
		doc := htmlDoc(t, rec)
		assert.Equal(t, "Please check the email field.", doc.Find(".notice-error").Text())
		assert.Equal(t, "Ada", doc.Find(`input[name="firstName"]`).AttrOr("value", ""))
	})

	t.Run("store failure", func(t *testing.T) {
		ts.store.err = errStoreDown
		defer func() { ts.store.err = nil }()

		rec := ts.do(formRequest(http.MethodPost, "/contact", valid))
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, noticeFormFailed, htmlDoc(t, rec).Find(".notice-error").Text())
	})
}

func TestPartnerForm(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(formRequest(http.MethodPost, "/partner", url.Values{
		"firstName":       {"Grace"},
		"lastName":        {"Hopper"},
		"email":           {"grace@example.com"},
		"phoneNumber":     {"555-0100"},
		"companyName":     {"Navy"},
		"jobTitle":        {"Admiral"},
		"serviceRequired": {"direct-hire"},
		"specialtyNeeded": {"technology"},
		"officeLocation":  {"new-york"},
		"details":         {"Two compiler engineers"},
	}))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, noticePartnerThanks, htmlDoc(t, rec).Find(".notice-success").Text())
	require.Len(t, ts.store.submissions, 1)
	assert.Equal(t, "partner", ts.store.submissions[0].Type)
}

func TestAdminPage_RequiresSession(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(httptest.NewRequest(http.MethodGet, "/admin?edit=1", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login?next="+url.QueryEscape("/admin?edit=1"), rec.Header().Get("Location"))

	for _, path := range []string{"/admin/jobs", "/admin/jobs/delete", "/admin/logos", "/admin/logos/delete"} {
		rec := ts.do(formRequest(http.MethodPost, path, url.Values{"title": {"X"}}))
		assert.Equal(t, http.StatusSeeOther, rec.Code, path)
		assert.Equal(t, "/login", rec.Header().Get("Location"), path)
	}
	assert.Empty(t, ts.store.jobs)

	t.Run("deleted admin", func(t *testing.T) {
		orphaned, err := ts.jwtService.GenerateToken(uuid.New())
		require.NoError(t, err)

		rec := ts.do(withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), orphaned))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		rec = ts.do(withSession(formRequest(http.MethodPost, "/admin/jobs", url.Values{"title": {"X"}}), orphaned))
		assert.Equal(t, "/login", rec.Header().Get("Location"))
		assert.Empty(t, ts.store.jobs)

		rec = ts.do(withSession(httptest.NewRequest(http.MethodGet, "/login", nil), orphaned))
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 0, htmlDoc(t, rec).Find(`form[action="/logout"]`).Length())
	})
}

func TestLoginFlow(t *testing.T) {
	ts := newTestServer(t)
	createTestAdmin(t, ts)

	t.Run("bad credentials re-render", func(t *testing.T) {
		rec := ts.do(formRequest(http.MethodPost, "/login", url.Values{
			"email": {testAdminEmail}, "password": {"wrong"},
		}))
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		doc := htmlDoc(t, rec)
		assert.Equal(t, "Invalid email or password", doc.Find(`.login [role="alert"]`).Text())
		assert.Equal(t, testAdminEmail, doc.Find(`input[name="email"]`).AttrOr("value", ""))
		assert.Empty(t, rec.Result().Cookies())
	})

	var session *http.Cookie
	t.Run("success sets the session cookie", func(t *testing.T) {
		rec := ts.do(formRequest(http.MethodPost, "/login", url.Values{
			"email": {testAdminEmail}, "password": {testAdminPassword}, "next": {"/admin?edit=x"},
		}))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin?edit=x", rec.Header().Get("Location"))

		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		session = cookies[0]
		assert.Equal(t, middleware.SessionCookie, session.Name)
		assert.True(t, session.HttpOnly)
		assert.Equal(t, http.SameSiteLaxMode, session.SameSite)
		assert.Equal(t, 24*60*60, session.MaxAge)
	})
	require.NotNil(t, session)

	t.Run("session opens the admin panel", func(t *testing.T) {
		rec := ts.do(withSession(httptest.NewRequest(http.MethodGet, "/admin", nil), session.Value))
		require.Equal(t, http.StatusOK, rec.Code)
		doc := htmlDoc(t, rec)
		assert.Equal(t, 1, doc.Find(`form[action="/logout"]`).Length())
		assert.Equal(t, 1, doc.Find("#job-form").Length())
	})

	t.Run("login page redirects signed-in admins", func(t *testing.T) {
		rec := ts.do(withSession(httptest.NewRequest(http.MethodGet, "/login", nil), session.Value))
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin", rec.Header().Get("Location"))
	})

	t.Run("logout clears the cookie", func(t *testing.T) {
		rec := ts.do(withSession(httptest.NewRequest(http.MethodPost, "/logout", nil), session.Value))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/", rec.Header().Get("Location"))
		cookies := rec.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})
}

func TestAdminForms(t *testing.T) {
	ts := newTestServer(t)
	token := ts.adminToken(t)

	post := func(path string, form url.Values) *httptest.ResponseRecorder {
		return ts.do(withSession(formRequest(http.MethodPost, path, form), token))
	}

	rec := post("/admin/jobs", url.Values{
		"title":        {"Threat Hunter"},
		"department":   {"Security"},
		"location":     {"Remote"},
		"description":  {"Hunt.\nReport."},
		"requirements": {"SIEM"},
		"is_new":       {"on"},
	})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/admin?done=job-created", rec.Header().Get("Location"))
	require.Len(t, ts.store.jobs, 1)
	job := ts.store.jobs[0]
	assert.True(t, job.IsNew)

	t.Run("notice after redirect", func(t *testing.T) {
		rec := ts.do(withSession(httptest.NewRequest(http.MethodGet, "/admin?done=job-created", nil), token))
		doc := htmlDoc(t, rec)
		assert.Equal(t, adminNotices["job-created"], doc.Find(".notice-success").Text())
		assert.Equal(t, 1, doc.Find(".admin-job").Length())
	})

	t.Run("edit form is prefilled", func(t *testing.T) {
		rec := ts.do(withSession(httptest.NewRequest(http.MethodGet, "/admin?edit="+job.ID.String(), nil), token))
		doc := htmlDoc(t, rec)
		assert.Equal(t, job.ID.String(), doc.Find(`#job-form input[name="id"]`).AttrOr("value", ""))
		assert.Equal(t, "Threat Hunter", doc.Find(`#job-form input[name="title"]`).AttrOr("value", ""))
	})

	t.Run("update", func(t *testing.T) {
		rec := post("/admin/jobs", url.Values{
			"id": {job.ID.String()}, "title": {"Lead Threat Hunter"}, "department": {"Security"}, "location": {"Remote"},
		})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin?done=job-updated", rec.Header().Get("Location"))
		assert.Equal(t, "Lead Threat Hunter", ts.store.jobs[0].Title)
		assert.False(t, ts.store.jobs[0].IsNew)
	})

	t.Run("missing fields re-render with error", func(t *testing.T) {
		rec := post("/admin/jobs", url.Values{"title": {"X"}})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, 1, htmlDoc(t, rec).Find(".notice-error").Length())
	})

	t.Run("update unknown job", func(t *testing.T) {
		rec := post("/admin/jobs", url.Values{
			"id": {uuid.NewString()}, "title": {"X"}, "department": {"Y"}, "location": {"Z"},
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("add and remove a logo", func(t *testing.T) {
		req := multipartRequest(t, http.MethodPost, "/admin/logos", url.Values{
			"name": {"Acme"}, "display_order": {"1"}, "is_active": {"false", "on"},
		}, formFile{field: "image", name: "acme.png", body: pngHeader})
		rec := ts.do(withSession(req, token))
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin?done=logo-added", rec.Header().Get("Location"))
		require.Len(t, ts.store.logos, 1)
		assert.True(t, ts.store.logos[0].IsActive)

		rec = post("/admin/logos/delete", url.Values{"id": {ts.store.logos[0].ID.String()}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin?done=logo-removed", rec.Header().Get("Location"))
		assert.Empty(t, ts.store.logos)
	})

	t.Run("delete", func(t *testing.T) {
		rec := post("/admin/jobs/delete", url.Values{"id": {job.ID.String()}})
		require.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/admin?done=job-deleted", rec.Header().Get("Location"))
		assert.Empty(t, ts.store.jobs)
	})
}

func TestSafeNext(t *testing.T) {
	tests := map[string]string{
		"":                   "/admin",
		"/admin?edit=1":      "/admin?edit=1",
		"/jobs":              "/jobs",
		"https://evil.com":   "/admin",
		"//evil.com":         "/admin",
		`/\evil.com`:         "/admin",
		"javascript:alert()": "/admin",
	}
	for in, want := range tests {
		assert.Equal(t, want, safeNext(in), in)
	}
}
