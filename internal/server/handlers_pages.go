package server

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/jobboard"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/server/middleware"
	"github.com/azenia/website/internal/site"
	"github.com/azenia/website/internal/types"
)

// homeOpenings is how many recent jobs the home page lists.
const homeOpenings = 3

// Admin panel notices keyed by the ?done= value of the post-redirect-get.
var adminNotices = map[string]string{
	"job-created":  "Job created successfully",
	"job-updated":  "Job updated successfully",
	"job-deleted":  "Job deleted successfully",
	"logo-added":   "Logo added successfully",
	"logo-removed": "Logo removed successfully",
}

const noticeApplicationSent = "Application submitted successfully! We will be in touch."

// pageLoader builds the data of one page.
type pageLoader func(r *http.Request) (any, error)

// render writes route's page. Rendering failures answer a plain 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, route site.Route, data any) {
	page := site.NewPage(route, data)
	if _, err := s.sessionAdmin(r); err == nil {
		page.Authenticated = true
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := s.renderer.Render(&deferredWriter{w: w, status: status}, page); err != nil {
		log.WithFields(log.Fields{
			logger.ErrorTypeField: logger.ErrorTypeRender,
			"page":                route.Name,
		}).WithError(err).Error("Failed to render page")
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// deferredWriter sends the status with the first write, so a render error
// can still answer 500.
type deferredWriter struct {
	w      http.ResponseWriter
	status int
	sent   bool
}

func (d *deferredWriter) Write(b []byte) (int, error) {
	if !d.sent {
		d.sent = true
		d.w.WriteHeader(d.status)
	}
	return d.w.Write(b)
}

// pageHandler serves a GET for route with its data loader.
func (s *Server) pageHandler(route site.Route) http.Handler {
	load := s.loaderFor(route)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if route.Name == "login" {
			if _, err := s.sessionAdmin(r); err == nil {
				http.Redirect(w, r, safeNext(r.URL.Query().Get("next")), http.StatusSeeOther)
				return
			}
		}

		data, err := load(r)
		if err != nil {
			log.WithFields(log.Fields{
				logger.ErrorTypeField: logger.ErrorTypeDB,
				"page":                route.Name,
			}).WithError(err).Error("Failed to load page data")
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.render(w, r, http.StatusOK, route, data)
	})
}

func (s *Server) loaderFor(route site.Route) pageLoader {
	switch route.Name {
	case "home":
		return s.loadHome
	case "careers":
		return s.loadCareers
	case "jobs":
		return func(r *http.Request) (any, error) {
			return s.jobsPageData(r.Context(), r.URL.Query(), site.FormData{})
		}
	case "admin":
		return s.loadAdmin
	case "contact":
		return func(*http.Request) (any, error) { return site.NewContactData(site.FormData{}), nil }
	case "partner":
		return func(*http.Request) (any, error) { return site.NewPartnerData(site.FormData{}), nil }
	case "login":
		return func(r *http.Request) (any, error) {
			return site.LoginData{Next: safeNext(r.URL.Query().Get("next"))}, nil
		}
	}
	return func(*http.Request) (any, error) { return nil, nil }
}

// loadHome loads the carousel logos and the latest openings concurrently.
// Either list failing only hides its section.
func (s *Server) loadHome(r *http.Request) (any, error) {
	data := site.HomeData{Stats: site.HomeStats}
	ctx := r.Context()

	var g errgroup.Group
	g.Go(func() error {
		logos, err := s.cache.ActiveLogos(ctx)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDB).WithError(err).Error("Failed to load client logos")
			return nil
		}
		data.Logos = logos
		return nil
	})
	g.Go(func() error {
		jobs, err := s.cache.Jobs(ctx)
		if err != nil {
			log.WithField(logger.ErrorTypeField, logger.ErrorTypeDB).WithError(err).Error("Failed to load openings")
			return nil
		}
		if len(jobs) > homeOpenings {
			jobs = jobs[:homeOpenings]
		}
		data.Openings = jobs
		return nil
	})
	_ = g.Wait()
	return data, nil
}

func (s *Server) loadCareers(r *http.Request) (any, error) {
	jobs, err := s.cache.Jobs(r.Context())
	if err != nil {
		return nil, err
	}
	return site.CareersData{Openings: jobs}, nil
}

// jobsPageData filters the cached jobs by the query and selects ?id= when
// it names a listed job.
func (s *Server) jobsPageData(ctx context.Context, q url.Values, application site.FormData) (site.JobsData, error) {
	jobs, err := s.cache.Jobs(ctx)
	if err != nil {
		return site.JobsData{}, err
	}

	filter := jobboard.Filter{
		Query:      strings.TrimSpace(q.Get("q")),
		Location:   strings.TrimSpace(q.Get("location")),
		Department: q.Get("department"),
	}
	if filter.Department == "" {
		filter.Department = jobboard.AllDepartments
	}

	data := site.JobsData{
		Filter:      filter,
		Jobs:        jobboard.Apply(jobs, filter),
		Total:       len(jobs),
		Departments: jobboard.Departments(jobs),
		Application: application,
	}
	if id, err := uuid.Parse(q.Get("id")); err == nil {
		for i := range jobs {
			if jobs[i].ID == id {
				data.Selected = &jobs[i]
				break
			}
		}
	}
	return data, nil
}

// loadAdmin reads the store directly so the panel never shows stale rows.
func (s *Server) loadAdmin(r *http.Request) (any, error) {
	ctx := r.Context()
	data := site.AdminData{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		jobs, err := s.store.ListJobs(gctx)
		data.Jobs = jobs
		return err
	})
	g.Go(func() error {
		logos, err := s.store.ListLogos(gctx)
		data.Logos = logos
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	q := r.URL.Query()
	if id, err := uuid.Parse(q.Get("edit")); err == nil {
		for i := range data.Jobs {
			if data.Jobs[i].ID == id {
				data.Editing = &data.Jobs[i]
				break
			}
		}
	}
	if msg, ok := adminNotices[q.Get("done")]; ok {
		data.Notice = &site.Notice{Success: true, Message: msg}
	}
	return data, nil
}

// handleNotFound renders the not-found page for any unmatched path.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusNotFound, site.NotFound, nil)
}

// handleApplyForm takes the job board's application form and re-renders
// the selected job with the outcome.
func (s *Server) handleApplyForm(w http.ResponseWriter, r *http.Request) {
	route, _ := site.Lookup("/jobs")
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)

	status := http.StatusOK
	application := site.FormData{}
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		status = http.StatusBadRequest
		application.Notice = &site.Notice{Message: "The application could not be read. Please try again."}
	} else if _, _, err := s.submitApplication(r.Context(), r); err != nil {
		status = HTTPStatus(err)
		application.Values = r.PostForm
		application.Notice = &site.Notice{Message: applicationFailureNotice(err, status)}
	} else {
		application.Notice = &site.Notice{Success: true, Message: noticeApplicationSent}
	}

	q := url.Values{"id": {r.FormValue("jobId")}}
	data, err := s.jobsPageData(r.Context(), q, application)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	s.render(w, r, status, route, data)
}

func applicationFailureNotice(err error, status int) string {
	var ve *ErrValidation
	switch {
	case errors.As(err, &ve) && ve.Field != "":
		return "Please check the " + ve.Field + " field."
	case status == http.StatusNotFound:
		return "This job is no longer available."
	}
	return noticeFormFailed
}

// handleLoginForm signs an admin in and stores the token in the session cookie.
func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	route, _ := site.Lookup("/login")
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := r.ParseForm(); err != nil {
		s.render(w, r, http.StatusBadRequest, route, site.LoginData{Error: "Invalid request"})
		return
	}

	req := types.LoginRequest{
		Email:    strings.TrimSpace(r.PostForm.Get("email")),
		Password: r.PostForm.Get("password"),
	}
	next := safeNext(r.PostForm.Get("next"))
	data := site.LoginData{Email: req.Email, Next: next}

	resp, err := s.authHandler.authenticate(r, &req)
	if err != nil {
		status := HTTPStatus(err)
		data.Error = "Invalid email or password"
		if status == http.StatusInternalServerError {
			data.Error = "Login failed. Please try again."
		}
		s.render(w, r, status, route, data)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    resp.Token,
		Path:     "/",
		MaxAge:   int(s.jwtService.TTL().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	log.WithField("admin_id", resp.Admin.ID).Info("Admin signed in")
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// handleLogout clears the session cookie.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext keeps post-login redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/admin"
	}
	return next
}

// handleAdminSaveJob creates a job, or updates the one named by the id field.
func (s *Server) handleAdminSaveJob(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.adminFailure(w, r, http.StatusBadRequest, "Invalid request")
		return
	}
	f := r.PostForm

	title := strings.TrimSpace(f.Get("title"))
	department := strings.TrimSpace(f.Get("department"))
	location := strings.TrimSpace(f.Get("location"))
	if title == "" || department == "" || location == "" {
		s.adminFailure(w, r, http.StatusBadRequest, "Title, department and location are required")
		return
	}
	description := f.Get("description")
	requirements := f.Get("requirements")
	isNew := f.Has("is_new")

	fields := db.JobFields{
		Title:        &title,
		Department:   &department,
		Location:     &location,
		Description:  &description,
		Requirements: &requirements,
		IsNew:        &isNew,
	}

	done := "job-created"
	if raw := f.Get("id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			s.adminFailure(w, r, http.StatusBadRequest, "Invalid job ID")
			return
		}
		if _, err := s.store.UpdateJob(r.Context(), id, fields); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				s.adminFailure(w, r, http.StatusNotFound, "Job not found")
				return
			}
			s.adminStoreFailure(w, r, err, "Failed to update job")
			return
		}
		done = "job-updated"
	} else if _, err := s.store.CreateJob(r.Context(), fields); err != nil {
		s.adminStoreFailure(w, r, err, "Failed to create job")
		return
	}

	s.cache.InvalidateJobs()
	http.Redirect(w, r, "/admin?done="+done, http.StatusSeeOther)
}

// handleAdminDeleteJob removes a job. Unknown ids are ignored.
func (s *Server) handleAdminDeleteJob(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		s.adminFailure(w, r, http.StatusBadRequest, "Invalid job ID")
		return
	}
	if err := s.store.DeleteJob(r.Context(), id); err != nil && !errors.Is(err, db.ErrNotFound) {
		s.adminStoreFailure(w, r, err, "Failed to delete job")
		return
	}
	s.cache.InvalidateJobs()
	http.Redirect(w, r, "/admin?done=job-deleted", http.StatusSeeOther)
}

// handleAdminCreateLogo uploads a client logo from the admin panel.
func (s *Server) handleAdminCreateLogo(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		s.adminFailure(w, r, http.StatusBadRequest, "The upload could not be read")
		return
	}
	if _, err := s.createLogo(r.Context(), r); err != nil {
		status := HTTPStatus(err)
		if status == http.StatusInternalServerError {
			s.adminFailure(w, r, status, "Failed to add logo")
			return
		}
		s.adminFailure(w, r, status, err.Error())
		return
	}
	http.Redirect(w, r, "/admin?done=logo-added", http.StatusSeeOther)
}

// handleAdminDeleteLogo removes a client logo.
func (s *Server) handleAdminDeleteLogo(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.FormValue("id"))
	if err != nil {
		s.adminFailure(w, r, http.StatusBadRequest, "Invalid logo ID")
		return
	}
	if err := s.store.DeleteLogo(r.Context(), id); err != nil && !errors.Is(err, db.ErrNotFound) {
		s.adminStoreFailure(w, r, err, "Failed to remove logo")
		return
	}
	s.cache.InvalidateLogos()
	http.Redirect(w, r, "/admin?done=logo-removed", http.StatusSeeOther)
}

func (s *Server) adminStoreFailure(w http.ResponseWriter, r *http.Request, err error, msg string) {
	log.WithFields(log.Fields{
		logger.ErrorTypeField: logger.ErrorTypeDB,
	}).WithError(err).Error(msg)
	s.adminFailure(w, r, http.StatusInternalServerError, msg)
}

// adminFailure re-renders the admin panel with an error notice.
func (s *Server) adminFailure(w http.ResponseWriter, r *http.Request, status int, msg string) {
	route, _ := site.Lookup("/admin")
	data, err := s.loadAdmin(r)
	if err != nil {
		http.Error(w, msg, status)
		return
	}
	admin := data.(site.AdminData)
	admin.Notice = &site.Notice{Message: msg}
	s.render(w, r, status, route, admin)
}
