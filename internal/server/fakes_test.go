package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/azenia/website/internal/config"
	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/email"
	"github.com/azenia/website/internal/server/ratelimit"
	"github.com/azenia/website/internal/storage"
	"github.com/azenia/website/internal/types"
)

var errStoreDown = errors.New("connection refused")

// fakeStore is an in-memory Store. When err is set every call fails with it.
type fakeStore struct {
	mu          sync.Mutex
	err         error
	pingErr     error
	jobs        []db.Job
	logos       []db.ClientLogo
	apps        []db.JobApplication
	submissions []db.Submission
	admins      []db.Admin
	jobLists    int
}

func newFakeStore() *fakeStore { return &fakeStore{} }

func (f *fakeStore) Ping(context.Context) error { return f.pingErr }

func (f *fakeStore) ListJobs(context.Context) ([]db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobLists++
	if f.err != nil {
		return nil, f.err
	}
	return append([]db.Job(nil), f.jobs...), nil
}

func (f *fakeStore) GetJob(_ context.Context, id uuid.UUID) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			job := f.jobs[i]
			return &job, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateJob(_ context.Context, fields db.JobFields) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	now := time.Now().UTC()
	job := db.Job{ID: uuid.New(), CreatedAt: now, UpdatedAt: now}
	applyJobFields(&job, fields)
	f.jobs = append([]db.Job{job}, f.jobs...)
	return &job, nil
}

func (f *fakeStore) UpdateJob(_ context.Context, id uuid.UUID, fields db.JobFields) (*db.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			applyJobFields(&f.jobs[i], fields)
			job := f.jobs[i]
			return &job, nil
		}
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) DeleteJob(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.jobs {
		if f.jobs[i].ID == id {
			f.jobs = append(f.jobs[:i], f.jobs[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func applyJobFields(job *db.Job, fields db.JobFields) {
	if fields.Title != nil {
		job.Title = *fields.Title
	}
	if fields.Department != nil {
		job.Department = *fields.Department
	}
	if fields.Location != nil {
		job.Location = *fields.Location
	}
	if fields.Description != nil {
		job.Description = *fields.Description
	}
	if fields.Requirements != nil {
		job.Requirements = *fields.Requirements
	}
	if fields.IsNew != nil {
		job.IsNew = *fields.IsNew
	}
}

func (f *fakeStore) ListActiveLogos(ctx context.Context) ([]db.ClientLogo, error) {
	all, err := f.ListLogos(ctx)
	if err != nil {
		return nil, err
	}
	var active []db.ClientLogo
	for _, l := range all {
		if l.IsActive {
			active = append(active, l)
		}
	}
	return active, nil
}

func (f *fakeStore) ListLogos(context.Context) ([]db.ClientLogo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return append([]db.ClientLogo(nil), f.logos...), nil
}

func (f *fakeStore) CreateLogo(_ context.Context, in db.LogoInput) (*db.ClientLogo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	logo := db.ClientLogo{
		ID:           uuid.New(),
		Name:         in.Name,
		ImageURL:     in.ImageURL,
		DisplayOrder: in.DisplayOrder,
		IsActive:     in.IsActive,
		CreatedAt:    time.Now().UTC(),
	}
	f.logos = append(f.logos, logo)
	return &logo, nil
}

func (f *fakeStore) UpdateLogo(_ context.Context, id uuid.UUID, fields db.LogoFields) (*db.ClientLogo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.logos {
		if f.logos[i].ID != id {
			continue
		}
		if fields.Name != nil {
			f.logos[i].Name = *fields.Name
		}
		if fields.DisplayOrder != nil {
			f.logos[i].DisplayOrder = *fields.DisplayOrder
		}
		if fields.IsActive != nil {
			f.logos[i].IsActive = *fields.IsActive
		}
		logo := f.logos[i]
		return &logo, nil
	}
	return nil, db.ErrNotFound
}

func (f *fakeStore) DeleteLogo(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	for i := range f.logos {
		if f.logos[i].ID == id {
			f.logos = append(f.logos[:i], f.logos[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeStore) CreateApplication(_ context.Context, in db.ApplicationInput) (*db.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	app := db.JobApplication{
		ID:        uuid.New(),
		JobID:     in.JobID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		ResumeURL: in.ResumeURL,
		CreatedAt: time.Now().UTC(),
	}
	f.apps = append(f.apps, app)
	return &app, nil
}

func (f *fakeStore) InsertSubmission(_ context.Context, in db.SubmissionInput) (*db.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	sub := db.Submission{
		ID:             uuid.New(),
		Type:           in.Type,
		FirstName:      in.FirstName,
		LastName:       in.LastName,
		Email:          in.Email,
		Message:        in.Message,
		CompanyName:    in.CompanyName,
		AgreeToContact: in.AgreeToContact,
		CreatedAt:      time.Now().UTC(),
	}
	f.submissions = append(f.submissions, sub)
	return &sub, nil
}

func (f *fakeStore) MarkSubmissionEmailSent(_ context.Context, id uuid.UUID, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.submissions {
		if f.submissions[i].ID == id {
			f.submissions[i].EmailSent = true
			f.submissions[i].EmailSentAt = &sentAt
			return nil
		}
	}
	return db.ErrNotFound
}

func (f *fakeStore) CreateAdmin(_ context.Context, emailAddr, passwordHash string) (*db.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	admin := db.Admin{ID: uuid.New(), Email: emailAddr, PasswordHash: passwordHash, CreatedAt: time.Now().UTC()}
	f.admins = append(f.admins, admin)
	return &admin, nil
}

func (f *fakeStore) GetAdminByEmail(_ context.Context, emailAddr string) (*db.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.admins {
		if f.admins[i].Email == emailAddr {
			admin := f.admins[i]
			return &admin, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetAdmin(_ context.Context, id uuid.UUID) (*db.Admin, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	for i := range f.admins {
		if f.admins[i].ID == id {
			admin := f.admins[i]
			return &admin, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) addJob(title, department, location string) db.Job {
	job, _ := f.CreateJob(context.Background(), db.JobFields{
		Title:      &title,
		Department: &department,
		Location:   &location,
	})
	return *job
}

func (f *fakeStore) addLogo(name string, active bool) db.ClientLogo {
	logo, _ := f.CreateLogo(context.Background(), db.LogoInput{
		Name:     name,
		ImageURL: "https://cdn.example.com/" + name + ".png",
		IsActive: active,
	})
	return *logo
}

// fakeUploader records uploads in memory.
type fakeUploader struct {
	mu      sync.Mutex
	err     error
	uploads []storage.Object
	bodies  [][]byte
}

func (u *fakeUploader) Upload(_ context.Context, bucket, name string, body []byte) (*storage.Object, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.err != nil {
		return nil, u.err
	}
	obj := storage.Object{
		Bucket:    bucket,
		Name:      name,
		PublicURL: "https://files.example.com/" + bucket + "/" + name,
	}
	u.uploads = append(u.uploads, obj)
	u.bodies = append(u.bodies, body)
	return &obj, nil
}

// fakeMailer records sent messages.
type fakeMailer struct {
	mu   sync.Mutex
	err  error
	sent []email.Message
}

func (m *fakeMailer) Configured() bool { return true }

func (m *fakeMailer) Send(_ context.Context, msg email.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, msg)
	return "msg_" + uuid.NewString(), nil
}

func (m *fakeMailer) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

type testServer struct {
	*Server
	store    *fakeStore
	uploader *fakeUploader
	mailer   *fakeMailer
}

type testOption func(*Deps)

func withLimits(cfg *ratelimit.Config) testOption {
	return func(d *Deps) { d.RateLimit = cfg }
}

func withoutMailer() testOption {
	return func(d *Deps) { d.Mailer = nil }
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:          testJWTSecret,
			JWTExpirationHours: 24,
			BcryptCost:         4,
		},
		Store: config.StoreConfig{LogosBucket: "logos", ResumesBucket: "resumes"},
		Email: config.EmailConfig{From: "Azenia <site@azenia.example>", To: []string{"talent@azenia.example"}},
	}
}

func newTestServer(t *testing.T, opts ...testOption) *testServer {
	t.Helper()
	ts := &testServer{
		store:    newFakeStore(),
		uploader: &fakeUploader{},
		mailer:   &fakeMailer{},
	}
	deps := Deps{
		Config:    testConfig(),
		Store:     ts.store,
		Uploader:  ts.uploader,
		Mailer:    ts.mailer,
		RateLimit: &ratelimit.Config{Enabled: false},
	}
	for _, opt := range opts {
		opt(&deps)
	}

	s, err := New(deps)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	ts.Server = s
	return ts
}

// adminToken creates an admin account and returns a session token for it.
func (ts *testServer) adminToken(t *testing.T) string {
	t.Helper()
	admin, err := ts.store.CreateAdmin(context.Background(), "admin@azenia.example", "unused")
	require.NoError(t, err)
	token, err := ts.jwtService.GenerateToken(admin.ID)
	require.NoError(t, err)
	return token
}

func (ts *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, r)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func withBearer(req *http.Request, token string) *http.Request {
	req.Header.Set("Authorization", "Bearer "+token)
	return req
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func decodeData[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var env struct {
		types.Envelope
		Data T `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env.Data
}

// formFile is one file part of a multipart request.
type formFile struct {
	field, name string
	body        []byte
}

func multipartRequest(t *testing.T, method, target string, fields url.Values, files ...formFile) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, vals := range fields {
		for _, v := range vals {
			require.NoError(t, mw.WriteField(k, v))
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.body)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func formRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 13, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 6, 0, 0, 0}
