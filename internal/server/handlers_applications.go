package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/relay"
	"github.com/azenia/website/internal/storage"
)

// resumeExtensions are the accepted resume file types.
var resumeExtensions = map[string]bool{".pdf": true, ".doc": true, ".docx": true}

// applicationForm is the multipart job application.
type applicationForm struct {
	FirstName string `form:"firstName" validate:"required"`
	LastName  string `form:"lastName" validate:"required"`
	Email     string `form:"email" validate:"required,email"`
	Phone     string `form:"phone" validate:"required"`
	JobID     string `form:"jobId" validate:"required,uuid"`
}

// newTagValidator reports fields by the name in their struct tag (form, json).
func newTagValidator(tag string) *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get(tag), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

func applicationFormFrom(r *http.Request) applicationForm {
	return applicationForm{
		FirstName: strings.TrimSpace(r.FormValue("firstName")),
		LastName:  strings.TrimSpace(r.FormValue("lastName")),
		Email:     strings.TrimSpace(r.FormValue("email")),
		Phone:     strings.TrimSpace(r.FormValue("phone")),
		JobID:     strings.TrimSpace(r.FormValue("jobId")),
	}
}

// handleApplicationNotify acknowledges an application whose resume is
// already stored. Any parse failure answers 500.
func (s *Server) handleApplicationNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	var notice relay.ApplicationNotice
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody)).Decode(&notice); err != nil {
		log.WithError(err).Error("Failed to parse application notice")
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	ack, err := s.applicants.Notify(r.Context(), notice)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": relay.MessageApplicationReceived,
		"data":    ack,
	})
}

// handleCreateApplication accepts a multipart application with its resume.
func (s *Server) handleCreateApplication(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
	if err := r.ParseMultipartForm(maxUploadBody); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	app, _, err := s.submitApplication(r.Context(), r)
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{
		"success": true,
		"message": relay.MessageApplicationReceived,
		"data":    app,
	})
}

// submitApplication validates a parsed multipart application, stores the
// resume and the application row, then sends the notice. The notice never
// fails the submission.
func (s *Server) submitApplication(ctx context.Context, r *http.Request) (*db.JobApplication, *db.Job, error) {
	form := applicationFormFrom(r)
	if err := s.formValidator.Struct(form); err != nil {
		return nil, nil, validationError(err)
	}

	file, header, err := r.FormFile("resume")
	if err != nil {
		return nil, nil, &ErrValidation{Field: "resume", Message: "required"}
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !resumeExtensions[ext] {
		return nil, nil, &ErrValidation{Field: "resume", Message: "must be a PDF or Word document"}
	}

	jobID := uuid.MustParse(form.JobID)
	job, err := s.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load job: %w", err)
	}
	if job == nil {
		return nil, nil, &ErrNotFound{Resource: "Job"}
	}

	body, err := readUpload(file)
	if err != nil {
		return nil, nil, err
	}
	obj, err := s.upload(ctx, s.buckets.ResumesBucket, jobID.String(), header.Filename, body)
	if err != nil {
		return nil, nil, err
	}

	app, err := s.store.CreateApplication(ctx, db.ApplicationInput{
		JobID:     jobID,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Phone:     form.Phone,
		ResumeURL: obj.PublicURL,
	})
	if err != nil {
		log.WithFields(log.Fields{
			logger.ErrorTypeField: logger.ErrorTypeDB,
			"job_id":              jobID,
		}).WithError(err).Error("Failed to store application")
		return nil, nil, err
	}

	if _, err := s.applicants.Notify(ctx, relay.ApplicationNotice{
		FirstName: app.FirstName,
		LastName:  app.LastName,
		Email:     app.Email,
		Phone:     app.Phone,
		ResumeURL: app.ResumeURL,
		JobTitle:  job.Title,
		JobID:     jobID.String(),
	}); err != nil {
		log.WithField("application_id", app.ID).WithError(err).Error("Application notice failed")
	}

	return app, job, nil
}

// readUpload reads an uploaded file, rejecting empty ones.
func readUpload(file multipart.File) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(file, maxUploadBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if len(body) == 0 {
		return nil, &ErrValidation{Field: "file", Message: "empty upload"}
	}
	return body, nil
}

// upload stores body under prefix in bucket.
func (s *Server) upload(ctx context.Context, bucket, prefix, filename string, body []byte) (*storage.Object, error) {
	if s.uploader == nil {
		return nil, errors.New("file storage is not configured")
	}

	obj, err := s.uploader.Upload(ctx, bucket, storage.ObjectName(prefix, filename), body)
	if err != nil {
		log.WithFields(log.Fields{
			logger.ErrorTypeField: logger.ErrorTypeStorage,
			"bucket":              bucket,
		}).WithError(err).Error("Upload failed")
		return nil, err
	}
	return obj, nil
}
