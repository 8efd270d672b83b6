package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/logger"
	"github.com/azenia/website/internal/schemas"
)

// jobRequest is a jobs endpoint write body: the job columns plus the id
// addressed by PUT and DELETE.
type jobRequest struct {
	ID string `json:"id"`
	db.JobFields
}

// handleJobs is the jobs collection endpoint. GET is public; writes need an
// admin session.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleListJobs(w, r)
		return
	case http.MethodPost, http.MethodPut, http.MethodDelete:
	default:
		s.methodNotAllowed(w)
		return
	}

	adminID, ok := s.requireAdminAPI(w, r)
	if !ok {
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	var req jobRequest
	if err := json.Unmarshal(body, &req); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	entry := log.WithFields(log.Fields{"admin_id": adminID, "method": r.Method})

	switch r.Method {
	case http.MethodPost:
		s.handleCreateJob(w, r, body, req, entry)
	case http.MethodPut:
		s.handleUpdateJob(w, r, body, req, entry)
	case http.MethodDelete:
		s.handleDeleteJob(w, r, req, entry)
	}
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	jobs, err := s.store.ListJobs(r.Context())
	if err != nil {
		s.storeError(w, err, "Failed to list jobs")
		return
	}
	if jobs == nil {
		jobs = []db.Job{}
	}
	s.successResponse(w, http.StatusOK, jobs)
}

func (s *Server) handleCreateJob(w http.ResponseWriter, r *http.Request, body []byte, req jobRequest, entry *log.Entry) {
	if !s.checkJobSchema(w, body) {
		return
	}

	job, err := s.store.CreateJob(r.Context(), req.JobFields)
	if err != nil {
		s.storeError(w, err, "Failed to create job")
		return
	}
	s.cache.InvalidateJobs()

	entry.WithField("job_id", job.ID).Info("Job created")
	s.successResponse(w, http.StatusOK, job)
}

func (s *Server) handleUpdateJob(w http.ResponseWriter, r *http.Request, body []byte, req jobRequest, entry *log.Entry) {
	id, ok := s.jobID(w, req)
	if !ok {
		return
	}
	if !s.checkJobSchema(w, body) {
		return
	}

	job, err := s.store.UpdateJob(r.Context(), id, req.JobFields)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Job not found")
			return
		}
		s.storeError(w, err, "Failed to update job")
		return
	}
	s.cache.InvalidateJobs()

	entry.WithField("job_id", job.ID).Info("Job updated")
	s.successResponse(w, http.StatusOK, job)
}

// handleDeleteJob removes a job. Deleting an unknown id succeeds.
func (s *Server) handleDeleteJob(w http.ResponseWriter, r *http.Request, req jobRequest, entry *log.Entry) {
	id, ok := s.jobID(w, req)
	if !ok {
		return
	}

	if err := s.store.DeleteJob(r.Context(), id); err != nil && !errors.Is(err, db.ErrNotFound) {
		s.storeError(w, err, "Failed to delete job")
		return
	}
	s.cache.InvalidateJobs()

	entry.WithField("job_id", id).Info("Job deleted")
	s.messageResponse(w, http.StatusOK, "Job deleted successfully")
}

// jobID extracts the id PUT and DELETE address.
func (s *Server) jobID(w http.ResponseWriter, req jobRequest) (uuid.UUID, bool) {
	if req.ID == "" {
		s.errorResponse(w, http.StatusBadRequest, "Job ID is required")
		return uuid.Nil, false
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid job ID")
		return uuid.Nil, false
	}
	return id, true
}

// checkJobSchema validates a write body against the job schema.
func (s *Server) checkJobSchema(w http.ResponseWriter, body []byte) bool {
	err := schemas.ValidateJob(body)
	if err == nil {
		return true
	}
	var ve *schemas.ValidationError
	if errors.As(err, &ve) {
		s.errorResponse(w, http.StatusBadRequest, ve.First())
		return false
	}
	log.WithError(err).Error("Job schema unavailable")
	s.errorResponse(w, http.StatusInternalServerError, err.Error())
	return false
}

// storeError answers 500 with the store's message and logs it.
func (s *Server) storeError(w http.ResponseWriter, err error, msg string) {
	log.WithFields(log.Fields{
		logger.ErrorTypeField: logger.ErrorTypeDB,
	}).WithError(err).Error(msg)
	s.errorResponse(w, http.StatusInternalServerError, err.Error())
}
