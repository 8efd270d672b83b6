package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/db"
)

// logoObjectPrefix is the folder logos are stored under in the logos bucket.
const logoObjectPrefix = "client-logos"

// handleLogos lists the active logos (public) or uploads a new one (admin).
func (s *Server) handleLogos(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		logos, err := s.cache.ActiveLogos(r.Context())
		if err != nil {
			s.storeError(w, err, "Failed to list logos")
			return
		}
		if logos == nil {
			logos = []db.ClientLogo{}
		}
		s.successResponse(w, http.StatusOK, logos)
	case http.MethodPost:
		if _, ok := s.requireAdminAPI(w, r); !ok {
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBody)
		if err := r.ParseMultipartForm(maxUploadBody); err != nil {
			s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		logo, err := s.createLogo(r.Context(), r)
		if err != nil {
			s.errorResponse(w, HTTPStatus(err), err.Error())
			return
		}
		s.successResponse(w, http.StatusOK, logo)
	default:
		s.methodNotAllowed(w)
	}
}

// handleLogo updates or removes one logo (admin).
func (s *Server) handleLogo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut && r.Method != http.MethodDelete {
		s.methodNotAllowed(w)
		return
	}
	if _, ok := s.requireAdminAPI(w, r); !ok {
		return
	}

	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid logo ID")
		return
	}

	if r.Method == http.MethodDelete {
		if err := s.store.DeleteLogo(r.Context(), id); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				s.errorResponse(w, http.StatusNotFound, "Logo not found")
				return
			}
			s.storeError(w, err, "Failed to delete logo")
			return
		}
		s.cache.InvalidateLogos()
		s.messageResponse(w, http.StatusOK, "Logo deleted successfully")
		return
	}

	var fields db.LogoFields
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if fields.Name != nil {
		name := strings.TrimSpace(*fields.Name)
		if name == "" {
			s.errorResponse(w, http.StatusBadRequest, (&ErrValidation{Field: "name", Message: "required"}).Error())
			return
		}
		fields.Name = &name
	}

	logo, err := s.store.UpdateLogo(r.Context(), id, fields)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			s.errorResponse(w, http.StatusNotFound, "Logo not found")
			return
		}
		s.storeError(w, err, "Failed to update logo")
		return
	}
	s.cache.InvalidateLogos()
	s.successResponse(w, http.StatusOK, logo)
}

// createLogo validates a parsed multipart logo form, uploads the image and
// inserts the row. is_active defaults to true when the field is absent.
func (s *Server) createLogo(ctx context.Context, r *http.Request) (*db.ClientLogo, error) {
	name := strings.TrimSpace(r.FormValue("name"))
	if name == "" {
		return nil, &ErrValidation{Field: "name", Message: "required"}
	}

	order := 0
	if v := strings.TrimSpace(r.FormValue("display_order")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, &ErrValidation{Field: "display_order", Message: "must be an integer"}
		}
		order = n
	}

	// The admin form posts a hidden "false" before the checkbox, so the
	// last value wins.
	active := true
	if vals := r.Form["is_active"]; len(vals) > 0 {
		active = formBool(vals[len(vals)-1])
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return nil, &ErrValidation{Field: "image", Message: "required"}
	}
	defer file.Close()

	body, err := readUpload(file)
	if err != nil {
		return nil, err
	}
	if !strings.HasPrefix(mimetype.Detect(body).String(), "image/") {
		return nil, &ErrValidation{Field: "image", Message: "must be an image"}
	}

	obj, err := s.upload(ctx, s.buckets.LogosBucket, logoObjectPrefix, header.Filename, body)
	if err != nil {
		return nil, err
	}

	logo, err := s.store.CreateLogo(ctx, db.LogoInput{
		Name:         name,
		ImageURL:     obj.PublicURL,
		DisplayOrder: order,
		IsActive:     active,
	})
	if err != nil {
		return nil, err
	}
	s.cache.InvalidateLogos()

	log.WithFields(log.Fields{"logo_id": logo.ID, "name": logo.Name}).Info("Client logo added")
	return logo, nil
}

// formBool reads an HTML checkbox or a boolean form value.
func formBool(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "on", "yes":
		return true
	}
	b, _ := strconv.ParseBool(v)
	return b
}
