package server

import (
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/azenia/website/internal/db"
	"github.com/azenia/website/internal/relay"
	"github.com/azenia/website/internal/site"
)

// Notices shown after an HTML form submission.
const (
	noticeContactThanks = "Thank you for contacting us! We will get back to you soon."
	noticePartnerThanks = "Thank you for your interest in partnering with us! We will contact you soon."
	noticeFormFailed    = "Something went wrong. Please try again."
)

// handleContactAPI relays a contact or partner submission posted as JSON.
func (s *Server) handleContactAPI(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.methodNotAllowed(w)
		return
	}

	sub, err := relay.DecodeSubmission(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err != nil {
		s.errorResponse(w, HTTPStatus(err), err.Error())
		return
	}

	result, err := s.contacts.Submit(r.Context(), sub)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.messageResponse(w, http.StatusOK, result.Message)
}

// formPageData builds the page data for the contact or partner form.
func formPageData(kind string, form site.FormData) any {
	if kind == db.SubmissionTypePartner {
		return site.NewPartnerData(form)
	}
	return site.NewContactData(form)
}

// handleSubmissionForm relays a contact or partner HTML form post and
// re-renders the page with a notice. Values are kept on failure.
func (s *Server) handleSubmissionForm(kind string) http.HandlerFunc {
	route, _ := site.Lookup("/" + kind)
	thanks := noticeContactThanks
	if kind == db.SubmissionTypePartner {
		thanks = noticePartnerThanks
	}

	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
		if err := r.ParseForm(); err != nil {
			s.render(w, r, http.StatusBadRequest, route, formPageData(kind, site.FormData{
				Notice: &site.Notice{Message: noticeFormFailed},
			}))
			return
		}

		form := site.FormData{Values: r.PostForm}

		sub, err := relay.SubmissionFromForm(kind, r.PostForm)
		if err != nil {
			var ve *relay.ValidationError
			msg := noticeFormFailed
			if errors.As(err, &ve) && ve.Field != "" {
				msg = "Please check the " + ve.Field + " field."
			}
			form.Notice = &site.Notice{Message: msg}
			s.render(w, r, http.StatusBadRequest, route, formPageData(kind, form))
			return
		}

		if _, err := s.contacts.Submit(r.Context(), sub); err != nil {
			form.Notice = &site.Notice{Message: noticeFormFailed}
			s.render(w, r, http.StatusInternalServerError, route, formPageData(kind, form))
			return
		}

		log.WithField("type", kind).Info("Form submission relayed")
		s.render(w, r, http.StatusOK, route, formPageData(kind, site.FormData{
			Notice: &site.Notice{Success: true, Message: thanks},
		}))
	}
}
