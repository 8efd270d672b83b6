package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_ExposesSiteCollectors(t *testing.T) {
	SubmissionsCounter.WithLabelValues("contact").Inc()
	EmailsCounter.WithLabelValues(EmailSent).Inc()

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, `site_submissions_total{type="contact"}`)
	assert.Contains(t, body, `site_emails_total{outcome="sent"}`)
	assert.Contains(t, body, "go_goroutines")
}

func TestCounters_AreLabelled(t *testing.T) {
	before := testutil.ToFloat64(RequestsCounter.WithLabelValues("/api/jobs", http.MethodGet, "200"))
	RequestsCounter.WithLabelValues("/api/jobs", http.MethodGet, "200").Inc()
	assert.Equal(t, before+1, testutil.ToFloat64(RequestsCounter.WithLabelValues("/api/jobs", http.MethodGet, "200")))
}
