//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoginRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request LoginRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: LoginRequest{Email: "admin@azenia.org", Password: "secret"},
		},
		{
			name:    "missing email",
			request: LoginRequest{Password: "secret"},
			wantErr: true,
			errMsg:  "required",
		},
		{
			name:    "invalid email format",
			request: LoginRequest{Email: "not-an-email", Password: "secret"},
			wantErr: true,
			errMsg:  "email",
		},
		{
			name:    "missing password",
			request: LoginRequest{Email: "admin@azenia.org"},
			wantErr: true,
			errMsg:  "required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestValidate_ReportsJSONNames(t *testing.T) {
	err := (&CreateAdminRequest{Email: "admin@azenia.org"}).Validate()

	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Equal(t, "password", verrs[0].Field())
}

func TestCreateAdminRequest_Validate(t *testing.T) {
	tests := []struct {
		name    string
		request CreateAdminRequest
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid request",
			request: CreateAdminRequest{Email: "admin@azenia.org", Password: "password123"},
		},
		{
			name:    "password too short",
			request: CreateAdminRequest{Email: "admin@azenia.org", Password: "short"},
			wantErr: true,
			errMsg:  "min",
		},
		{
			name:    "invalid email",
			request: CreateAdminRequest{Email: "admin", Password: "password123"},
			wantErr: true,
			errMsg:  "email",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.request.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoginResponse_JSON(t *testing.T) {
	id := uuid.New()
	resp := LoginResponse{
		Token: "abc",
		Admin: &Admin{ID: id, Email: "admin@azenia.org", CreatedAt: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)},
	}

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "abc", decoded["token"])
	admin := decoded["admin"].(map[string]any)
	assert.Equal(t, id.String(), admin["id"])
	assert.NotContains(t, admin, "password_hash")
}

func TestEnvelope_OmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Fail("Job not found"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Job not found"}`, string(data))

	data, err = json.Marshal(OK([]string{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"data":[]}`, string(data))

	data, err = json.Marshal(Envelope{Success: true, Message: "Job deleted successfully"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Job deleted successfully"}`, string(data))
}
