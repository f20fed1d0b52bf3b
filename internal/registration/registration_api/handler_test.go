package registration_api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/engdahman/conference-app/internal/logger"
	"github.com/engdahman/conference-app/internal/models"
	"github.com/engdahman/conference-app/internal/registration"
)

type fakeStore struct {
	emails map[string]bool
}

func (f *fakeStore) Insert(_ context.Context, a *models.Attendee) error {
	f.emails[strings.ToLower(a.Email)] = true
	return nil
}

func (f *fakeStore) EmailExists(_ context.Context, email string) (bool, error) {
	return f.emails[strings.ToLower(email)], nil
}

func (f *fakeStore) TicketCodeExists(_ context.Context, _ string) (bool, error) {
	return false, nil
}

func newTestHandler() *Handler {
	store := &fakeStore{emails: map[string]bool{}}
	svc := registration.NewService(store, nil, nil, nil)
	return NewHandler(svc, logger.NewLogger())
}

func postJSON(h *Handler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/register", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleRegister(rec, req)
	return rec
}

func TestHandleRegisterCreated(t *testing.T) {
	h := newTestHandler()
	rec := postJSON(h, `{"fullName":"Omar Hassan","email":"omar@example.com","phone":"+966501111111"}`)

	require.Equal(t, http.StatusCreated, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, true, body["success"])
	assert.Regexp(t, `^Y[0-9A-Z]{6}$`, body["ticketCode"])
	assert.NotEmpty(t, body["id"])
	assert.Contains(t, body["qrDataUrl"], "data:image/png;base64,")
	attendee := body["attendee"].(map[string]interface{})
	assert.Equal(t, body["ticketCode"], attendee["ticketCode"])
}

func TestHandleRegisterDuplicateEmail(t *testing.T) {
	h := newTestHandler()
	payload := `{"fullName":"Omar Hassan","email":"omar@example.com","phone":"+966501111111"}`

	require.Equal(t, http.StatusCreated, postJSON(h, payload).Code)

	rec := postJSON(h, payload)
	require.Equal(t, http.StatusConflict, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "already_registered", body["error"])
}

func TestHandleRegisterInvalidInput(t *testing.T) {
	h := newTestHandler()
	rec := postJSON(h, `{"fullName":"","email":"omar@example.com","phone":"1"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "invalid_input", body["error"])
}

func TestHandleRegisterMalformedJSON(t *testing.T) {
	h := newTestHandler()
	rec := postJSON(h, `{"fullName":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
