// Package api exposes the site over HTTP: public reads of the map and rules,
// and session-gated admin mutations.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"eventmap/internal/auth"
	"eventmap/internal/models"
	"eventmap/internal/service"
	"eventmap/internal/storage"
)

// Handler carries the services behind the HTTP surface.
type Handler struct {
	store     storage.Store
	addresses *service.AddressService
	rules     *service.RulesService
	passwords *service.PasswordService
	sessions  *auth.Sessions
	verifier  *auth.Verifier
	validate  *validator.Validate
	log       zerolog.Logger
}

// NewHandler wires the handler to its collaborators.
func NewHandler(
	store storage.Store,
	addresses *service.AddressService,
	rules *service.RulesService,
	passwords *service.PasswordService,
	sessions *auth.Sessions,
	verifier *auth.Verifier,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		store:     store,
		addresses: addresses,
		rules:     rules,
		passwords: passwords,
		sessions:  sessions,
		verifier:  verifier,
		validate:  validator.New(),
		log:       log.With().Str("component", "api").Logger(),
	}
}

// GetAddresses returns the persisted list verbatim, coordinates included.
func (h *Handler) GetAddresses(w http.ResponseWriter, r *http.Request) {
	list, err := h.addresses.List(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to list addresses")
		writeError(w, http.StatusInternalServerError, "failed to load addresses")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

type addressesRequest struct {
	Addresses []addressPayload `json:"addresses" validate:"required"`
}

type addressPayload struct {
	Text         string   `json:"text"`
	Lat          *float64 `json:"lat"`
	Lon          *float64 `json:"lon"`
	Instructions string   `json:"instructions"`
}

// PostAddresses replaces the whole address list. The request blocks while new
// addresses are geocoded, one second apart each.
func (h *Handler) PostAddresses(w http.ResponseWriter, r *http.Request) {
	var req addressesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "addresses must be an array")
		return
	}

	list := make([]models.Address, len(req.Addresses))
	for i, a := range req.Addresses {
		list[i] = models.Address{Text: a.Text, Lat: a.Lat, Lon: a.Lon, Instructions: a.Instructions}
	}

	if err := h.addresses.Replace(r.Context(), list); err != nil {
		h.log.Error().Err(err).Msg("failed to replace addresses")
		writeError(w, http.StatusInternalServerError, "failed to save addresses")
		return
	}
	writeSuccess(w, "addresses saved")
}

// GetRules returns the rules text.
func (h *Handler) GetRules(w http.ResponseWriter, r *http.Request) {
	text, err := h.rules.Rules(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to load rules")
		writeError(w, http.StatusInternalServerError, "failed to load rules")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"rules": text})
}

type rulesRequest struct {
	// Pointer so a present-but-empty string passes and a missing field fails.
	Rules *string `json:"rules" validate:"required"`
}

// PostRules replaces the rules text verbatim.
func (h *Handler) PostRules(w http.ResponseWriter, r *http.Request) {
	var req rulesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "rules must be a string")
		return
	}

	if err := h.rules.SetRules(r.Context(), *req.Rules); err != nil {
		h.log.Error().Err(err).Msg("failed to save rules")
		writeError(w, http.StatusInternalServerError, "failed to save rules")
		return
	}
	writeSuccess(w, "rules saved")
}

// SignIn checks the form credentials against the stored hash. Success sets
// the session cookie and redirects to the admin page; failure is a generic
// 401 with no hint about which factor failed.
func (h *Handler) SignIn(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form")
		return
	}
	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	doc, err := h.store.Read(r.Context())
	if err != nil {
		h.log.Error().Err(err).Msg("failed to read document during sign-in")
		writeError(w, http.StatusInternalServerError, "sign-in unavailable")
		return
	}

	if !h.verifier.Verify(username, password, doc.AdminPassword) {
		h.log.Warn().Str("remote", r.RemoteAddr).Msg("failed sign-in attempt")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusUnauthorized)
		h.renderPage(w, "signin.html", map[string]any{"Error": "Invalid username or password."})
		return
	}

	session := h.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    session.ID,
		Path:     "/",
		Expires:  session.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/admin", http.StatusSeeOther)
}

// SignOut destroys the session named by the cookie. Unauthenticated calls are
// harmless.
func (h *Handler) SignOut(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(sessionCookie); err == nil {
		h.sessions.Destroy(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		HttpOnly: true,
	})
	writeSuccess(w, "signed out")
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
}

// ChangePassword replaces the stored hash after verifying the current
// password.
func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req changePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "new password must be at least 8 characters")
		return
	}

	err := h.passwords.Change(r.Context(), req.CurrentPassword, req.NewPassword)
	switch {
	case errors.Is(err, service.ErrValidation):
		writeError(w, http.StatusBadRequest, "new password must be at least 8 characters")
	case errors.Is(err, service.ErrBadCredentials):
		writeError(w, http.StatusUnauthorized, "current password is incorrect")
	case err != nil:
		h.log.Error().Err(err).Msg("failed to change password")
		writeError(w, http.StatusInternalServerError, "failed to change password")
	default:
		writeSuccess(w, "password changed")
	}
}
