package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/rogerio-castellano/stock-notifier/internal/auth"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
)

// GetProfileHandler godoc
// @Summary Get the caller's profile
// @Tags profile
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 404 {string} string "User not found"
// @Failure 500 {string} string "Internal error"
// @Router /profile [get]
func GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	user, err := userRepo.GetByID(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch user profile", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// UpdateProfileHandler godoc
// @Summary Update the caller's profile
// @Description Blank fields keep their current value. Only the caller's own id is accepted.
// @Tags profile
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param profile body ProfileUpdateRequest true "Fields to change"
// @Success 200 {object} ProfileUpdateResult
// @Failure 400 {string} string "Invalid input"
// @Failure 403 {string} string "Not your profile"
// @Failure 404 {string} string "User not found"
// @Failure 409 {string} string "Username taken"
// @Router /profile/{id} [put]
func UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamID(r, "id")
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}
	callerID := auth.UserID(r.Context())
	if id != callerID {
		http.Error(w, "not authorized to update this profile", http.StatusForbidden)
		return
	}

	var req ProfileUpdateRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}

	user, err := userRepo.GetByID(r.Context(), callerID)
	if err != nil {
		if errors.Is(err, repo.ErrUserNotFound) {
			http.Error(w, "user not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch user profile", http.StatusInternalServerError)
		return
	}

	if username := strings.TrimSpace(req.Username); username != "" {
		if len(username) < 3 {
			http.Error(w, "username too short", http.StatusBadRequest)
			return
		}
		user.Username = username
	}
	if strings.TrimSpace(req.Contact) != "" {
		contact, ok := normalizeContact(req.Contact)
		if !ok {
			http.Error(w, "contact must be an E.164 phone number", http.StatusBadRequest)
			return
		}
		user.Contact = contact
	}

	updated, err := userRepo.UpdateUser(r.Context(), user)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrDuplicatedValueUnique):
			http.Error(w, "username already exists", http.StatusConflict)
		case errors.Is(err, repo.ErrUserNotFound):
			http.Error(w, "user not found", http.StatusNotFound)
		default:
			slog.Error("failed to update user profile", "user_id", callerID, "error", err)
			http.Error(w, "failed to update user profile", http.StatusInternalServerError)
		}
		return
	}

	writeJSON(w, http.StatusOK, ProfileUpdateResult{Message: "profile updated", User: updated})
}
