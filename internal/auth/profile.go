package auth

import (
	"errors"
	"net/http"
	"strings"

	"notesboard/internal/database"
	"notesboard/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

type ProfileUpdateRequest struct {
	FirstName string  `json:"firstName" binding:"required,max=50"`
	LastName  string  `json:"lastName" binding:"required,max=50"`
	Email     string  `json:"email" binding:"required,email"`
	Bio       *string `json:"bio" binding:"omitempty,max=500"`
	Interests *string `json:"interests" binding:"omitempty,max=200"`
}

func (ProfileUpdateRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"FirstName.required": "First name is required",
		"FirstName.max":      "First name must be less than 50 characters",
		"LastName.required":  "Last name is required",
		"LastName.max":       "Last name must be less than 50 characters",
		"Email.required":     "Email is required",
		"Email.email":        "Please enter a valid email address",
		"Bio.max":            "Bio must be less than 500 characters",
		"Interests.max":      "Interests must be less than 200 characters",
	}
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=8"`
}

func (PasswordChangeRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"CurrentPassword.required": "Current password is required",
		"NewPassword.required":     "New password is required",
		"NewPassword.min":          "Password must be at least 8 characters",
	}
}

// trimmedOrNil maps blank optional text to NULL.
func trimmedOrNil(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}

func (h *Handler) userOr404(ctx *gin.Context, err error, msg string) {
	if errors.Is(err, database.ErrNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	h.internalError(ctx, msg, err)
}

func (h *Handler) GetProfile(ctx *gin.Context) {
	id, _ := CurrentUser(ctx)
	user, err := h.store.FindUser(ctx, id.UserID)
	if err != nil {
		h.userOr404(ctx, err, "Profile fetch error")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": user})
}

func (h *Handler) UpdateProfile(ctx *gin.Context) {
	id, _ := CurrentUser(ctx)

	var req ProfileUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.ValidationMessage(err, req)})
		return
	}

	user, err := h.store.UpdateProfile(ctx, id.UserID, database.ProfileUpdate{
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Bio:       trimmedOrNil(req.Bio),
		Interests: trimmedOrNil(req.Interests),
	})
	if errors.Is(err, database.ErrEmailTaken) {
		ctx.JSON(http.StatusConflict, gin.H{"error": "Email is already in use"})
		return
	}
	if err != nil {
		h.userOr404(ctx, err, "Profile update error")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Profile updated successfully",
		"user":    user,
	})
}

// DeleteProfile removes the account and its notes, then clears the cookie.
func (h *Handler) DeleteProfile(ctx *gin.Context) {
	id, _ := CurrentUser(ctx)
	if err := h.store.DeleteUser(ctx, id.UserID); err != nil {
		h.userOr404(ctx, err, "Account deletion error")
		return
	}
	clearTokenCookie(ctx, h.secureCookie)
	ctx.JSON(http.StatusOK, gin.H{"message": "Account deleted successfully"})
}

func (h *Handler) ChangePassword(ctx *gin.Context) {
	id, _ := CurrentUser(ctx)

	var req PasswordChangeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.ValidationMessage(err, req)})
		return
	}

	user, err := h.store.FindUser(ctx, id.UserID)
	if err != nil {
		h.userOr404(ctx, err, "Password change error")
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Current password is incorrect"})
		return
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.NewPassword)) == nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "New password must be different from current password"})
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), PasswordCost)
	if err != nil {
		h.internalError(ctx, "Failed to hash password", err)
		return
	}
	if err := h.store.UpdatePassword(ctx, id.UserID, string(hash)); err != nil {
		h.userOr404(ctx, err, "Password change error")
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}
