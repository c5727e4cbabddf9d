package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"notesboard/internal/database"
	"notesboard/internal/utils"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt cost for stored password hashes.
const PasswordCost = 12

type Handler struct {
	store        *database.Store
	tokens       *Tokens
	logger       *slog.Logger
	secureCookie bool
}

func NewHandler(store *database.Store, tokens *Tokens, logger *slog.Logger, secureCookie bool) *Handler {
	return &Handler{
		store:        store,
		tokens:       tokens,
		logger:       logger,
		secureCookie: secureCookie,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (LoginRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"Email.required":    "Email is required",
		"Email.email":       "Please enter a valid email address",
		"Password.required": "Password is required",
	}
}

type SignupRequest struct {
	FirstName string `json:"firstName" binding:"required,max=50"`
	LastName  string `json:"lastName" binding:"required,max=50"`
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
}

func (SignupRequest) ValidationMessages() map[string]string {
	return map[string]string{
		"FirstName.required": "First name is required",
		"FirstName.max":      "First name must be less than 50 characters",
		"LastName.required":  "Last name is required",
		"LastName.max":       "Last name must be less than 50 characters",
		"Email.required":     "Email is required",
		"Email.email":        "Please enter a valid email address",
		"Password.required":  "Password is required",
		"Password.min":       "Password must be at least 8 characters",
	}
}

type userResponse struct {
	ID        string  `json:"id"`
	FirstName string  `json:"firstName"`
	LastName  string  `json:"lastName"`
	Email     string  `json:"email"`
	Bio       *string `json:"bio"`
	Role      *string `json:"role"`
	Avatar    *string `json:"avatar"`
	Interests *string `json:"interests"`
	CreatedAt string  `json:"createdAt"`
}

func newUserResponse(u *utils.User) userResponse {
	return userResponse{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Bio:       u.Bio,
		Role:      u.Role,
		Avatar:    u.Avatar,
		Interests: u.Interests,
		CreatedAt: u.CreatedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
	}
}

func (h *Handler) internalError(ctx *gin.Context, msg string, err error) {
	h.logger.Error(msg, "path", ctx.FullPath(), "error", err)
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}

func (h *Handler) issueCookie(ctx *gin.Context, user *utils.User) error {
	token, err := h.tokens.Sign(Identity{
		UserID:    user.ID,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
	})
	if err != nil {
		return err
	}
	setTokenCookie(ctx, token, h.secureCookie)
	return nil
}

func (h *Handler) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.ValidationMessage(err, req)})
		return
	}

	user, err := h.store.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
			return
		}
		h.internalError(ctx, "Failed to find user", err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password"})
		return
	}

	if err := h.issueCookie(ctx, user); err != nil {
		h.internalError(ctx, "Failed to create token", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"message": "Login successful",
		"user":    newUserResponse(user),
	})
}

func (h *Handler) Signup(ctx *gin.Context) {
	var req SignupRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": utils.ValidationMessage(err, req)})
		return
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), PasswordCost)
	if err != nil {
		h.internalError(ctx, "Failed to hash password", err)
		return
	}
	user := utils.User{
		ID:        utils.NewID(),
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Password:  string(hashedPassword),
	}
	if err := h.store.CreateUser(ctx, &user); err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			ctx.JSON(http.StatusConflict, gin.H{"error": "User with this email already exists"})
			return
		}
		h.internalError(ctx, "Failed to save user", err)
		return
	}

	if err := h.issueCookie(ctx, &user); err != nil {
		h.internalError(ctx, "Failed to create token", err)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{
		"message": "Account created successfully",
		"user":    newUserResponse(&user),
	})
}

func (h *Handler) Logout(ctx *gin.Context) {
	clearTokenCookie(ctx, h.secureCookie)
	ctx.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) Me(ctx *gin.Context) {
	id, ok := CurrentUser(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	user, err := h.store.FindUser(ctx, id.UserID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		h.internalError(ctx, "Failed to fetch user", err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"user": newUserResponse(user)})
}
