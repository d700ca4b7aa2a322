package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/mindwell-care/mindwell-backend-go/internal/api/middleware"
	"github.com/mindwell-care/mindwell-backend-go/internal/database/models"
	"github.com/mindwell-care/mindwell-backend-go/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

type authResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds until expiry
	User      struct {
		ID       int    `json:"id"`
		Username string `json:"username"`
		Role     string `json:"role"`
	} `json:"user"`
}

// Register creates a new user account and returns a session token
func (h *Handlers) Register(c *gin.Context) {
	var request struct {
		Username string `json:"username" binding:"required,min=3"`
		Password string `json:"password" binding:"required,min=8"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if existing, err := h.repos.User.GetByUsername(c.Request.Context(), request.Username); err == nil && existing != nil {
		utils.SendError(c, http.StatusConflict, "Username already taken")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(request.Password), bcrypt.DefaultCost)
	if err != nil {
		h.log.WithError(err).Error("Failed to hash password")
		utils.SendError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	user := &models.User{
		Username:     request.Username,
		PasswordHash: string(hash),
		Role:         "user",
	}
	if err := h.repos.User.Create(c.Request.Context(), user); err != nil {
		h.log.WithError(err).Error("Failed to create user")
		utils.SendError(c, http.StatusInternalServerError, "Failed to create user")
		return
	}

	h.sendToken(c, user)
}

// Login verifies credentials and returns a session token
func (h *Handlers) Login(c *gin.Context) {
	var request struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.repos.User.GetByUsername(c.Request.Context(), request.Username)
	if err != nil || user == nil {
		utils.SendError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(request.Password)); err != nil {
		utils.SendError(c, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	h.sendToken(c, user)
}

// GetProfile returns the authenticated user
func (h *Handlers) GetProfile(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == 0 {
		utils.SendError(c, http.StatusUnauthorized, "Unauthorized")
		return
	}

	user, err := h.repos.User.GetByID(c.Request.Context(), userID)
	if err != nil || user == nil {
		utils.SendError(c, http.StatusNotFound, "User not found")
		return
	}
	utils.SendSuccess(c, user)
}

func (h *Handlers) sendToken(c *gin.Context, user *models.User) {
	expiry := time.Duration(h.cfg.Auth.TokenExpiry) * time.Second
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
		"exp":      time.Now().Add(expiry).Unix(),
		"iat":      time.Now().Unix(),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(h.cfg.Auth.JWTSecret))
	if err != nil {
		h.log.WithError(err).Error("Failed to sign token")
		utils.SendError(c, http.StatusInternalServerError, "Failed to create session")
		return
	}

	response := authResponse{Token: token, ExpiresIn: int(expiry.Seconds())}
	response.User.ID = user.ID
	response.User.Username = user.Username
	response.User.Role = user.Role
	utils.SendSuccess(c, response)
}
