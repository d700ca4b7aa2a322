package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/mindwell-care/mindwell-backend-go/internal/api/middleware"
	"github.com/mindwell-care/mindwell-backend-go/internal/websocket"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/mindwell-care/mindwell-backend-go/pkg/utils"
)

// RealtimeTranslate opens a realtime translation channel. The token
// travels in a query parameter because websocket clients cannot set
// headers; a missing or invalid token closes the socket with a policy
// violation rather than an HTTP error.
func (h *Handlers) RealtimeTranslate(c *gin.Context) {
	h.serveRealtime(c, websocket.ModeTranslate)
}

// RealtimeDetect opens a realtime language-detection channel
func (h *Handlers) RealtimeDetect(c *gin.Context) {
	h.serveRealtime(c, websocket.ModeDetect)
}

func (h *Handlers) serveRealtime(c *gin.Context, mode string) {
	claims, ok := middleware.ParseToken(c.Query("token"), h.cfg.Auth.JWTSecret)
	if !ok {
		websocket.ClosePolicyViolation(c.Writer, c.Request, "authentication required")
		return
	}
	userID := 0
	if id, ok := claims["user_id"].(float64); ok {
		userID = int(id)
	}
	if userID == 0 {
		websocket.ClosePolicyViolation(c.Writer, c.Request, "authentication required")
		return
	}

	target, err := h.consent.LocaleWithConsent(c.Request.Context(), userID)
	if err != nil {
		// Translation channels are gated on consent; detection channels
		// work without a stored preference.
		if mode == websocket.ModeTranslate {
			reason := "consent verification failed"
			if err == errors.ErrConsentRequired {
				reason = "translation consent required"
			}
			websocket.ClosePolicyViolation(c.Writer, c.Request, reason)
			return
		}
		target = h.registry.DefaultLocale()
	}

	websocket.Serve(h.hub, h.translator, c.Writer, c.Request, userID, target, mode)
}

// GetRealtimeStats reports hub statistics (admin)
func (h *Handlers) GetRealtimeStats(c *gin.Context) {
	utils.SendSuccess(c, h.hub.Stats())
}

// GetActiveUsers lists users with open realtime channels (admin)
func (h *Handlers) GetActiveUsers(c *gin.Context) {
	utils.SendSuccess(c, gin.H{"active_users": h.hub.ActiveUsers()})
}
