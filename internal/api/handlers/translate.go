package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mindwell-care/mindwell-backend-go/internal/api/middleware"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/mindwell-care/mindwell-backend-go/pkg/utils"
)

// TranslateText translates a single text via the language-model
// collaborator. Requires language consent.
func (h *Handlers) TranslateText(c *gin.Context) {
	var request struct {
		Text           string `json:"text" binding:"required"`
		TargetLanguage string `json:"target_language" binding:"required"`
		SourceLanguage string `json:"source_language"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.requireConsent(c) {
		return
	}

	translated, err := h.translator.TranslateText(c.Request.Context(),
		request.Text, request.TargetLanguage, request.SourceLanguage)
	if err != nil {
		h.sendTranslationError(c, err)
		return
	}

	utils.SendSuccess(c, gin.H{
		"original_text":   request.Text,
		"translated_text": translated,
		"source_language": request.SourceLanguage,
		"target_language": request.TargetLanguage,
	})
}

// TranslateBatch translates several texts in one collaborator call.
// The batch succeeds or fails as a whole.
func (h *Handlers) TranslateBatch(c *gin.Context) {
	var request struct {
		Texts          []string `json:"texts" binding:"required"`
		TargetLanguage string   `json:"target_language" binding:"required"`
		SourceLanguage string   `json:"source_language"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.requireConsent(c) {
		return
	}

	translated, err := h.translator.BatchTranslate(c.Request.Context(),
		request.Texts, request.TargetLanguage, request.SourceLanguage)
	if err != nil {
		h.sendTranslationError(c, err)
		return
	}

	utils.SendSuccess(c, gin.H{
		"original_texts":   request.Texts,
		"translated_texts": translated,
		"target_language":  request.TargetLanguage,
		"count":            len(translated),
	})
}

// TranslateContent translates the textual fields of a structured
// content document, nested sections included.
func (h *Handlers) TranslateContent(c *gin.Context) {
	var request struct {
		Content        map[string]interface{} `json:"content" binding:"required"`
		TargetLanguage string                 `json:"target_language" binding:"required"`
		SourceLanguage string                 `json:"source_language"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if !h.requireConsent(c) {
		return
	}

	translated, status, err := h.translator.TranslateContent(c.Request.Context(),
		request.Content, request.TargetLanguage, request.SourceLanguage)
	if err != nil {
		h.sendTranslationError(c, err)
		return
	}

	utils.SendSuccessWithMeta(c, translated, gin.H{
		"status":          status,
		"target_language": request.TargetLanguage,
	})
}

// DetectLanguage identifies the language of a text
func (h *Handlers) DetectLanguage(c *gin.Context) {
	var request struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		utils.SendError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	detected, err := h.translator.DetectLanguage(c.Request.Context(), request.Text)
	if err != nil {
		h.sendTranslationError(c, err)
		return
	}
	if detected == "" {
		utils.SendError(c, http.StatusUnprocessableEntity, "Language could not be determined")
		return
	}

	utils.SendSuccess(c, gin.H{
		"text":              request.Text,
		"detected_language": detected,
		"language_name":     h.translator.LanguageName(detected),
	})
}

// requireConsent enforces the language consent gate on translation
// endpoints. Anonymous callers are rejected outright.
func (h *Handlers) requireConsent(c *gin.Context) bool {
	userID := middleware.UserID(c)
	if userID == 0 {
		utils.SendError(c, http.StatusUnauthorized, "Authentication required for translation")
		return false
	}

	status, err := h.consent.Status(c.Request.Context(), userID)
	if err != nil {
		h.log.WithError(err).WithField("user_id", userID).Error("Failed to read consent")
		utils.SendError(c, http.StatusInternalServerError, "Failed to verify consent")
		return false
	}
	if !status.ConsentGiven {
		appErr := errors.ErrConsentRequired
		utils.SendErrorWithDetails(c, appErr.Code, appErr.Message, appErr.Details)
		return false
	}
	return true
}

func (h *Handlers) sendTranslationError(c *gin.Context, err error) {
	if appErr, ok := err.(*errors.AppError); ok {
		utils.SendErrorWithDetails(c, appErr.Code, appErr.Message, appErr.Details)
		return
	}
	h.log.WithError(err).Error("Translation request failed")
	utils.SendError(c, http.StatusBadGateway, "Translation service unavailable")
}
