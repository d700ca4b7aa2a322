package translation

import (
	"context"
	"fmt"
	"strings"

	"github.com/mindwell-care/mindwell-backend-go/internal/ai"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	// Low temperature keeps translations deterministic
	translationTemperature = 0.1
	translationMaxTokens   = 2000
	detectionMaxTokens     = 10
)

// ChatClient is the external language-model collaborator. *ai.Manager
// satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, messages []ai.ChatMessage, opts ai.ChatOptions) (*ai.ChatResponse, error)
}

// Translator dispatches machine translation of text, batches and
// structured content to the language-model collaborator. Locales are
// always validated against the registry first; translations are never
// produced for languages outside it.
type Translator struct {
	registry *i18n.Registry
	catalog  *i18n.Catalog
	client   ChatClient
	logger   *logrus.Logger
}

// NewTranslator creates the dispatcher
func NewTranslator(registry *i18n.Registry, catalog *i18n.Catalog, client ChatClient, logger *logrus.Logger) *Translator {
	return &Translator{
		registry: registry,
		catalog:  catalog,
		client:   client,
		logger:   logger,
	}
}

// ValidateLocales checks target (and source when given) against the
// registry, returning a client error naming the offending code.
func (t *Translator) ValidateLocales(target, source string) error {
	if !t.registry.Supported(target) {
		return errors.WithDetails(errors.ErrBadRequest,
			fmt.Sprintf("target language %s is not supported", target))
	}
	if source != "" && !t.registry.Supported(source) {
		return errors.WithDetails(errors.ErrBadRequest,
			fmt.Sprintf("source language %s is not supported", source))
	}
	return nil
}

// TranslateText translates a single text into the target locale. An
// empty source triggers language detection; when detection fails or
// yields an unsupported code, the registry default is assumed.
// Collaborator failures come back as errors, never panics.
func (t *Translator) TranslateText(ctx context.Context, text, target, source string) (string, error) {
	if err := t.ValidateLocales(target, source); err != nil {
		return "", err
	}

	source = t.resolveSource(ctx, text, source)

	sourceName := t.catalog.LanguageName(source)
	targetName := t.catalog.LanguageName(target)

	resp, err := t.client.Chat(ctx, []ai.ChatMessage{
		{
			Role: "system",
			Content: fmt.Sprintf(
				"You are a professional translator. Your task is to translate text from %s to %s. "+
					"Maintain the original meaning and tone. Only return the translated text without any additional explanations or formatting.",
				sourceName, targetName),
		},
		{Role: "user", Content: text},
	}, ai.ChatOptions{
		MaxTokens:   translationMaxTokens,
		Temperature: translationTemperature,
	})
	if err != nil {
		t.logger.WithError(err).WithFields(logrus.Fields{
			"target": target,
			"source": source,
		}).Warn("Translation failed")
		return "", fmt.Errorf("translation failed: %w", err)
	}

	return strings.TrimSpace(resp.Content), nil
}

// BatchTranslate translates the texts in one combined request, split
// back by line. A line-count mismatch fails the whole batch; there is
// no partial credit.
func (t *Translator) BatchTranslate(ctx context.Context, texts []string, target, source string) ([]string, error) {
	if err := t.ValidateLocales(target, source); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return []string{}, nil
	}

	source = t.resolveSource(ctx, texts[0], source)

	sourceName := t.catalog.LanguageName(source)
	targetName := t.catalog.LanguageName(target)

	resp, err := t.client.Chat(ctx, []ai.ChatMessage{
		{
			Role: "system",
			Content: fmt.Sprintf(
				"You are a professional translator. Your task is to translate texts from %s to %s. "+
					"Maintain the original meaning and tone. Return each translated text on a new line without any additional explanations or formatting.",
				sourceName, targetName),
		},
		{Role: "user", Content: strings.Join(texts, "\n")},
	}, ai.ChatOptions{
		MaxTokens:   translationMaxTokens * len(texts),
		Temperature: translationTemperature,
	})
	if err != nil {
		t.logger.WithError(err).WithField("target", target).Warn("Batch translation failed")
		return nil, fmt.Errorf("batch translation failed: %w", err)
	}

	translated := strings.Split(strings.TrimSpace(resp.Content), "\n")
	if len(translated) != len(texts) {
		t.logger.WithFields(logrus.Fields{
			"expected": len(texts),
			"got":      len(translated),
		}).Warn("Batch translation line count mismatch, failing whole batch")
		return nil, fmt.Errorf("batch translation returned %d lines for %d texts", len(translated), len(texts))
	}

	for i := range translated {
		translated[i] = strings.TrimSpace(translated[i])
	}
	return translated, nil
}

// DetectLanguage asks the collaborator for the text's ISO 639-1 code.
// Unsupported or unparseable answers come back as "".
func (t *Translator) DetectLanguage(ctx context.Context, text string) (string, error) {
	resp, err := t.client.Chat(ctx, []ai.ChatMessage{
		{
			Role: "system",
			Content: "You are a language detection expert. Your task is to identify the language of the given text " +
				"and return only the ISO 639-1 language code (e.g., 'en' for English, 'ar' for Arabic). " +
				"If you are unsure, return 'unknown'.",
		},
		{Role: "user", Content: text},
	}, ai.ChatOptions{
		MaxTokens:   detectionMaxTokens,
		Temperature: translationTemperature,
	})
	if err != nil {
		t.logger.WithError(err).Warn("Language detection failed")
		return "", fmt.Errorf("language detection failed: %w", err)
	}

	code := strings.ToLower(strings.TrimSpace(resp.Content))
	if !t.registry.Supported(code) {
		return "", nil
	}
	return code, nil
}

// LanguageName returns the catalog's display name for a locale code.
func (t *Translator) LanguageName(code string) string {
	return t.catalog.LanguageName(code)
}

// resolveSource fills in a missing source locale via detection,
// assuming the registry default when detection yields nothing usable.
func (t *Translator) resolveSource(ctx context.Context, sample, source string) string {
	if source != "" {
		return source
	}
	detected, err := t.DetectLanguage(ctx, sample)
	if err != nil || detected == "" {
		return t.registry.DefaultLocale()
	}
	return detected
}
