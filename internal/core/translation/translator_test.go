package translation

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/mindwell-care/mindwell-backend-go/internal/ai"
	"github.com/mindwell-care/mindwell-backend-go/internal/core/i18n"
	"github.com/mindwell-care/mindwell-backend-go/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedClient replies based on the last user message
type scriptedClient struct {
	reply func(messages []ai.ChatMessage) (string, error)
	calls int
}

func (s *scriptedClient) Chat(ctx context.Context, messages []ai.ChatMessage, opts ai.ChatOptions) (*ai.ChatResponse, error) {
	s.calls++
	content, err := s.reply(messages)
	if err != nil {
		return nil, err
	}
	return &ai.ChatResponse{Content: content, Model: "test", Provider: "stub"}, nil
}

func lastUserMessage(messages []ai.ChatMessage) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == "user" {
			return messages[i].Content
		}
	}
	return ""
}

func isDetection(messages []ai.ChatMessage) bool {
	return strings.Contains(messages[0].Content, "language detection expert")
}

func testTranslator(t *testing.T, client ChatClient) *Translator {
	t.Helper()
	registry := i18n.NewRegistry("en", []string{"en", "fr", "ar", "de"})
	catalog, err := i18n.NewCatalog(registry, t.TempDir(), logrus.New())
	require.NoError(t, err)
	return NewTranslator(registry, catalog, client, logrus.New())
}

func TestTranslateText(t *testing.T) {
	client := &scriptedClient{reply: func(messages []ai.ChatMessage) (string, error) {
		assert.Contains(t, messages[0].Content, "professional translator")
		return "  Bonjour  ", nil
	}}
	tr := testTranslator(t, client)

	out, err := tr.TranslateText(context.Background(), "Hello", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out)
	assert.Equal(t, 1, client.calls)
}

func TestTranslateTextDetectsSource(t *testing.T) {
	client := &scriptedClient{reply: func(messages []ai.ChatMessage) (string, error) {
		if isDetection(messages) {
			return "de", nil
		}
		assert.Contains(t, messages[0].Content, "German")
		return "Hello", nil
	}}
	tr := testTranslator(t, client)

	out, err := tr.TranslateText(context.Background(), "Hallo", "en", "")
	require.NoError(t, err)
	assert.Equal(t, "Hello", out)
	assert.Equal(t, 2, client.calls)
}

func TestTranslateTextDetectionFailureAssumesDefault(t *testing.T) {
	client := &scriptedClient{reply: func(messages []ai.ChatMessage) (string, error) {
		if isDetection(messages) {
			return "unknown", nil
		}
		assert.Contains(t, messages[0].Content, "English")
		return "Bonjour", nil
	}}
	tr := testTranslator(t, client)

	out, err := tr.TranslateText(context.Background(), "Hello", "fr", "")
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", out)
}

func TestTranslateTextUnsupportedLocales(t *testing.T) {
	client := &scriptedClient{reply: func([]ai.ChatMessage) (string, error) { return "", nil }}
	tr := testTranslator(t, client)

	_, err := tr.TranslateText(context.Background(), "Hello", "xx", "")
	require.Error(t, err)
	assert.True(t, errors.IsAppError(err))
	assert.Contains(t, err.(*errors.AppError).Details, "xx")

	_, err = tr.TranslateText(context.Background(), "Hello", "fr", "yy")
	require.Error(t, err)
	assert.True(t, errors.IsAppError(err))

	// Validation failures never reach the collaborator
	assert.Equal(t, 0, client.calls)
}

func TestTranslateTextProviderError(t *testing.T) {
	client := &scriptedClient{reply: func([]ai.ChatMessage) (string, error) {
		return "", fmt.Errorf("provider down")
	}}
	tr := testTranslator(t, client)

	_, err := tr.TranslateText(context.Background(), "Hello", "fr", "en")
	assert.Error(t, err)
}

func TestBatchTranslate(t *testing.T) {
	client := &scriptedClient{reply: func(messages []ai.ChatMessage) (string, error) {
		texts := strings.Split(lastUserMessage(messages), "\n")
		out := make([]string, len(texts))
		for i, text := range texts {
			out[i] = "fr:" + text
		}
		return strings.Join(out, "\n"), nil
	}}
	tr := testTranslator(t, client)

	out, err := tr.BatchTranslate(context.Background(), []string{"one", "two", "three"}, "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, []string{"fr:one", "fr:two", "fr:three"}, out)
	assert.Equal(t, 1, client.calls)
}

func TestBatchTranslateLineMismatchFailsWholeBatch(t *testing.T) {
	client := &scriptedClient{reply: func([]ai.ChatMessage) (string, error) {
		// Two lines for three inputs
		return "un\ndeux", nil
	}}
	tr := testTranslator(t, client)

	out, err := tr.BatchTranslate(context.Background(), []string{"one", "two", "three"}, "fr", "en")
	require.Error(t, err)
	assert.Nil(t, out)
}

func TestBatchTranslateEmpty(t *testing.T) {
	client := &scriptedClient{reply: func([]ai.ChatMessage) (string, error) { return "", nil }}
	tr := testTranslator(t, client)

	out, err := tr.BatchTranslate(context.Background(), nil, "fr", "en")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, 0, client.calls)
}

func TestDetectLanguage(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"supported code", "fr", "fr"},
		{"uppercase normalized", " FR ", "fr"},
		{"unsupported code", "sw", ""},
		{"unknown answer", "unknown", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &scriptedClient{reply: func([]ai.ChatMessage) (string, error) { return tt.reply, nil }}
			tr := testTranslator(t, client)

			detected, err := tr.DetectLanguage(context.Background(), "some text")
			require.NoError(t, err)
			assert.Equal(t, tt.want, detected)
		})
	}
}
