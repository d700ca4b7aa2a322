package ai

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

// Manager routes chat requests to providers in priority order, falling
// back to the next provider on failure when fallback is enabled.
type Manager struct {
	providers       []prioritizedProvider
	fallbackEnabled bool
	timeout         time.Duration
	logger          *logrus.Logger
}

type prioritizedProvider struct {
	provider Provider
	priority int
}

// NewManager creates the provider manager. Providers are tried in
// ascending priority order.
func NewManager(fallbackEnabled bool, timeout time.Duration, logger *logrus.Logger) *Manager {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Manager{
		fallbackEnabled: fallbackEnabled,
		timeout:         timeout,
		logger:          logger,
	}
}

// Register adds a provider at the given priority
func (m *Manager) Register(provider Provider, priority int) {
	m.providers = append(m.providers, prioritizedProvider{provider: provider, priority: priority})
	sort.SliceStable(m.providers, func(i, j int) bool {
		return m.providers[i].priority < m.providers[j].priority
	})
}

// HasProviders reports whether any provider is registered and available
func (m *Manager) HasProviders() bool {
	for _, p := range m.providers {
		if p.provider.IsAvailable() {
			return true
		}
	}
	return false
}

// Chat sends the messages to the first available provider; on failure
// it falls through to the next one. Every provider failure is logged
// with provider identity and cause.
func (m *Manager) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*ChatResponse, error) {
	if len(m.providers) == 0 {
		return nil, fmt.Errorf("no language model providers registered")
	}

	var lastErr error
	for _, p := range m.providers {
		if !p.provider.IsAvailable() {
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, m.timeout)
		resp, err := p.provider.Chat(callCtx, messages, opts)
		cancel()

		if err == nil {
			return resp, nil
		}

		lastErr = err
		m.logger.WithError(err).WithField("provider", p.provider.GetName()).Warn("Language model provider failed")

		if !m.fallbackEnabled {
			break
		}
	}

	if lastErr == nil {
		return nil, fmt.Errorf("no language model provider is available")
	}
	return nil, fmt.Errorf("all language model providers failed: %w", lastErr)
}
