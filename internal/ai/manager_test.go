package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockProvider implements Provider for testing
type mockProvider struct {
	name      string
	available bool
	err       error
	calls     int
}

func (m *mockProvider) GetName() string   { return m.name }
func (m *mockProvider) IsAvailable() bool { return m.available }

func (m *mockProvider) Chat(ctx context.Context, messages []ChatMessage, opts ChatOptions) (*ChatResponse, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &ChatResponse{Content: "reply from " + m.name, Model: "mock", Provider: m.name}, nil
}

func TestManagerNoProviders(t *testing.T) {
	m := NewManager(true, time.Second, logrus.New())

	assert.False(t, m.HasProviders())
	_, err := m.Chat(context.Background(), []ChatMessage{{Role: "user", Content: "hi"}}, ChatOptions{})
	assert.Error(t, err)
}

func TestManagerPriorityOrder(t *testing.T) {
	m := NewManager(true, time.Second, logrus.New())

	second := &mockProvider{name: "second", available: true}
	first := &mockProvider{name: "first", available: true}
	m.Register(second, 2)
	m.Register(first, 1)

	resp, err := m.Chat(context.Background(), nil, ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "first", resp.Provider)
	assert.Equal(t, 0, second.calls)
}

func TestManagerFallback(t *testing.T) {
	m := NewManager(true, time.Second, logrus.New())

	failing := &mockProvider{name: "failing", available: true, err: fmt.Errorf("down")}
	backup := &mockProvider{name: "backup", available: true}
	m.Register(failing, 1)
	m.Register(backup, 2)

	resp, err := m.Chat(context.Background(), nil, ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "backup", resp.Provider)
	assert.Equal(t, 1, failing.calls)
}

func TestManagerFallbackDisabled(t *testing.T) {
	m := NewManager(false, time.Second, logrus.New())

	failing := &mockProvider{name: "failing", available: true, err: fmt.Errorf("down")}
	backup := &mockProvider{name: "backup", available: true}
	m.Register(failing, 1)
	m.Register(backup, 2)

	_, err := m.Chat(context.Background(), nil, ChatOptions{})
	assert.Error(t, err)
	assert.Equal(t, 0, backup.calls)
}

func TestManagerSkipsUnavailable(t *testing.T) {
	m := NewManager(true, time.Second, logrus.New())

	offline := &mockProvider{name: "offline", available: false}
	online := &mockProvider{name: "online", available: true}
	m.Register(offline, 1)
	m.Register(online, 2)

	assert.True(t, m.HasProviders())

	resp, err := m.Chat(context.Background(), nil, ChatOptions{})
	require.NoError(t, err)
	assert.Equal(t, "online", resp.Provider)
	assert.Equal(t, 0, offline.calls)
}

func TestManagerAllUnavailable(t *testing.T) {
	m := NewManager(true, time.Second, logrus.New())
	m.Register(&mockProvider{name: "offline", available: false}, 1)

	assert.False(t, m.HasProviders())
	_, err := m.Chat(context.Background(), nil, ChatOptions{})
	assert.Error(t, err)
}
