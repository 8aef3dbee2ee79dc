package mocks

import (
	"context"
	"sync"
)

// Notification is one message recorded by MockNotifier.
type Notification struct {
	UserID  string
	Message string
}

// MockNotifier records notifications. NotifyFn overrides the default.
type MockNotifier struct {
	NotifyFn func(ctx context.Context, userID, message string) error

	mu   sync.Mutex
	sent []Notification
}

// Notify records the message, then calls NotifyFn when set.
func (m *MockNotifier) Notify(ctx context.Context, userID, message string) error {
	m.mu.Lock()
	m.sent = append(m.sent, Notification{UserID: userID, Message: message})
	m.mu.Unlock()
	if m.NotifyFn != nil {
		return m.NotifyFn(ctx, userID, message)
	}
	return nil
}

// Sent returns a copy of the recorded notifications.
func (m *MockNotifier) Sent() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Notification(nil), m.sent...)
}
