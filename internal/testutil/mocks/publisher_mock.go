package mocks

import (
	"context"

	"coder_quest_backend/internal/service"

	"github.com/stretchr/testify/mock"
)

// MockEventPublisher is a mock implementation of service.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...service.ProgressionEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// Published 汇总所有 Publish 调用中的事件
func (m *MockEventPublisher) Published() []service.ProgressionEvent {
	var out []service.ProgressionEvent
	for _, call := range m.Calls {
		if call.Method != "Publish" {
			continue
		}
		out = append(out, call.Arguments.Get(1).([]service.ProgressionEvent)...)
	}
	return out
}
