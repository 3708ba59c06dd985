package mocks

import (
	"context"

	"coder_quest_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockCatalog is a mock implementation of service.Catalog
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FindAchievement(ctx context.Context, id string) (*model.AchievementDefinition, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.AchievementDefinition), args.Error(1)
}

func (m *MockCatalog) ListActiveAchievements(ctx context.Context) ([]model.AchievementDefinition, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.AchievementDefinition), args.Error(1)
}

func (m *MockCatalog) FindQuest(ctx context.Context, id string) (*model.Quest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quest), args.Error(1)
}

func (m *MockCatalog) ListActiveQuests(ctx context.Context) ([]model.Quest, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Quest), args.Error(1)
}
