package mocks

import (
	"context"

	"coder_quest_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockProgressStore is a mock implementation of service.ProgressStore
type MockProgressStore struct {
	mock.Mock
}

func (m *MockProgressStore) FindByUserID(ctx context.Context, userID uint) (*model.UserProgress, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.UserProgress), args.Error(1)
}

func (m *MockProgressStore) Create(ctx context.Context, rec *model.UserProgress) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockProgressStore) Save(ctx context.Context, rec *model.UserProgress) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockProgressStore) FindTop(ctx context.Context, board model.LeaderboardType, limit int) ([]model.UserProgress, error) {
	args := m.Called(ctx, board, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.UserProgress), args.Error(1)
}
