package mocks

import (
	"context"

	"coder_quest_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockRatingStore is a mock implementation of service.RatingStore
type MockRatingStore struct {
	mock.Mock
}

func (m *MockRatingStore) Upsert(ctx context.Context, rating *model.QuestRating) error {
	args := m.Called(ctx, rating)
	return args.Error(0)
}

func (m *MockRatingStore) Summary(ctx context.Context, questID string) (model.RatingSummary, error) {
	args := m.Called(ctx, questID)
	return args.Get(0).(model.RatingSummary), args.Error(1)
}
