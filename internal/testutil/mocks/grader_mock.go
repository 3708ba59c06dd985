package mocks

import (
	"context"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"

	"github.com/stretchr/testify/mock"
)

// MockGrader is a mock implementation of service.Grader
type MockGrader struct {
	mock.Mock
}

func (m *MockGrader) Grade(ctx context.Context, code string, languageID int, challenge model.Challenge) (gamification.GradeResult, error) {
	args := m.Called(ctx, code, languageID, challenge)
	return args.Get(0).(gamification.GradeResult), args.Error(1)
}
