package gamification

import (
	"errors"
	"fmt"

	"coder_quest_backend/internal/model"
)

// 参数校验错误
var (
	ErrInvalidXPAmount    = errors.New("xp amount must be positive")
	ErrInvalidGrade       = errors.New("grade result is invalid")
	ErrInvalidSkillPoints = errors.New("skill points must be positive")
	ErrInvalidSkill       = errors.New("skill tree and skill id are required")
	ErrInvalidStat        = errors.New("stat key is required and delta must be positive")
	ErrManagedStat        = errors.New("stat is maintained by the engine")
	ErrInvalidRating      = errors.New("rating and difficulty must be between 1 and 5")
	ErrFeedbackTooLong    = errors.New("feedback exceeds 500 characters")
	ErrUnknownClass       = errors.New("unknown character class")
	ErrInvalidOperator    = errors.New("unsupported condition operator")
	ErrInvalidRequirement = errors.New("unsupported requirement type")
)

// 状态冲突错误
var (
	ErrQuestAlreadyCompleted  = errors.New("quest already completed")
	ErrQuestAlreadyInProgress = errors.New("quest already in progress")
	ErrQuestNotStarted        = errors.New("quest not started")
	ErrHintUnavailable        = errors.New("hint unavailable")
	ErrSkillAlreadyUnlocked   = errors.New("skill already unlocked")
	ErrAchievementNotEligible = errors.New("achievement not eligible")
	ErrQuestNotCompleted      = errors.New("quest must be completed before rating")
)

// 余额不足，不会发生部分扣减
var (
	ErrInsufficientCoins       = errors.New("insufficient coins")
	ErrInsufficientSkillPoints = errors.New("insufficient skill points")
)

var ErrPrerequisiteNotMet = errors.New("prerequisite not met")

// PrerequisiteError 指明未满足的前置条件，便于前端提示
type PrerequisiteError struct {
	Prerequisite model.QuestPrerequisite
}

func (e *PrerequisiteError) Error() string {
	switch e.Prerequisite.Type {
	case model.PrerequisiteLevel:
		return fmt.Sprintf("%s: level %d required", ErrPrerequisiteNotMet, e.Prerequisite.Level)
	case model.PrerequisiteQuest:
		return fmt.Sprintf("%s: quest %q must be completed", ErrPrerequisiteNotMet, e.Prerequisite.QuestID)
	default:
		return fmt.Sprintf("%s: unknown prerequisite type %q", ErrPrerequisiteNotMet, e.Prerequisite.Type)
	}
}

func (e *PrerequisiteError) Unwrap() error {
	return ErrPrerequisiteNotMet
}

var ErrClassLevelTooLow = errors.New("level too low for character class")

// ClassLevelError 选择职业时等级不足
type ClassLevelError struct {
	Class    model.CharacterClass
	Required int
}

func (e *ClassLevelError) Error() string {
	return fmt.Sprintf("%s: %s requires level %d", ErrClassLevelTooLow, e.Class, e.Required)
}

func (e *ClassLevelError) Unwrap() error {
	return ErrClassLevelTooLow
}
