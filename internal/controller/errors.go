package controller

import (
	"errors"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

var badRequestErrors = []error{
	gamification.ErrInvalidXPAmount,
	gamification.ErrInvalidGrade,
	gamification.ErrInvalidSkillPoints,
	gamification.ErrInvalidSkill,
	gamification.ErrInvalidStat,
	gamification.ErrManagedStat,
	gamification.ErrInvalidRating,
	gamification.ErrFeedbackTooLong,
	gamification.ErrUnknownClass,
	gamification.ErrClassLevelTooLow,
	gamification.ErrQuestNotCompleted,
	gamification.ErrInvalidOperator,
	gamification.ErrInvalidRequirement,
	gamification.ErrQuestAlreadyCompleted,
	gamification.ErrQuestAlreadyInProgress,
	gamification.ErrQuestNotStarted,
	gamification.ErrHintUnavailable,
	gamification.ErrSkillAlreadyUnlocked,
	gamification.ErrAchievementNotEligible,
	gamification.ErrInsufficientCoins,
	gamification.ErrInsufficientSkillPoints,
	gamification.ErrPrerequisiteNotMet,
}

// respondError 将领域错误映射为 HTTP 状态码，未知错误记录日志后返回 500
func respondError(ctx *gin.Context, err error) {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			util.BadRequest(ctx, err.Error())
			return
		}
	}

	switch {
	case errors.Is(err, util.ErrQuestNotFound),
		errors.Is(err, util.ErrAchievementNotFound),
		errors.Is(err, util.ErrProgressNotFound):
		util.NotFound(ctx, err.Error())
	case errors.Is(err, util.ErrConcurrentUpdate),
		errors.Is(err, util.ErrLockTimeout):
		util.Conflict(ctx, err.Error())
	case errors.Is(err, util.ErrGraderUnavailable),
		errors.Is(err, util.ErrGraderFailed):
		util.ServiceUnavailable(ctx, err.Error())
	default:
		util.LogInternalError(ctx, err)
	}
}
