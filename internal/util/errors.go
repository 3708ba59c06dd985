package util

import "errors"

var (
	ErrProgressNotFound    = errors.New("progress record not found")
	ErrQuestNotFound       = errors.New("quest not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrConcurrentUpdate    = errors.New("progress was modified concurrently, please retry")
	ErrLockTimeout         = errors.New("timed out waiting for user lock")
	ErrGraderUnavailable   = errors.New("code grader is not configured")
	ErrGraderFailed        = errors.New("code grader request failed")
)
