package service

import (
	"context"
	"errors"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/util"
	"coder_quest_backend/pkg/monitoring"

	"go.uber.org/zap"
)

// RatingStore 任务评分存储
type RatingStore interface {
	Upsert(ctx context.Context, rating *model.QuestRating) error
	Summary(ctx context.Context, questID string) (model.RatingSummary, error)
}

// RatingService 任务评分。评分不改动成长记录，无需加用户锁
type RatingService struct {
	Ratings RatingStore
	Catalog Catalog
	Store   ProgressStore
	Logger  *zap.Logger
}

func NewRatingService(ratings RatingStore, catalog Catalog, store ProgressStore, logger *zap.Logger) *RatingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RatingService{Ratings: ratings, Catalog: catalog, Store: store, Logger: logger}
}

type RatingOutcome struct {
	Rating  model.QuestRating   `json:"rating"`
	Summary model.RatingSummary `json:"summary"`
}

// RateQuest 为已完成的任务评分，重复评分覆盖旧评分。已下架的任务仍可评分。
func (s *RatingService) RateQuest(ctx context.Context, userID uint, questID string, rating, difficulty int, feedback string) (*RatingOutcome, error) {
	if _, err := s.Catalog.FindQuest(ctx, questID); err != nil {
		return nil, err
	}
	rec, err := s.Store.FindByUserID(ctx, userID)
	if errors.Is(err, util.ErrProgressNotFound) {
		rec = model.NewUserProgress(userID)
	} else if err != nil {
		return nil, err
	}
	if err := gamification.CheckRating(rec, questID, rating, difficulty, feedback); err != nil {
		return nil, err
	}

	r := &model.QuestRating{
		QuestID:    questID,
		UserID:     userID,
		Rating:     rating,
		Difficulty: difficulty,
		Feedback:   feedback,
	}
	if err := s.Ratings.Upsert(ctx, r); err != nil {
		return nil, err
	}
	monitoring.QuestRatings.Inc()

	summary, err := s.Ratings.Summary(ctx, questID)
	if err != nil {
		// 评分已写入，汇总失败不影响结果
		s.Logger.Warn("load rating summary failed", zap.String("questID", questID), zap.Error(err))
	}
	return &RatingOutcome{Rating: *r, Summary: summary}, nil
}

func (s *RatingService) Summary(ctx context.Context, questID string) (model.RatingSummary, error) {
	return s.Ratings.Summary(ctx, questID)
}
