package repository

import (
	"context"
	"time"

	"coder_quest_backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RatingRepository struct {
	DB *gorm.DB
}

func NewRatingRepository(db *gorm.DB) *RatingRepository {
	return &RatingRepository{DB: db}
}

// Upsert 同一用户重复评分时覆盖旧评分
func (r *RatingRepository) Upsert(ctx context.Context, rating *model.QuestRating) error {
	now := time.Now()
	rating.CreatedAt = now
	rating.UpdatedAt = now
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quest_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"rating", "difficulty", "feedback", "updated_at"}),
	}).Create(rating).Error
}

func (r *RatingRepository) Summary(ctx context.Context, questID string) (model.RatingSummary, error) {
	var summary model.RatingSummary
	err := r.DB.WithContext(ctx).
		Model(&model.QuestRating{}).
		Select("COUNT(*) AS count, COALESCE(AVG(rating), 0) AS average_rating, COALESCE(AVG(difficulty), 0) AS average_difficulty").
		Where("quest_id = ?", questID).
		Scan(&summary).Error
	return summary, err
}
