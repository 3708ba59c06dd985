package repository

import (
	"context"
	"errors"
	"time"

	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/util"

	"gorm.io/gorm"
)

type ProgressRepository struct {
	DB *gorm.DB
}

func NewProgressRepository(db *gorm.DB) *ProgressRepository {
	return &ProgressRepository{DB: db}
}

func (r *ProgressRepository) FindByUserID(ctx context.Context, userID uint) (*model.UserProgress, error) {
	var rec model.UserProgress
	err := r.DB.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrProgressNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *ProgressRepository) Create(ctx context.Context, rec *model.UserProgress) error {
	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	rec.UpdatedAt = now
	rec.SyncRankColumns()
	return r.DB.WithContext(ctx).Create(rec).Error
}

// Save 乐观锁写回：只有版本号未被他人修改时才更新，否则返回 ErrConcurrentUpdate
func (r *ProgressRepository) Save(ctx context.Context, rec *model.UserProgress) error {
	expected := rec.Version
	rec.Version = expected + 1
	rec.UpdatedAt = time.Now()
	rec.SyncRankColumns()

	result := r.DB.WithContext(ctx).
		Model(rec).
		Where("version = ?", expected).
		Select("*").
		Omit("created_at").
		Updates(rec)
	if result.Error != nil {
		rec.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		rec.Version = expected
		return util.ErrConcurrentUpdate
	}
	return nil
}

var boardOrder = map[model.LeaderboardType][]string{
	model.BoardLevel:   {"level DESC", "xp DESC"},
	model.BoardXP:      {"total_xp DESC"},
	model.BoardBattles: {"battle_wins DESC"},
	model.BoardStreak:  {"daily_streak DESC"},
}

// FindTop 按排行榜维度取前 limit 名，同分按 user_id 升序
func (r *ProgressRepository) FindTop(ctx context.Context, board model.LeaderboardType, limit int) ([]model.UserProgress, error) {
	order, ok := boardOrder[board]
	if !ok {
		order = boardOrder[model.BoardLevel]
	}
	q := r.DB.WithContext(ctx)
	for _, o := range order {
		q = q.Order(o)
	}
	var records []model.UserProgress
	err := q.Order("user_id ASC").Limit(limit).Find(&records).Error
	return records, err
}
