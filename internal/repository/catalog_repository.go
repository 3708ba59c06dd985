package repository

import (
	"context"
	"errors"

	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/util"

	"gorm.io/gorm"
)

// CatalogReader 成就与任务目录的只读访问
type CatalogReader interface {
	FindAchievement(ctx context.Context, id string) (*model.AchievementDefinition, error)
	ListActiveAchievements(ctx context.Context) ([]model.AchievementDefinition, error)
	FindQuest(ctx context.Context, id string) (*model.Quest, error)
	ListActiveQuests(ctx context.Context) ([]model.Quest, error)
}

type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) FindAchievement(ctx context.Context, id string) (*model.AchievementDefinition, error) {
	var def model.AchievementDefinition
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrAchievementNotFound
	}
	if err != nil {
		return nil, err
	}
	return &def, nil
}

func (r *CatalogRepository) ListActiveAchievements(ctx context.Context) ([]model.AchievementDefinition, error) {
	var defs []model.AchievementDefinition
	err := r.DB.WithContext(ctx).
		Where("status = ?", model.AchievementActive).
		Order("id ASC").
		Find(&defs).Error
	return defs, err
}

// ListAllAchievements 包含草稿与下线条目，供目录校验脚本使用
func (r *CatalogRepository) ListAllAchievements(ctx context.Context) ([]model.AchievementDefinition, error) {
	var defs []model.AchievementDefinition
	err := r.DB.WithContext(ctx).Order("id ASC").Find(&defs).Error
	return defs, err
}

func (r *CatalogRepository) FindQuest(ctx context.Context, id string) (*model.Quest, error) {
	var q model.Quest
	err := r.DB.WithContext(ctx).Where("id = ?", id).First(&q).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrQuestNotFound
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}

func (r *CatalogRepository) ListActiveQuests(ctx context.Context) ([]model.Quest, error) {
	var quests []model.Quest
	err := r.DB.WithContext(ctx).
		Where("status = ?", model.QuestActive).
		Order("id ASC").
		Find(&quests).Error
	return quests, err
}
