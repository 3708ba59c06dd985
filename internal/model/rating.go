package model

import "time"

// QuestRating 用户对已完成任务的评分，每人每个任务保留最新一条
// swagger:model QuestRating
type QuestRating struct {
	QuestID    string    `gorm:"primaryKey;type:varchar(64)" json:"questId"`
	UserID     uint      `gorm:"primaryKey;autoIncrement:false;index" json:"userId"`
	Rating     int       `gorm:"not null" json:"rating"`
	Difficulty int       `gorm:"not null" json:"difficulty"`
	Feedback   string    `gorm:"size:500" json:"feedback"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (QuestRating) TableName() string {
	return "quest_ratings"
}

// RatingSummary 任务评分汇总
type RatingSummary struct {
	Count             int64   `json:"count"`
	AverageRating     float64 `json:"averageRating"`
	AverageDifficulty float64 `json:"averageDifficulty"`
}
