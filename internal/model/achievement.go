package model

import "time"

type AchievementStatus string

const (
	AchievementActive   AchievementStatus = "active"
	AchievementInactive AchievementStatus = "inactive"
	AchievementDraft    AchievementStatus = "draft"
)

type RequirementType string

const (
	RequirementQuestCompletion      RequirementType = "quest_completion"
	RequirementLevelReached         RequirementType = "level_reached"
	RequirementXPEarned             RequirementType = "xp_earned"
	RequirementBattleWins           RequirementType = "battle_wins"
	RequirementDailyStreak          RequirementType = "daily_streak"
	RequirementCodeExecutions       RequirementType = "code_executions"
	RequirementAchievementsUnlocked RequirementType = "achievements_unlocked"
	RequirementCustom               RequirementType = "custom"
)

type ConditionOperator string

const (
	OpEq  ConditionOperator = "eq"
	OpGte ConditionOperator = "gte"
	OpLte ConditionOperator = "lte"
	OpGt  ConditionOperator = "gt"
	OpLt  ConditionOperator = "lt"
	OpIn  ConditionOperator = "in"
)

// Condition 自定义条件：按点分路径取用户记录字段，与 Value 比较
type Condition struct {
	Field    string            `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    interface{}       `json:"value"`
}

type Requirements struct {
	Type       RequirementType `json:"type"`
	Target     float64         `json:"target"`
	Conditions []Condition     `json:"conditions,omitempty"`
}

type AchievementRewards struct {
	XP          int `json:"xp"`
	Coins       int `json:"coins"`
	Gems        int `json:"gems"`
	SkillPoints int `json:"skillPoints"`
}

type AchievementProperties struct {
	IsRepeatable  bool       `json:"isRepeatable"`
	IsTimeLimited bool       `json:"isTimeLimited"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	MaxUnlocks    int        `json:"maxUnlocks"`
}

// AchievementDefinition 成就目录条目，由内容后台维护，引擎只读
// swagger:model AchievementDefinition
type AchievementDefinition struct {
	CatalogBase
	Name          string                `gorm:"size:100;not null" json:"name"`
	Description   string                `gorm:"size:500" json:"description"`
	Icon          string                `gorm:"size:255" json:"icon"`
	Category      string                `gorm:"size:50;index" json:"category"`
	Status        AchievementStatus     `gorm:"size:20;not null;default:'draft';index" json:"status"`
	Requirements  Requirements          `gorm:"type:json;serializer:json" json:"requirements"`
	Rewards       AchievementRewards    `gorm:"type:json;serializer:json" json:"rewards"`
	Prerequisites []string              `gorm:"type:json;serializer:json" json:"prerequisites"`
	Properties    AchievementProperties `gorm:"type:json;serializer:json" json:"properties"`
}

func (AchievementDefinition) TableName() string {
	return "achievement_definitions"
}
