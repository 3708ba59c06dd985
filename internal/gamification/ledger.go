package gamification

import "coder_quest_backend/internal/model"

// LevelUpResult AddXP 的结果
type LevelUpResult struct {
	LeveledUp         bool `json:"leveledUp"`
	PreviousLevel     int  `json:"previousLevel"`
	NewLevel          int  `json:"newLevel"`
	SkillPointsGained int  `json:"skillPointsGained"`
}

// Threshold 从 level 升到 level+1 所需的经验
func (e *Engine) Threshold(level int) int {
	if level < 1 {
		level = 1
	}
	return e.rules.BaseXP + (level-1)*e.rules.XPStep
}

// AddXP 增加经验并处理（可能多级的）升级
func (e *Engine) AddXP(rec *model.UserProgress, amount int) (LevelUpResult, error) {
	if amount <= 0 {
		return LevelUpResult{}, ErrInvalidXPAmount
	}
	if rec.Level < 1 {
		rec.Level = 1
	}

	result := LevelUpResult{PreviousLevel: rec.Level}
	rec.TotalXP += amount
	rec.XP += amount

	for rec.XP >= e.Threshold(rec.Level) {
		rec.XP -= e.Threshold(rec.Level)
		rec.Level++
		result.SkillPointsGained += e.rules.SkillPointsPerLevel
	}
	rec.SkillPoints += result.SkillPointsGained

	result.NewLevel = rec.Level
	result.LeveledUp = result.NewLevel > result.PreviousLevel
	return result, nil
}

// NextLevelXP 当前等级还差多少经验升级
func (e *Engine) NextLevelXP(rec *model.UserProgress) int {
	return e.Threshold(rec.Level) - rec.XP
}
