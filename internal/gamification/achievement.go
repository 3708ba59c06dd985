package gamification

import (
	"fmt"
	"reflect"

	"coder_quest_backend/internal/model"
)

// CheckEligibility 判断用户当前是否满足成就条件。纯函数，不修改记录；
// 解锁与发放奖励由 UnlockAchievement 单独完成。
func (e *Engine) CheckEligibility(def *model.AchievementDefinition, rec *model.UserProgress) bool {
	if def == nil || rec == nil {
		return false
	}
	if def.Status != model.AchievementActive {
		return false
	}

	unlocks := rec.UnlockCount(def.ID)
	if unlocks >= MaxUnlocks(def) {
		return false
	}

	for _, pre := range def.Prerequisites {
		if rec.UnlockCount(pre) == 0 {
			return false
		}
	}

	if def.Properties.IsTimeLimited && def.Properties.ExpiresAt != nil && def.Properties.ExpiresAt.Before(e.now()) {
		return false
	}

	return e.requirementMet(def.Requirements, rec, unlocks)
}

// MaxUnlocks 成就最多可解锁次数；非重复成就或未设置上限时为 1
func MaxUnlocks(def *model.AchievementDefinition) int {
	if !def.Properties.IsRepeatable || def.Properties.MaxUnlocks <= 0 {
		return 1
	}
	return def.Properties.MaxUnlocks
}

// requirementMet 第 n+1 次解锁需要计数达到 Target*(n+1)，
// 同一份进度只能兑换一次奖励。自定义条件无法度量增量，只能解锁一次。
func (e *Engine) requirementMet(req model.Requirements, rec *model.UserProgress, unlocks int) bool {
	var actual int
	switch req.Type {
	case model.RequirementQuestCompletion:
		actual = rec.Stat(model.StatQuestsCompleted)
	case model.RequirementLevelReached:
		actual = rec.Level
	case model.RequirementXPEarned:
		actual = rec.TotalXP
	case model.RequirementBattleWins:
		actual = rec.Stat(model.StatBattleWins)
	case model.RequirementDailyStreak:
		actual = rec.Stat(model.StatDailyStreak)
	case model.RequirementCodeExecutions:
		actual = rec.Stat(model.StatCodeExecutions)
	case model.RequirementAchievementsUnlocked:
		actual = len(rec.Achievements.Unlocked)
	case model.RequirementCustom:
		return unlocks == 0 && conditionsHold(req.Conditions, rec)
	default:
		return false
	}
	if unlocks > 0 && req.Target <= 0 {
		return false
	}
	return float64(actual) >= req.Target*float64(unlocks+1)
}

func conditionsHold(conditions []model.Condition, rec *model.UserProgress) bool {
	doc := recordDocument(rec)
	for _, c := range conditions {
		if !Compare(c.Operator, ResolvePath(doc, c.Field), c.Value) {
			return false
		}
	}
	return true
}

// Compare 比较字段值与条件值；字段缺失、类型不匹配或未知操作符均返回 false
func Compare(op model.ConditionOperator, field FieldValue, value interface{}) bool {
	if !field.IsPresent() {
		return false
	}

	switch op {
	case model.OpEq:
		return equal(field.Raw(), value)
	case model.OpIn:
		set := reflect.ValueOf(value)
		if !set.IsValid() || (set.Kind() != reflect.Slice && set.Kind() != reflect.Array) {
			return false
		}
		for i := 0; i < set.Len(); i++ {
			if equal(field.Raw(), set.Index(i).Interface()) {
				return true
			}
		}
		return false
	case model.OpGt, model.OpGte, model.OpLt, model.OpLte:
		a, ok := toFloat(field.Raw())
		if !ok {
			return false
		}
		b, ok := toFloat(value)
		if !ok {
			return false
		}
		switch op {
		case model.OpGt:
			return a > b
		case model.OpGte:
			return a >= b
		case model.OpLt:
			return a < b
		default:
			return a <= b
		}
	default:
		return false
	}
}

func equal(a, b interface{}) bool {
	if fa, ok := toFloat(a); ok {
		fb, ok := toFloat(b)
		return ok && fa == fb
	}
	switch av := a.(type) {
	case string:
		bv, ok := b.(string)
		return ok && av == bv
	case bool:
		bv, ok := b.(bool)
		return ok && av == bv
	}
	return false
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// EligibleAchievements 从目录中筛选当前可解锁的成就
func (e *Engine) EligibleAchievements(defs []model.AchievementDefinition, rec *model.UserProgress) []model.AchievementDefinition {
	var out []model.AchievementDefinition
	for i := range defs {
		if e.CheckEligibility(&defs[i], rec) {
			out = append(out, defs[i])
		}
	}
	return out
}

// UnlockResult 解锁成就后实际发放的奖励
type UnlockResult struct {
	AchievementID string                   `json:"achievementId"`
	Rewards       model.AchievementRewards `json:"rewards"`
	LevelUp       LevelUpResult            `json:"levelUp"`
}

// UnlockAchievement 记录解锁并发放奖励。会再次校验资格，保证重试安全。
func (e *Engine) UnlockAchievement(rec *model.UserProgress, def *model.AchievementDefinition) (UnlockResult, error) {
	if !e.CheckEligibility(def, rec) {
		return UnlockResult{}, ErrAchievementNotEligible
	}

	result := UnlockResult{AchievementID: def.ID, Rewards: def.Rewards}
	rec.Achievements.Unlocked = append(rec.Achievements.Unlocked, model.UnlockedAchievement{
		ID:         def.ID,
		UnlockedAt: e.now(),
	})

	if def.Rewards.XP > 0 {
		// amount 已确认为正数，不会失败
		result.LevelUp, _ = e.AddXP(rec, def.Rewards.XP)
	} else {
		result.LevelUp = LevelUpResult{PreviousLevel: rec.Level, NewLevel: rec.Level}
	}
	if def.Rewards.Coins > 0 {
		rec.Coins += def.Rewards.Coins
	}
	if def.Rewards.Gems > 0 {
		rec.Gems += def.Rewards.Gems
	}
	if def.Rewards.SkillPoints > 0 {
		rec.SkillPoints += def.Rewards.SkillPoints
	}
	return result, nil
}

// ValidateAchievement 目录录入时的结构校验
func ValidateAchievement(def *model.AchievementDefinition) error {
	if MaxUnlocks(def) > 1 && (def.Requirements.Type == model.RequirementCustom || def.Requirements.Target <= 0) {
		return fmt.Errorf("achievement %s: %w: repeatable achievement needs a positive numeric target", def.ID, ErrInvalidRequirement)
	}
	switch def.Requirements.Type {
	case model.RequirementQuestCompletion, model.RequirementLevelReached, model.RequirementXPEarned,
		model.RequirementBattleWins, model.RequirementDailyStreak, model.RequirementCodeExecutions,
		model.RequirementAchievementsUnlocked:
		return nil
	case model.RequirementCustom:
	default:
		return fmt.Errorf("achievement %s: %w: %q", def.ID, ErrInvalidRequirement, def.Requirements.Type)
	}

	if len(def.Requirements.Conditions) == 0 {
		return fmt.Errorf("achievement %s: %w: custom requirement without conditions", def.ID, ErrInvalidRequirement)
	}
	for i, c := range def.Requirements.Conditions {
		switch c.Operator {
		case model.OpEq, model.OpGte, model.OpLte, model.OpGt, model.OpLt:
		case model.OpIn:
			v := reflect.ValueOf(c.Value)
			if !v.IsValid() || (v.Kind() != reflect.Slice && v.Kind() != reflect.Array) {
				return fmt.Errorf("achievement %s condition %d: %w: \"in\" requires a list value", def.ID, i, ErrInvalidOperator)
			}
		default:
			return fmt.Errorf("achievement %s condition %d: %w: %q", def.ID, i, ErrInvalidOperator, c.Operator)
		}
		if c.Field == "" {
			return fmt.Errorf("achievement %s condition %d: %w: empty field", def.ID, i, ErrInvalidRequirement)
		}
	}
	return nil
}
