package gamification

import "coder_quest_backend/internal/model"

// SpendSkillPoints 在技能树上解锁技能。先完成全部校验再修改，失败时记录不变。
func (e *Engine) SpendSkillPoints(rec *model.UserProgress, treeName, skillID string, points int) error {
	if treeName == "" || skillID == "" {
		return ErrInvalidSkill
	}
	if points <= 0 {
		return ErrInvalidSkillPoints
	}
	if rec.SkillPoints < points {
		return ErrInsufficientSkillPoints
	}

	tree := rec.SkillTrees[treeName]
	if tree != nil {
		for _, s := range tree.UnlockedSkills {
			if s == skillID {
				return ErrSkillAlreadyUnlocked
			}
		}
	}

	if rec.SkillTrees == nil {
		rec.SkillTrees = map[string]*model.SkillTree{}
	}
	if tree == nil {
		tree = &model.SkillTree{}
		rec.SkillTrees[treeName] = tree
	}
	tree.UnlockedSkills = append(tree.UnlockedSkills, skillID)
	tree.SkillPoints += points
	rec.SkillPoints -= points
	return nil
}

// IncrementStat 累加外部上报的行为计数器（对战胜利等）。
// 任务、执行次数与连续签到由引擎自己维护，不接受外部累加。
func (e *Engine) IncrementStat(rec *model.UserProgress, key string, delta int) error {
	if key == "" || delta <= 0 {
		return ErrInvalidStat
	}
	if model.ManagedStat(key) {
		return ErrManagedStat
	}
	if rec.Stats == nil {
		rec.Stats = model.Stats{}
	}
	rec.Stats[key] += delta
	return nil
}
