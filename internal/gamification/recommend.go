package gamification

import (
	"sort"

	"coder_quest_backend/internal/model"
)

// Recommendation 推荐任务及其相关度
type Recommendation struct {
	Quest      model.Quest `json:"quest"`
	Score      int         `json:"score"`
	InProgress bool        `json:"inProgress"`
}

// difficultyBand 按等级划定可推荐的难度
func difficultyBand(level int) []model.QuestDifficulty {
	switch {
	case level <= 5:
		return []model.QuestDifficulty{model.DifficultyEasy}
	case level <= 15:
		return []model.QuestDifficulty{model.DifficultyEasy, model.DifficultyMedium}
	case level <= 30:
		return []model.QuestDifficulty{model.DifficultyMedium, model.DifficultyHard}
	default:
		return []model.QuestDifficulty{model.DifficultyHard}
	}
}

// RecommendQuests 从上架任务中挑选适合当前用户的任务：
// 排除已完成和前置条件未满足的，难度需落在等级区间内（未标难度的不限）。
// 分类对应已投入技能点的技能树 +3，进行中 +2，精选 +1；同分按 ID 排序。
func (e *Engine) RecommendQuests(rec *model.UserProgress, quests []model.Quest, limit int) []Recommendation {
	band := difficultyBand(rec.Level)
	inBand := func(d model.QuestDifficulty) bool {
		if d == "" {
			return true
		}
		for _, b := range band {
			if b == d {
				return true
			}
		}
		return false
	}

	var out []Recommendation
	for _, q := range quests {
		if q.Status != model.QuestActive || rec.HasCompletedQuest(q.ID) {
			continue
		}
		if !inBand(q.Difficulty) || CheckPrerequisites(rec, &q) != nil {
			continue
		}
		r := Recommendation{Quest: q, InProgress: rec.CurrentQuestIndex(q.ID) >= 0}
		if q.Category != "" && rec.HasSkillsIn(q.Category) {
			r.Score += 3
		}
		if r.InProgress {
			r.Score += 2
		}
		if q.Featured {
			r.Score++
		}
		out = append(out, r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Quest.ID < out[j].Quest.ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
