package gamification

import (
	"math"
	"unicode/utf8"

	"coder_quest_backend/internal/model"
)

// GradeResult 评测结果（外部评测服务给出）
type GradeResult struct {
	PassedTests int `json:"passedTests"`
	TotalTests  int `json:"totalTests"`
}

func (g GradeResult) Score() float64 {
	if g.TotalTests <= 0 {
		return 0
	}
	return float64(g.PassedTests) / float64(g.TotalTests)
}

// SubmitResult 提交后的结果，Completed 为 false 时只更新进度
type SubmitResult struct {
	Completed bool                `json:"completed"`
	Score     float64             `json:"score"`
	Progress  int                 `json:"progress"`
	Rewards   *model.QuestRewards `json:"rewards,omitempty"`
	LevelUp   *LevelUpResult      `json:"levelUp,omitempty"`
	Hint      string              `json:"hint,omitempty"`
	TimeSpent int                 `json:"timeSpent,omitempty"`
}

// StartQuest not_started -> in_progress
func (e *Engine) StartQuest(rec *model.UserProgress, quest *model.Quest) error {
	if rec.HasCompletedQuest(quest.ID) {
		return ErrQuestAlreadyCompleted
	}
	if rec.CurrentQuestIndex(quest.ID) >= 0 {
		return ErrQuestAlreadyInProgress
	}
	if err := CheckPrerequisites(rec, quest); err != nil {
		return err
	}

	rec.Quests.Current = append(rec.Quests.Current, model.QuestProgress{
		QuestID:   quest.ID,
		StartedAt: e.now(),
	})
	return nil
}

// CheckPrerequisites 返回第一个未满足的前置条件，未知类型视为不满足
func CheckPrerequisites(rec *model.UserProgress, quest *model.Quest) error {
	for _, pre := range quest.Prerequisites {
		switch pre.Type {
		case model.PrerequisiteQuest:
			if !rec.HasCompletedQuest(pre.QuestID) {
				return &PrerequisiteError{Prerequisite: pre}
			}
		case model.PrerequisiteLevel:
			if pre.Level > rec.Level {
				return &PrerequisiteError{Prerequisite: pre}
			}
		default:
			return &PrerequisiteError{Prerequisite: pre}
		}
	}
	return nil
}

// SubmitQuest 根据评测结果推进任务。全部通过则完成任务并发放奖励，
// 否则只记录进度百分比。timeSpent 为客户端上报的用时（秒），
// 不大于开始至今的时长时才采用，否则按服务端计时。
func (e *Engine) SubmitQuest(rec *model.UserProgress, quest *model.Quest, grade GradeResult, timeSpent int) (SubmitResult, error) {
	idx := rec.CurrentQuestIndex(quest.ID)
	if idx < 0 {
		return SubmitResult{}, ErrQuestNotStarted
	}
	if grade.TotalTests <= 0 || grade.PassedTests < 0 || grade.PassedTests > grade.TotalTests {
		return SubmitResult{}, ErrInvalidGrade
	}

	if rec.Stats == nil {
		rec.Stats = model.Stats{}
	}
	rec.Stats[model.StatCodeExecutions]++

	score := grade.Score()
	if grade.PassedTests < grade.TotalTests {
		progress := int(math.Round(score * 100))
		rec.Quests.Current[idx].Progress = progress
		result := SubmitResult{Score: score, Progress: progress}
		if score < e.rules.HintScoreThreshold && len(quest.Challenge.Hints) > 0 {
			result.Hint = quest.Challenge.Hints[0].Text
		}
		return result, nil
	}

	now := e.now()
	entry := rec.Quests.Current[idx]
	elapsed := int(now.Sub(entry.StartedAt).Seconds())
	if timeSpent <= 0 || timeSpent > elapsed {
		timeSpent = elapsed
	}
	rec.Quests.Current = append(rec.Quests.Current[:idx:idx], rec.Quests.Current[idx+1:]...)
	rec.Quests.Completed = append(rec.Quests.Completed, model.CompletedQuest{
		QuestID:     quest.ID,
		CompletedAt: now,
		XPEarned:    quest.Rewards.XP,
		TimeSpent:   timeSpent,
	})

	result := SubmitResult{Completed: true, Score: 1, Progress: 100, TimeSpent: timeSpent}
	rewards := quest.Rewards
	result.Rewards = &rewards
	if quest.Rewards.XP > 0 {
		levelUp, err := e.AddXP(rec, quest.Rewards.XP)
		if err != nil {
			return SubmitResult{}, err
		}
		result.LevelUp = &levelUp
	}
	rec.Stats[model.StatQuestsCompleted]++
	if quest.Rewards.Coins > 0 {
		rec.Coins += quest.Rewards.Coins
	}
	if quest.Rewards.Gems > 0 {
		rec.Gems += quest.Rewards.Gems
	}
	return result, nil
}

// UseHint 花费金币获取提示
func (e *Engine) UseHint(rec *model.UserProgress, quest *model.Quest, hintIndex int) (string, error) {
	idx := rec.CurrentQuestIndex(quest.ID)
	if idx < 0 {
		return "", ErrQuestNotStarted
	}
	if hintIndex < 0 || hintIndex >= len(quest.Challenge.Hints) {
		return "", ErrHintUnavailable
	}

	hint := quest.Challenge.Hints[hintIndex]
	if hint.Cost > 0 && hint.Cost > rec.Coins {
		return "", ErrInsufficientCoins
	}
	if hint.Cost > 0 {
		rec.Coins -= hint.Cost
	}
	rec.Quests.Current[idx].HintsUsed++
	return hint.Text, nil
}

// AbandonQuest in_progress -> abandoned，之后可以重新开始
func (e *Engine) AbandonQuest(rec *model.UserProgress, questID string) error {
	idx := rec.CurrentQuestIndex(questID)
	if idx < 0 {
		return ErrQuestNotStarted
	}
	rec.Quests.Current = append(rec.Quests.Current[:idx:idx], rec.Quests.Current[idx+1:]...)
	return nil
}

const maxFeedbackLen = 500

// CheckRating 只有完成过的任务才能评分
func CheckRating(rec *model.UserProgress, questID string, rating, difficulty int, feedback string) error {
	if rating < 1 || rating > 5 || difficulty < 1 || difficulty > 5 {
		return ErrInvalidRating
	}
	if utf8.RuneCountInString(feedback) > maxFeedbackLen {
		return ErrFeedbackTooLong
	}
	if !rec.HasCompletedQuest(questID) {
		return ErrQuestNotCompleted
	}
	return nil
}
