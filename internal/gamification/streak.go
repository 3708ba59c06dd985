package gamification

import (
	"time"

	"coder_quest_backend/internal/model"
)

// StreakResult 一次签到后的连续天数
type StreakResult struct {
	Streak   int  `json:"streak"`
	Longest  int  `json:"longest"`
	Extended bool `json:"extended"` // 今天首次签到
	Reset    bool `json:"reset"`    // 中断后重新计数
}

// dayOf 按 UTC 自然日截断
func dayOf(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RecordDailyActivity 记录当天活跃：相邻自然日连续 +1，间隔超过一天从 1 重新开始，
// 同一天重复调用不变。时钟回拨时保持原状。
func (e *Engine) RecordDailyActivity(rec *model.UserProgress) StreakResult {
	if rec.Stats == nil {
		rec.Stats = model.Stats{}
	}
	now := e.now()
	streak := rec.Stats[model.StatDailyStreak]
	var result StreakResult

	if rec.LastActiveAt == nil {
		streak = 1
		result.Extended = true
	} else {
		days := int(dayOf(now).Sub(dayOf(*rec.LastActiveAt)).Hours() / 24)
		switch {
		case days < 0:
			result.Streak = streak
			result.Longest = rec.Stats[model.StatLongestStreak]
			return result
		case days == 0:
			if streak == 0 {
				streak = 1
				result.Extended = true
			}
		case days == 1:
			streak++
			result.Extended = true
		default:
			streak = 1
			result.Extended = true
			result.Reset = true
		}
	}

	rec.Stats[model.StatDailyStreak] = streak
	if streak > rec.Stats[model.StatLongestStreak] {
		rec.Stats[model.StatLongestStreak] = streak
	}
	rec.LastActiveAt = &now

	result.Streak = streak
	result.Longest = rec.Stats[model.StatLongestStreak]
	return result
}
