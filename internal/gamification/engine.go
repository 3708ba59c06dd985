// Package gamification 实现成长规则：经验等级、成就判定、任务进度与技能树加点。
// 所有操作都是对单个 model.UserProgress 的同步变更，不做任何 I/O，
// 持久化与并发控制由调用方（service 层）负责。
package gamification

import (
	"time"
)

// Rules 可热更新的成长参数
type Rules struct {
	BaseXP              int     `mapstructure:"base_xp"`
	XPStep              int     `mapstructure:"xp_step"`
	SkillPointsPerLevel int     `mapstructure:"skill_points_per_level"`
	HintScoreThreshold  float64 `mapstructure:"hint_score_threshold"`
}

func DefaultRules() Rules {
	return Rules{
		BaseXP:              100,
		XPStep:              50,
		SkillPointsPerLevel: 1,
		HintScoreThreshold:  0.5,
	}
}

// normalize 把缺省或非法参数替换为默认值，保证阈值始终为正
func (r Rules) normalize() Rules {
	d := DefaultRules()
	if r.BaseXP <= 0 {
		r.BaseXP = d.BaseXP
	}
	if r.XPStep < 0 {
		r.XPStep = d.XPStep
	}
	if r.SkillPointsPerLevel < 0 {
		r.SkillPointsPerLevel = d.SkillPointsPerLevel
	}
	if r.HintScoreThreshold <= 0 || r.HintScoreThreshold > 1 {
		r.HintScoreThreshold = d.HintScoreThreshold
	}
	return r
}

type Engine struct {
	rules Rules
	now   func() time.Time
}

func NewEngine(rules Rules) *Engine {
	return &Engine{rules: rules.normalize(), now: time.Now}
}

// WithClock 替换时间源，主要用于测试
func (e *Engine) WithClock(now func() time.Time) *Engine {
	cp := *e
	cp.now = now
	return &cp
}

func (e *Engine) Rules() Rules {
	return e.rules
}

// Now 引擎使用的当前时间
func (e *Engine) Now() time.Time {
	return e.now()
}
