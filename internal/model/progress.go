package model

import (
	"time"
)

// 统计计数器键
const (
	StatQuestsCompleted = "totalQuestsCompleted"
	StatCodeExecutions  = "totalCodeExecutions"
	StatDailyStreak     = "dailyStreak"
	StatLongestStreak   = "longestStreak"
	StatBattleWins      = "battleWins"
)

// ManagedStat 由引擎维护的计数器，不允许外部直接累加
func ManagedStat(key string) bool {
	switch key {
	case StatQuestsCompleted, StatCodeExecutions, StatDailyStreak, StatLongestStreak:
		return true
	}
	return false
}

type CharacterClass string

const (
	ClassNoviceCoder      CharacterClass = "novice_coder"
	ClassFrontendWizard   CharacterClass = "frontend_wizard"
	ClassBackendKnight    CharacterClass = "backend_knight"
	ClassAISorcerer       CharacterClass = "ai_sorcerer"
	ClassFullstackPaladin CharacterClass = "fullstack_paladin"
)

// Stats 用户行为计数器
type Stats map[string]int

// UnlockedAchievement 已解锁的成就记录
type UnlockedAchievement struct {
	ID         string    `json:"id"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

type AchievementLog struct {
	Unlocked []UnlockedAchievement `json:"unlocked"`
}

// QuestProgress 进行中的任务
type QuestProgress struct {
	QuestID   string    `json:"questId"`
	StartedAt time.Time `json:"startedAt"`
	Progress  int       `json:"progress"`
	HintsUsed int       `json:"hintsUsed"`
}

// CompletedQuest 已完成的任务
type CompletedQuest struct {
	QuestID     string    `json:"questId"`
	CompletedAt time.Time `json:"completedAt"`
	XPEarned    int       `json:"xpEarned"`
	TimeSpent   int       `json:"timeSpent"` // 秒
}

type QuestLog struct {
	Current   []QuestProgress  `json:"current"`
	Completed []CompletedQuest `json:"completed"`
}

// SkillTree 单棵技能树的解锁情况
type SkillTree struct {
	UnlockedSkills []string `json:"unlockedSkills"`
	SkillPoints    int      `json:"skillPoints"`
}

// UserProgress 用户成长记录（经验、等级、货币、任务、成就、技能树）
// swagger:model UserProgress
type UserProgress struct {
	UserID         uint                  `gorm:"primaryKey;autoIncrement:false" json:"userId"`
	Level          int                   `gorm:"not null;default:1;index:idx_progress_level,priority:1" json:"level"`
	XP             int                   `gorm:"not null;default:0;index:idx_progress_level,priority:2" json:"xp"`
	TotalXP        int                   `gorm:"not null;default:0;index" json:"totalXP"`
	SkillPoints    int                   `gorm:"not null;default:0" json:"skillPoints"`
	Coins          int                   `gorm:"not null;default:0" json:"coins"`
	Gems           int                   `gorm:"not null;default:0" json:"gems"`
	CharacterClass CharacterClass        `gorm:"size:30;not null;default:'novice_coder'" json:"characterClass"`
	LastActiveAt   *time.Time            `json:"lastActiveDate,omitempty"`
	Stats          Stats                 `gorm:"type:json;serializer:json" json:"stats"`
	Achievements   AchievementLog        `gorm:"type:json;serializer:json" json:"achievements"`
	Quests         QuestLog              `gorm:"type:json;serializer:json" json:"quests"`
	SkillTrees     map[string]*SkillTree `gorm:"type:json;serializer:json" json:"skillTrees"`

	// 排行榜排序列，由 Stats 同步，写入前调用 SyncRankColumns
	DailyStreak int `gorm:"not null;default:0;index" json:"-"`
	BattleWins  int `gorm:"not null;default:0;index" json:"-"`

	Version   int       `gorm:"not null;default:0" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (UserProgress) TableName() string {
	return "user_progress"
}

// NewUserProgress 首次访问时的初始记录
func NewUserProgress(userID uint) *UserProgress {
	return &UserProgress{
		UserID:         userID,
		Level:          1,
		CharacterClass: ClassNoviceCoder,
		Stats:          Stats{},
		SkillTrees:     map[string]*SkillTree{},
	}
}

// SyncRankColumns 把排行榜用到的计数器复制到独立列，便于建索引排序
func (p *UserProgress) SyncRankColumns() {
	p.DailyStreak = p.Stat(StatDailyStreak)
	p.BattleWins = p.Stat(StatBattleWins)
}

// Clone 深拷贝，变更总是在副本上进行，失败时原记录保持不变
func (p *UserProgress) Clone() *UserProgress {
	if p == nil {
		return nil
	}
	cp := *p

	if p.LastActiveAt != nil {
		t := *p.LastActiveAt
		cp.LastActiveAt = &t
	}
	if p.Stats != nil {
		cp.Stats = make(Stats, len(p.Stats))
		for k, v := range p.Stats {
			cp.Stats[k] = v
		}
	}
	if p.Achievements.Unlocked != nil {
		cp.Achievements.Unlocked = append([]UnlockedAchievement(nil), p.Achievements.Unlocked...)
	}
	if p.Quests.Current != nil {
		cp.Quests.Current = append([]QuestProgress(nil), p.Quests.Current...)
	}
	if p.Quests.Completed != nil {
		cp.Quests.Completed = append([]CompletedQuest(nil), p.Quests.Completed...)
	}
	if p.SkillTrees != nil {
		cp.SkillTrees = make(map[string]*SkillTree, len(p.SkillTrees))
		for name, tree := range p.SkillTrees {
			if tree == nil {
				cp.SkillTrees[name] = nil
				continue
			}
			t := *tree
			if tree.UnlockedSkills != nil {
				t.UnlockedSkills = append([]string(nil), tree.UnlockedSkills...)
			}
			cp.SkillTrees[name] = &t
		}
	}
	return &cp
}

// HasSkillsIn 是否在某棵技能树上解锁过技能
func (p *UserProgress) HasSkillsIn(tree string) bool {
	t := p.SkillTrees[tree]
	return t != nil && len(t.UnlockedSkills) > 0
}

// CurrentQuestIndex 返回进行中任务的下标，不存在时返回 -1
func (p *UserProgress) CurrentQuestIndex(questID string) int {
	for i, q := range p.Quests.Current {
		if q.QuestID == questID {
			return i
		}
	}
	return -1
}

func (p *UserProgress) HasCompletedQuest(questID string) bool {
	for _, q := range p.Quests.Completed {
		if q.QuestID == questID {
			return true
		}
	}
	return false
}

// UnlockCount 某成就被解锁的次数（可重复成就可能大于 1）
func (p *UserProgress) UnlockCount(achievementID string) int {
	n := 0
	for _, a := range p.Achievements.Unlocked {
		if a.ID == achievementID {
			n++
		}
	}
	return n
}

func (p *UserProgress) Stat(key string) int {
	if p.Stats == nil {
		return 0
	}
	return p.Stats[key]
}

// LeaderboardType 排行榜排序维度
type LeaderboardType string

const (
	BoardLevel   LeaderboardType = "level"
	BoardXP      LeaderboardType = "xp"
	BoardBattles LeaderboardType = "battles"
	BoardStreak  LeaderboardType = "streak"
)

// ParseLeaderboardType 未知取值回退到按等级排序
func ParseLeaderboardType(s string) LeaderboardType {
	switch t := LeaderboardType(s); t {
	case BoardLevel, BoardXP, BoardBattles, BoardStreak:
		return t
	}
	return BoardLevel
}
