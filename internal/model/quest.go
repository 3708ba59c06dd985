package model

type QuestStatus string

const (
	QuestActive   QuestStatus = "active"
	QuestArchived QuestStatus = "archived"
	QuestDraft    QuestStatus = "draft"
)

type QuestDifficulty string

const (
	DifficultyEasy   QuestDifficulty = "easy"
	DifficultyMedium QuestDifficulty = "medium"
	DifficultyHard   QuestDifficulty = "hard"
)

type PrerequisiteType string

const (
	PrerequisiteQuest PrerequisiteType = "quest"
	PrerequisiteLevel PrerequisiteType = "level"
)

// QuestPrerequisite 前置条件：完成某任务，或达到某等级
type QuestPrerequisite struct {
	Type    PrerequisiteType `json:"type"`
	QuestID string           `json:"questId,omitempty"`
	Level   int              `json:"level,omitempty"`
}

type QuestRewards struct {
	XP    int `json:"xp"`
	Coins int `json:"coins"`
	Gems  int `json:"gems"`
}

type TestCase struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	Hidden         bool   `json:"hidden"`
}

type Hint struct {
	Text string `json:"text"`
	Cost int    `json:"cost"`
}

type Challenge struct {
	LanguageID   int        `json:"languageId"` // Judge0 language id，默认 50 (C)
	StarterCode  string     `json:"starterCode,omitempty"`
	TestCases    []TestCase `json:"testCases"`
	Hints        []Hint     `json:"hints"`
	TimeLimitSec int        `json:"timeLimitSec,omitempty"`
}

// Quest 编程挑战任务目录条目
// swagger:model Quest
type Quest struct {
	CatalogBase
	Title         string              `gorm:"size:200;not null" json:"title"`
	Description   string              `gorm:"type:text" json:"description"`
	Status        QuestStatus         `gorm:"size:20;not null;default:'draft';index" json:"status"`
	Difficulty    QuestDifficulty     `gorm:"size:20;index" json:"difficulty"`
	Category      string              `gorm:"size:50;index" json:"category"` // 对应技能树名称
	Featured      bool                `gorm:"not null;default:false" json:"featured"`
	Rewards       QuestRewards        `gorm:"type:json;serializer:json" json:"rewards"`
	Prerequisites []QuestPrerequisite `gorm:"type:json;serializer:json" json:"prerequisites"`
	Challenge     Challenge           `gorm:"type:json;serializer:json" json:"challenge"`
}

func (Quest) TableName() string {
	return "quests"
}

// PublicView 去掉隐藏测试用例与提示文本，用于返回给学生
func (q Quest) PublicView() Quest {
	out := q
	out.Challenge.TestCases = nil
	for _, tc := range q.Challenge.TestCases {
		if !tc.Hidden {
			out.Challenge.TestCases = append(out.Challenge.TestCases, tc)
		}
	}
	out.Challenge.Hints = make([]Hint, len(q.Challenge.Hints))
	for i, h := range q.Challenge.Hints {
		out.Challenge.Hints[i] = Hint{Cost: h.Cost}
	}
	return out
}
