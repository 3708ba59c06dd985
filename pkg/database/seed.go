package database

import (
	"fmt"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// DefaultAchievements 初始成就目录
func DefaultAchievements() []model.AchievementDefinition {
	return []model.AchievementDefinition{
		{
			CatalogBase: model.CatalogBase{ID: "first-steps"},
			Name:        "初出茅庐",
			Description: "完成第一个编程任务",
			Icon:        "trophy-bronze",
			Category:    "quest",
			Status:      model.AchievementActive,
			Requirements: model.Requirements{
				Type:   model.RequirementQuestCompletion,
				Target: 1,
			},
			Rewards: model.AchievementRewards{XP: 50, Coins: 10},
		},
		{
			CatalogBase:   model.CatalogBase{ID: "quest-hunter"},
			Name:          "任务猎人",
			Description:   "累计完成 10 个编程任务",
			Icon:          "trophy-silver",
			Category:      "quest",
			Status:        model.AchievementActive,
			Requirements:  model.Requirements{Type: model.RequirementQuestCompletion, Target: 10},
			Rewards:       model.AchievementRewards{XP: 200, Coins: 50, Gems: 1},
			Prerequisites: []string{"first-steps"},
		},
		{
			CatalogBase:  model.CatalogBase{ID: "level-5"},
			Name:         "渐入佳境",
			Description:  "达到 5 级",
			Icon:         "star",
			Category:     "level",
			Status:       model.AchievementActive,
			Requirements: model.Requirements{Type: model.RequirementLevelReached, Target: 5},
			Rewards:      model.AchievementRewards{Gems: 2, SkillPoints: 1},
		},
		{
			CatalogBase:  model.CatalogBase{ID: "xp-1000"},
			Name:         "千锤百炼",
			Description:  "累计获得 1000 经验",
			Icon:         "flame",
			Category:     "xp",
			Status:       model.AchievementActive,
			Requirements: model.Requirements{Type: model.RequirementXPEarned, Target: 1000},
			Rewards:      model.AchievementRewards{Coins: 100},
		},
		{
			CatalogBase:  model.CatalogBase{ID: "week-streak"},
			Name:         "七日不辍",
			Description:  "连续签到每满 7 天获得一次",
			Icon:         "calendar",
			Category:     "streak",
			Status:       model.AchievementActive,
			Requirements: model.Requirements{Type: model.RequirementDailyStreak, Target: 7},
			Rewards:      model.AchievementRewards{Coins: 20},
			Properties:   model.AchievementProperties{IsRepeatable: true, MaxUnlocks: 52},
		},
		{
			CatalogBase:  model.CatalogBase{ID: "arena-rookie"},
			Name:         "竞技新秀",
			Description:  "赢得 3 场编程对战",
			Icon:         "swords",
			Category:     "battle",
			Status:       model.AchievementActive,
			Requirements: model.Requirements{Type: model.RequirementBattleWins, Target: 3},
			Rewards:      model.AchievementRewards{XP: 100},
		},
		{
			CatalogBase:  model.CatalogBase{ID: "busy-compiler"},
			Name:         "编译器常客",
			Description:  "提交代码 100 次",
			Icon:         "terminal",
			Category:     "practice",
			Status:       model.AchievementActive,
			Requirements: model.Requirements{Type: model.RequirementCodeExecutions, Target: 100},
			Rewards:      model.AchievementRewards{Coins: 30},
		},
		{
			CatalogBase:  model.CatalogBase{ID: "collector"},
			Name:         "收藏家",
			Description:  "解锁 5 个成就",
			Icon:         "medal",
			Category:     "meta",
			Status:       model.AchievementActive,
			Requirements: model.Requirements{Type: model.RequirementAchievementsUnlocked, Target: 5},
			Rewards:      model.AchievementRewards{Gems: 3},
		},
		{
			CatalogBase: model.CatalogBase{ID: "skilled-rich"},
			Name:        "厚积薄发",
			Description: "达到 3 级且持有至少 100 金币",
			Icon:        "coins",
			Category:    "custom",
			Status:      model.AchievementActive,
			Requirements: model.Requirements{
				Type: model.RequirementCustom,
				Conditions: []model.Condition{
					{Field: "level", Operator: model.OpGte, Value: 3},
					{Field: "coins", Operator: model.OpGte, Value: 100},
				},
			},
			Rewards: model.AchievementRewards{SkillPoints: 1},
		},
	}
}

// DefaultQuests 初始任务目录
func DefaultQuests() []model.Quest {
	return []model.Quest{
		{
			CatalogBase: model.CatalogBase{ID: "hello-world"},
			Title:       "Hello, World",
			Description: "输出 Hello, World!",
			Status:      model.QuestActive,
			Difficulty:  model.DifficultyEasy,
			Category:    "fundamentals",
			Featured:    true,
			Rewards:     model.QuestRewards{XP: 50, Coins: 10},
			Challenge: model.Challenge{
				LanguageID:  50,
				StarterCode: "#include <stdio.h>\n\nint main(void) {\n    return 0;\n}\n",
				TestCases: []model.TestCase{
					{ExpectedOutput: "Hello, World!"},
				},
				Hints: []model.Hint{
					{Text: "使用 printf 输出字符串，别忘了 stdio.h", Cost: 5},
				},
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "sum-two"},
			Title:       "两数之和",
			Description: "读入两个整数，输出它们的和",
			Status:      model.QuestActive,
			Difficulty:  model.DifficultyEasy,
			Category:    "algorithms",
			Rewards:     model.QuestRewards{XP: 80, Coins: 15},
			Prerequisites: []model.QuestPrerequisite{
				{Type: model.PrerequisiteQuest, QuestID: "hello-world"},
			},
			Challenge: model.Challenge{
				LanguageID: 50,
				TestCases: []model.TestCase{
					{Input: "1 2", ExpectedOutput: "3"},
					{Input: "-5 5", ExpectedOutput: "0"},
					{Input: "2147483646 1", ExpectedOutput: "2147483647", Hidden: true},
				},
				Hints: []model.Hint{
					{Text: "scanf(\"%d %d\", &a, &b) 读取两个整数", Cost: 5},
					{Text: "注意输出后不需要多余空格", Cost: 10},
				},
			},
		},
		{
			CatalogBase: model.CatalogBase{ID: "fizzbuzz"},
			Title:       "FizzBuzz",
			Description: "输出 1 到 n 的 FizzBuzz 序列",
			Status:      model.QuestActive,
			Difficulty:  model.DifficultyMedium,
			Category:    "algorithms",
			Rewards:     model.QuestRewards{XP: 150, Coins: 30, Gems: 1},
			Prerequisites: []model.QuestPrerequisite{
				{Type: model.PrerequisiteQuest, QuestID: "sum-two"},
				{Type: model.PrerequisiteLevel, Level: 2},
			},
			Challenge: model.Challenge{
				LanguageID:   50,
				TimeLimitSec: 2,
				TestCases: []model.TestCase{
					{Input: "3", ExpectedOutput: "1\n2\nFizz"},
					{Input: "5", ExpectedOutput: "1\n2\nFizz\n4\nBuzz"},
					{Input: "15", ExpectedOutput: "1\n2\nFizz\n4\nBuzz\nFizz\n7\n8\nFizz\nBuzz\n11\nFizz\n13\n14\nFizzBuzz", Hidden: true},
				},
				Hints: []model.Hint{
					{Text: "先判断能否同时被 3 和 5 整除", Cost: 10},
				},
			},
		},
	}
}

// SeedCatalog 目录为空时写入默认成就与任务，写入前逐条校验
func SeedCatalog(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.AchievementDefinition{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		defs := DefaultAchievements()
		for i := range defs {
			if err := gamification.ValidateAchievement(&defs[i]); err != nil {
				return fmt.Errorf("seed achievements: %w", err)
			}
		}
		if err := db.Create(&defs).Error; err != nil {
			return err
		}
		logger.Log.Info("Seeded default achievements", zap.Int("count", len(defs)))
	}

	if err := db.Model(&model.Quest{}).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		quests := DefaultQuests()
		if err := db.Create(&quests).Error; err != nil {
			return err
		}
		logger.Log.Info("Seeded default quests", zap.Int("count", len(quests)))
	}
	return nil
}
