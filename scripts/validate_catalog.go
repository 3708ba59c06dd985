// 校验数据库中的成就与任务目录
//
// 检查未知的条件类型/运算符、引用不存在的前置成就或任务、没有测试用例的任务。
// 内容后台批量导入后建议执行一次，发现问题时以非零状态退出。
//
// 用法: go run scripts/validate_catalog.go [-config configs]

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"coder_quest_backend/internal/config"
	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/repository"
	"coder_quest_backend/pkg/database"
	"coder_quest_backend/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	configDir := flag.String("config", "configs", "配置文件目录")
	flag.Parse()

	cfg, err := config.LoadConfig(*configDir)
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}
	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	ctx := context.Background()
	repo := repository.NewCatalogRepository(db)

	defs, err := repo.ListAllAchievements(ctx)
	if err != nil {
		log.Fatalf("读取成就目录失败: %v", err)
	}
	var quests []model.Quest
	if err := db.WithContext(ctx).Order("id ASC").Find(&quests).Error; err != nil {
		log.Fatalf("读取任务目录失败: %v", err)
	}

	problems := validate(defs, quests)
	for _, p := range problems {
		logger.Log.Warn("catalog problem", zap.String("detail", p))
	}
	fmt.Printf("成就 %d 个，任务 %d 个，问题 %d 个\n", len(defs), len(quests), len(problems))
	if len(problems) > 0 {
		os.Exit(1)
	}
}

func validate(defs []model.AchievementDefinition, quests []model.Quest) []string {
	var problems []string

	achievementIDs := make(map[string]bool, len(defs))
	for _, d := range defs {
		achievementIDs[d.ID] = true
	}
	for i := range defs {
		if err := gamification.ValidateAchievement(&defs[i]); err != nil {
			problems = append(problems, err.Error())
		}
		for _, pre := range defs[i].Prerequisites {
			if !achievementIDs[pre] {
				problems = append(problems, fmt.Sprintf("achievement %s: unknown prerequisite %q", defs[i].ID, pre))
			}
		}
	}

	questIDs := make(map[string]bool, len(quests))
	for _, q := range quests {
		questIDs[q.ID] = true
	}
	for _, q := range quests {
		if len(q.Challenge.TestCases) == 0 {
			problems = append(problems, fmt.Sprintf("quest %s: no test cases", q.ID))
		}
		for _, pre := range q.Prerequisites {
			switch pre.Type {
			case model.PrerequisiteQuest:
				if !questIDs[pre.QuestID] {
					problems = append(problems, fmt.Sprintf("quest %s: unknown prerequisite quest %q", q.ID, pre.QuestID))
				}
			case model.PrerequisiteLevel:
				if pre.Level < 1 {
					problems = append(problems, fmt.Sprintf("quest %s: invalid level prerequisite %d", q.ID, pre.Level))
				}
			default:
				problems = append(problems, fmt.Sprintf("quest %s: unknown prerequisite type %q", q.ID, pre.Type))
			}
		}
	}
	return problems
}
