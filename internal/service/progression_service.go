package service

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/util"
	"coder_quest_backend/pkg/monitoring"
	"coder_quest_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ProgressStore 用户成长记录存储
type ProgressStore interface {
	FindByUserID(ctx context.Context, userID uint) (*model.UserProgress, error)
	Create(ctx context.Context, rec *model.UserProgress) error
	Save(ctx context.Context, rec *model.UserProgress) error
	FindTop(ctx context.Context, board model.LeaderboardType, limit int) ([]model.UserProgress, error)
}

// Catalog 成就与任务目录（只读）
type Catalog interface {
	FindAchievement(ctx context.Context, id string) (*model.AchievementDefinition, error)
	ListActiveAchievements(ctx context.Context) ([]model.AchievementDefinition, error)
	FindQuest(ctx context.Context, id string) (*model.Quest, error)
	ListActiveQuests(ctx context.Context) ([]model.Quest, error)
}

// Grader 运行学生代码并统计通过的测试用例
type Grader interface {
	Grade(ctx context.Context, code string, languageID int, challenge model.Challenge) (gamification.GradeResult, error)
}

// UserLocker 串行化同一用户的写操作，返回的函数用于释放
type UserLocker interface {
	Lock(ctx context.Context, userID uint) (func(), error)
}

type EventPublisher interface {
	Publish(ctx context.Context, events ...ProgressionEvent) error
}

type ProgressionService struct {
	Store   ProgressStore
	Catalog Catalog
	Grader  Grader
	Locker  UserLocker
	Events  EventPublisher
	Logger  *zap.Logger

	engine atomic.Pointer[gamification.Engine]
	now    func() time.Time
}

func NewProgressionService(
	store ProgressStore,
	catalog Catalog,
	grader Grader,
	locker UserLocker,
	events EventPublisher,
	rules gamification.Rules,
	logger *zap.Logger,
) *ProgressionService {
	if events == nil {
		events = NopEventPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &ProgressionService{
		Store:   store,
		Catalog: catalog,
		Grader:  grader,
		Locker:  locker,
		Events:  events,
		Logger:  logger,
		now:     time.Now,
	}
	s.SetRules(rules)
	return s
}

// SetRules 替换经验曲线等规则，配置热更新时调用；进行中的操作继续使用旧规则
func (s *ProgressionService) SetRules(rules gamification.Rules) {
	s.engine.Store(gamification.NewEngine(rules).WithClock(s.now))
}

// SetClock 仅用于测试
func (s *ProgressionService) SetClock(now func() time.Time) {
	s.now = now
	s.SetRules(s.Engine().Rules())
}

func (s *ProgressionService) Engine() *gamification.Engine {
	return s.engine.Load()
}

type ProgressView struct {
	Progress    *model.UserProgress `json:"progress"`
	NextLevelXP int                 `json:"nextLevelXp"`
	Threshold   int                 `json:"threshold"`
}

type LeaderboardEntry struct {
	Rank           int                  `json:"rank"`
	UserID         uint                 `json:"userId"`
	Level          int                  `json:"level"`
	XP             int                  `json:"xp"`
	TotalXP        int                  `json:"totalXp"`
	DailyStreak    int                  `json:"dailyStreak"`
	BattleWins     int                  `json:"battleWins"`
	CharacterClass model.CharacterClass `json:"characterClass"`
	IsCurrentUser  bool                 `json:"isCurrentUser"`
}

// LeaderboardView UserRank 为当前用户在本榜单中的名次，不在榜上为 0
type LeaderboardView struct {
	Type     model.LeaderboardType `json:"type"`
	Entries  []LeaderboardEntry    `json:"leaderboard"`
	UserRank int                   `json:"userRank"`
}

type QuestState string

const (
	QuestNotStarted QuestState = "not_started"
	QuestInProgress QuestState = "in_progress"
	QuestCompleted  QuestState = "completed"
)

type QuestView struct {
	model.Quest
	State    QuestState `json:"state"`
	Progress int        `json:"progress"`
}

// RecommendedQuest 推荐任务，Score 越高越靠前
type RecommendedQuest struct {
	QuestView
	Score int `json:"score"`
}

type AchievementView struct {
	model.AchievementDefinition
	Unlocked    bool `json:"unlocked"`
	UnlockCount int  `json:"unlockCount"`
	Eligible    bool `json:"eligible"`
}

type SubmitOutcome struct {
	gamification.SubmitResult
	Unlocked []gamification.UnlockResult `json:"unlocked"`
	Progress *model.UserProgress         `json:"progress"`
}

type XPGrantOutcome struct {
	LevelUp  gamification.LevelUpResult  `json:"levelUp"`
	Unlocked []gamification.UnlockResult `json:"unlocked"`
	Progress *model.UserProgress         `json:"progress"`
}

type CheckInOutcome struct {
	Streak   gamification.StreakResult   `json:"streak"`
	Unlocked []gamification.UnlockResult `json:"unlocked"`
	Progress *model.UserProgress         `json:"progress"`
}

type ActionOutcome struct {
	Unlocked []gamification.UnlockResult `json:"unlocked"`
	Progress *model.UserProgress         `json:"progress"`
}

// mutation 收集一次写操作产生的副作用，保存成功后统一上报
type mutation struct {
	sweep    bool
	unlocked []gamification.UnlockResult
	levelUps []gamification.LevelUpResult
	xp       map[string]int
	events   []ProgressionEvent
}

func (m *mutation) awardXP(source string, amount int, lu gamification.LevelUpResult) {
	if amount > 0 {
		if m.xp == nil {
			m.xp = map[string]int{}
		}
		m.xp[source] += amount
	}
	if lu.LeveledUp {
		m.levelUps = append(m.levelUps, lu)
	}
}

func (s *ProgressionService) GetProgress(ctx context.Context, userID uint) (*ProgressView, error) {
	rec, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	eng := s.Engine()
	return &ProgressView{
		Progress:    rec,
		NextLevelXP: eng.NextLevelXP(rec),
		Threshold:   eng.Threshold(rec.Level),
	}, nil
}

func (s *ProgressionService) Leaderboard(ctx context.Context, viewerID uint, board model.LeaderboardType, limit int) (*LeaderboardView, error) {
	if limit <= 0 {
		limit = util.DefaultLeaderboard
	}
	if limit > util.MaxLeaderboardLimit {
		limit = util.MaxLeaderboardLimit
	}
	records, err := s.Store.FindTop(ctx, board, limit)
	if err != nil {
		return nil, err
	}
	view := &LeaderboardView{Type: board, Entries: make([]LeaderboardEntry, 0, len(records))}
	for i, r := range records {
		e := LeaderboardEntry{
			Rank:           i + 1,
			UserID:         r.UserID,
			Level:          r.Level,
			XP:             r.XP,
			TotalXP:        r.TotalXP,
			DailyStreak:    r.Stat(model.StatDailyStreak),
			BattleWins:     r.Stat(model.StatBattleWins),
			CharacterClass: r.CharacterClass,
			IsCurrentUser:  r.UserID == viewerID,
		}
		if e.IsCurrentUser {
			view.UserRank = e.Rank
		}
		view.Entries = append(view.Entries, e)
	}
	return view, nil
}

func (s *ProgressionService) ListQuests(ctx context.Context, userID uint) ([]QuestView, error) {
	quests, err := s.Catalog.ListActiveQuests(ctx)
	if err != nil {
		return nil, err
	}
	rec, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]QuestView, 0, len(quests))
	for i := range quests {
		views = append(views, questView(rec, &quests[i], false))
	}
	return views, nil
}

// questView 完成过任务的用户和教师可以看到隐藏用例与提示
func questView(rec *model.UserProgress, q *model.Quest, privileged bool) QuestView {
	v := QuestView{Quest: q.PublicView(), State: QuestNotStarted}
	if rec.HasCompletedQuest(q.ID) {
		v.State = QuestCompleted
		v.Progress = 100
	} else if idx := rec.CurrentQuestIndex(q.ID); idx >= 0 {
		v.State = QuestInProgress
		v.Progress = rec.Quests.Current[idx].Progress
	}
	if privileged || v.State == QuestCompleted {
		v.Quest = *q
	}
	return v
}

// GetQuest 单个任务详情。普通用户只能看到上架任务，privileged 可查看草稿与归档
func (s *ProgressionService) GetQuest(ctx context.Context, userID uint, questID string, privileged bool) (*QuestView, error) {
	var quest *model.Quest
	var err error
	if privileged {
		quest, err = s.Catalog.FindQuest(ctx, questID)
	} else {
		quest, err = s.activeQuest(ctx, questID)
	}
	if err != nil {
		return nil, err
	}
	rec, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	v := questView(rec, quest, privileged)
	return &v, nil
}

// RecommendQuests 按等级、前置条件与技能树方向推荐任务
func (s *ProgressionService) RecommendQuests(ctx context.Context, userID uint, limit int) ([]RecommendedQuest, error) {
	if limit <= 0 || limit > util.DefaultRecommendations {
		limit = util.DefaultRecommendations
	}
	quests, err := s.Catalog.ListActiveQuests(ctx)
	if err != nil {
		return nil, err
	}
	rec, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	recs := s.Engine().RecommendQuests(rec, quests, limit)
	out := make([]RecommendedQuest, 0, len(recs))
	for i := range recs {
		out = append(out, RecommendedQuest{
			QuestView: questView(rec, &recs[i].Quest, false),
			Score:     recs[i].Score,
		})
	}
	return out, nil
}

func (s *ProgressionService) ListAchievements(ctx context.Context, userID uint) ([]AchievementView, error) {
	defs, err := s.Catalog.ListActiveAchievements(ctx)
	if err != nil {
		return nil, err
	}
	rec, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	eng := s.Engine()
	views := make([]AchievementView, 0, len(defs))
	for i := range defs {
		count := rec.UnlockCount(defs[i].ID)
		views = append(views, AchievementView{
			AchievementDefinition: defs[i],
			Unlocked:              count > 0,
			UnlockCount:           count,
			Eligible:              eng.CheckEligibility(&defs[i], rec),
		})
	}
	return views, nil
}

func (s *ProgressionService) StartQuest(ctx context.Context, userID uint, questID string) (*model.UserProgress, error) {
	quest, err := s.activeQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	rec, _, err := s.mutate(ctx, userID, "StartQuest", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		return eng.StartQuest(rec, quest)
	})
	return rec, err
}

// SubmitQuest 先在锁外评测代码（可能耗时数秒），再在锁内根据评测结果推进任务
func (s *ProgressionService) SubmitQuest(ctx context.Context, userID uint, questID, code string, languageID, timeSpent int) (*SubmitOutcome, error) {
	quest, err := s.activeQuest(ctx, questID)
	if err != nil {
		return nil, err
	}

	// 未开始的任务不浪费评测资源
	current, _, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if current.CurrentQuestIndex(questID) < 0 {
		return nil, gamification.ErrQuestNotStarted
	}

	if s.Grader == nil {
		return nil, util.ErrGraderUnavailable
	}
	if languageID <= 0 {
		languageID = quest.Challenge.LanguageID
	}
	start := time.Now()
	grade, err := s.Grader.Grade(ctx, code, languageID, quest.Challenge)
	monitoring.GraderDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	var result gamification.SubmitResult
	rec, m, err := s.mutate(ctx, userID, "SubmitQuest", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		r, err := eng.SubmitQuest(rec, quest, grade, timeSpent)
		if err != nil {
			return err
		}
		result = r
		if r.Completed {
			m.sweep = true
			var lu gamification.LevelUpResult
			if r.LevelUp != nil {
				lu = *r.LevelUp
			}
			m.awardXP("quest", r.Rewards.XP, lu)
			m.events = append(m.events, newEvent(EventQuestCompleted, userID, eng.Now(), map[string]interface{}{
				"questId":  quest.ID,
				"xpEarned": r.Rewards.XP,
			}))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Completed {
		monitoring.QuestSubmissions.WithLabelValues("completed").Inc()
		monitoring.QuestsCompleted.Inc()
	} else {
		monitoring.QuestSubmissions.WithLabelValues("partial").Inc()
	}
	return &SubmitOutcome{SubmitResult: result, Unlocked: m.unlocked, Progress: rec}, nil
}

func (s *ProgressionService) UseHint(ctx context.Context, userID uint, questID string, index int) (string, *model.UserProgress, error) {
	quest, err := s.activeQuest(ctx, questID)
	if err != nil {
		return "", nil, err
	}
	var text string
	rec, _, err := s.mutate(ctx, userID, "UseHint", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		t, err := eng.UseHint(rec, quest, index)
		text = t
		return err
	})
	if err != nil {
		return "", nil, err
	}
	monitoring.HintsUsed.Inc()
	return text, rec, nil
}

func (s *ProgressionService) AbandonQuest(ctx context.Context, userID uint, questID string) (*model.UserProgress, error) {
	rec, _, err := s.mutate(ctx, userID, "AbandonQuest", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		return eng.AbandonQuest(rec, questID)
	})
	return rec, err
}

func (s *ProgressionService) SpendSkillPoints(ctx context.Context, userID uint, tree, skillID string, points int) (*model.UserProgress, error) {
	rec, _, err := s.mutate(ctx, userID, "SpendSkillPoints", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		return eng.SpendSkillPoints(rec, tree, skillID, points)
	})
	if err != nil {
		return nil, err
	}
	monitoring.SkillPointsSpent.WithLabelValues(tree).Add(float64(points))
	return rec, nil
}

// CheckIn 每日签到，维护连续天数；首次签到或续上连续时触发成就扫描
func (s *ProgressionService) CheckIn(ctx context.Context, userID uint) (*CheckInOutcome, error) {
	var streak gamification.StreakResult
	rec, m, err := s.mutate(ctx, userID, "CheckIn", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		streak = eng.RecordDailyActivity(rec)
		m.sweep = streak.Extended
		return nil
	})
	if err != nil {
		return nil, err
	}
	switch {
	case streak.Reset:
		monitoring.CheckIns.WithLabelValues("reset").Inc()
	case streak.Extended:
		monitoring.CheckIns.WithLabelValues("extended").Inc()
	default:
		monitoring.CheckIns.WithLabelValues("repeat").Inc()
	}
	return &CheckInOutcome{Streak: streak, Unlocked: m.unlocked, Progress: rec}, nil
}

func (s *ProgressionService) ChooseCharacterClass(ctx context.Context, userID uint, class model.CharacterClass) (*model.UserProgress, error) {
	rec, _, err := s.mutate(ctx, userID, "ChooseCharacterClass", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		return eng.ChooseCharacterClass(rec, class)
	})
	return rec, err
}

// GrantXP 教师/管理员手动发放经验
func (s *ProgressionService) GrantXP(ctx context.Context, userID uint, amount int) (*XPGrantOutcome, error) {
	if amount > util.MaxManualXPGrant {
		return nil, gamification.ErrInvalidXPAmount
	}
	var levelUp gamification.LevelUpResult
	rec, m, err := s.mutate(ctx, userID, "GrantXP", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		lu, err := eng.AddXP(rec, amount)
		if err != nil {
			return err
		}
		levelUp = lu
		m.awardXP("manual", amount, lu)
		m.sweep = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &XPGrantOutcome{LevelUp: levelUp, Unlocked: m.unlocked, Progress: rec}, nil
}

// RecordActivity 累加行为计数器（对战胜利、连续打卡等），由可信调用方上报
func (s *ProgressionService) RecordActivity(ctx context.Context, userID uint, stat string, delta int) (*ActionOutcome, error) {
	rec, m, err := s.mutate(ctx, userID, "RecordActivity", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		if err := eng.IncrementStat(rec, stat, delta); err != nil {
			return err
		}
		m.sweep = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ActionOutcome{Unlocked: m.unlocked, Progress: rec}, nil
}

// CheckAchievements 手动触发一次成就扫描
func (s *ProgressionService) CheckAchievements(ctx context.Context, userID uint) (*ActionOutcome, error) {
	rec, m, err := s.mutate(ctx, userID, "CheckAchievements", func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
		m.sweep = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ActionOutcome{Unlocked: m.unlocked, Progress: rec}, nil
}

func (s *ProgressionService) activeQuest(ctx context.Context, questID string) (*model.Quest, error) {
	quest, err := s.Catalog.FindQuest(ctx, questID)
	if err != nil {
		return nil, err
	}
	if quest.Status != model.QuestActive {
		return nil, util.ErrQuestNotFound
	}
	return quest, nil
}

// load 读取用户记录，不存在时返回未持久化的初始记录
func (s *ProgressionService) load(ctx context.Context, userID uint) (*model.UserProgress, bool, error) {
	rec, err := s.Store.FindByUserID(ctx, userID)
	if errors.Is(err, util.ErrProgressNotFound) {
		return model.NewUserProgress(userID), true, nil
	}
	if err != nil {
		return nil, false, err
	}
	return rec, false, nil
}

// mutate 是所有写操作的统一入口：加锁、读取、在副本上执行 op、成就扫描、
// 乐观锁保存、解锁，最后上报事件与指标。任一步失败都不会持久化任何改动。
func (s *ProgressionService) mutate(
	ctx context.Context,
	userID uint,
	op string,
	fn func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error,
) (*model.UserProgress, *mutation, error) {
	ctx, span := tracing.Tracer().Start(ctx, "ProgressionService."+op)
	defer span.End()
	span.SetAttributes(tracing.UserID(userID))

	rec, m, err := s.mutateLocked(ctx, userID, fn)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, nil, err
	}
	span.SetAttributes(attribute.Int("achievements.unlocked", len(m.unlocked)))

	s.report(ctx, userID, m)
	return rec, m, nil
}

func (s *ProgressionService) mutateLocked(
	ctx context.Context,
	userID uint,
	fn func(eng *gamification.Engine, rec *model.UserProgress, m *mutation) error,
) (*model.UserProgress, *mutation, error) {
	unlock, err := s.Locker.Lock(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	defer unlock()

	stored, isNew, err := s.load(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	eng := s.Engine()
	work := stored.Clone()
	m := &mutation{}
	if err := fn(eng, work, m); err != nil {
		return nil, nil, err
	}
	if m.sweep {
		if err := s.sweep(ctx, eng, work, m); err != nil {
			return nil, nil, err
		}
	}

	if isNew {
		err = s.Store.Create(ctx, work)
	} else {
		err = s.Store.Save(ctx, work)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("persist progress for user %d: %w", userID, err)
	}
	return work, m, nil
}

// sweep 反复扫描直到没有新成就可解锁：解锁奖励可能让其他成就达标。
// 可重复成就每次解锁都抬高下一次的门槛，且受 MaxUnlocks 限制，循环必然结束。
func (s *ProgressionService) sweep(ctx context.Context, eng *gamification.Engine, rec *model.UserProgress, m *mutation) error {
	defs, err := s.Catalog.ListActiveAchievements(ctx)
	if err != nil {
		return fmt.Errorf("load achievements: %w", err)
	}

	for {
		eligible := eng.EligibleAchievements(defs, rec)
		progressed := false
		for i := range eligible {
			def := &eligible[i]
			result, err := eng.UnlockAchievement(rec, def)
			if errors.Is(err, gamification.ErrAchievementNotEligible) {
				continue
			}
			if err != nil {
				return err
			}
			progressed = true

			m.unlocked = append(m.unlocked, result)
			m.awardXP("achievement", def.Rewards.XP, result.LevelUp)
			m.events = append(m.events, newEvent(EventAchievementUnlocked, rec.UserID, eng.Now(), map[string]interface{}{
				"achievementId": def.ID,
				"rewards":       def.Rewards,
			}))
		}
		if !progressed {
			return nil
		}
	}
}

func (s *ProgressionService) report(ctx context.Context, userID uint, m *mutation) {
	now := s.now()
	events := m.events
	for _, lu := range m.levelUps {
		monitoring.LevelUps.Add(float64(lu.NewLevel - lu.PreviousLevel))
		events = append(events, newEvent(EventLevelUp, userID, now, map[string]interface{}{
			"previousLevel":     lu.PreviousLevel,
			"newLevel":          lu.NewLevel,
			"skillPointsGained": lu.SkillPointsGained,
		}))
	}
	for source, amount := range m.xp {
		monitoring.XPAwarded.WithLabelValues(source).Add(float64(amount))
	}
	for _, u := range m.unlocked {
		monitoring.AchievementsUnlocked.WithLabelValues(u.AchievementID).Inc()
	}

	if err := s.Events.Publish(ctx, events...); err != nil {
		s.Logger.Warn("publish progression events failed",
			zap.Uint("userID", userID),
			zap.Int("events", len(events)),
			zap.Error(err),
		)
	}
}
