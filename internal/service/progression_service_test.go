package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/repository"
	"coder_quest_backend/internal/service"
	"coder_quest_backend/internal/testutil/mocks"
	"coder_quest_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var fixedNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store   *mocks.MockProgressStore
	catalog *mocks.MockCatalog
	grader  *mocks.MockGrader
	events  *mocks.MockEventPublisher
	svc     *service.ProgressionService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:   new(mocks.MockProgressStore),
		catalog: new(mocks.MockCatalog),
		grader:  new(mocks.MockGrader),
		events:  new(mocks.MockEventPublisher),
	}
	f.svc = service.NewProgressionService(
		f.store, f.catalog, f.grader,
		repository.NewLocalUserLocker(time.Second),
		f.events,
		gamification.DefaultRules(),
		zap.NewNop(),
	)
	f.svc.SetClock(func() time.Time { return fixedNow })
	f.events.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
	return f
}

// captureSave 记录写回的记录
func (f *fixture) captureSave(method string, err error) *model.UserProgress {
	saved := &model.UserProgress{}
	f.store.On(method, mock.Anything, mock.AnythingOfType("*model.UserProgress")).
		Run(func(args mock.Arguments) {
			*saved = *args.Get(1).(*model.UserProgress)
		}).
		Return(err)
	return saved
}

func helloQuest() *model.Quest {
	return &model.Quest{
		CatalogBase: model.CatalogBase{ID: "hello-world"},
		Title:       "Hello, World",
		Status:      model.QuestActive,
		Rewards:     model.QuestRewards{XP: 100, Coins: 5},
		Challenge: model.Challenge{
			LanguageID: 50,
			TestCases: []model.TestCase{
				{Input: "", ExpectedOutput: "Hello, World!"},
				{Input: "x", ExpectedOutput: "Hello, World!", Hidden: true},
			},
			Hints: []model.Hint{{Text: "use printf", Cost: 10}},
		},
	}
}

func achievement(id string, req model.Requirements, rewards model.AchievementRewards) model.AchievementDefinition {
	return model.AchievementDefinition{
		CatalogBase:  model.CatalogBase{ID: id},
		Name:         id,
		Status:       model.AchievementActive,
		Requirements: req,
		Rewards:      rewards,
	}
}

func inProgress(userID uint, questID string) *model.UserProgress {
	rec := model.NewUserProgress(userID)
	rec.Version = 3
	rec.Quests.Current = []model.QuestProgress{{QuestID: questID, StartedAt: fixedNow.Add(-90 * time.Second)}}
	return rec
}

func eventTypes(events []service.ProgressionEvent) []service.EventType {
	out := make([]service.EventType, 0, len(events))
	for _, e := range events {
		out = append(out, e.Type)
	}
	return out
}

func TestGetProgress_NewUser(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(nil, util.ErrProgressNotFound)

	view, err := f.svc.GetProgress(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 1, view.Progress.Level)
	assert.Equal(t, 100, view.NextLevelXP)
	assert.Equal(t, 100, view.Threshold)
	f.store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetProgress_StoreFailure(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(nil, errors.New("db down"))

	_, err := f.svc.GetProgress(context.Background(), 1)

	assert.EqualError(t, err, "db down")
}

func TestStartQuest_CreatesRecordOnFirstWrite(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(helloQuest(), nil)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(nil, util.ErrProgressNotFound)
	created := f.captureSave("Create", nil)

	rec, err := f.svc.StartQuest(context.Background(), 1, "hello-world")

	require.NoError(t, err)
	assert.Equal(t, 0, rec.CurrentQuestIndex("hello-world"))
	assert.Equal(t, fixedNow, created.Quests.Current[0].StartedAt)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestStartQuest_InactiveQuest(t *testing.T) {
	f := newFixture(t)
	q := helloQuest()
	q.Status = model.QuestArchived
	f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(q, nil)

	_, err := f.svc.StartQuest(context.Background(), 1, "hello-world")

	assert.ErrorIs(t, err, util.ErrQuestNotFound)
	f.store.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
}

func TestStartQuest_PrerequisiteNotMet(t *testing.T) {
	f := newFixture(t)
	q := helloQuest()
	q.Prerequisites = []model.QuestPrerequisite{{Type: model.PrerequisiteLevel, Level: 5}}
	f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(q, nil)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(model.NewUserProgress(1), nil)

	_, err := f.svc.StartQuest(context.Background(), 1, "hello-world")

	var pe *gamification.PrerequisiteError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 5, pe.Prerequisite.Level)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestSubmitQuest_CompletesAndSweepsAchievements(t *testing.T) {
	f := newFixture(t)
	quest := helloQuest()
	stored := inProgress(1, "hello-world")
	f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(quest, nil)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(stored, nil)
	f.grader.On("Grade", mock.Anything, "int main(){}", 50, quest.Challenge).
		Return(gamification.GradeResult{PassedTests: 2, TotalTests: 2}, nil)
	f.catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{
		achievement("first-quest",
			model.Requirements{Type: model.RequirementQuestCompletion, Target: 1},
			model.AchievementRewards{XP: 60, Coins: 1}),
		achievement("veteran",
			model.Requirements{Type: model.RequirementQuestCompletion, Target: 10},
			model.AchievementRewards{XP: 500}),
	}, nil)
	saved := f.captureSave("Save", nil)

	out, err := f.svc.SubmitQuest(context.Background(), 1, "hello-world", "int main(){}", 0, 0)

	require.NoError(t, err)
	assert.True(t, out.Completed)
	require.Len(t, out.Unlocked, 1)
	assert.Equal(t, "first-quest", out.Unlocked[0].AchievementID)

	assert.Equal(t, 2, saved.Level)
	assert.Equal(t, 60, saved.XP)
	assert.Equal(t, 160, saved.TotalXP)
	assert.Equal(t, 6, saved.Coins)
	assert.Equal(t, 1, saved.SkillPoints)
	assert.True(t, saved.HasCompletedQuest("hello-world"))
	assert.Equal(t, -1, saved.CurrentQuestIndex("hello-world"))
	assert.Equal(t, 90, saved.Quests.Completed[0].TimeSpent)
	assert.Equal(t, 1, saved.Stat(model.StatCodeExecutions))

	// 原记录不被修改
	assert.Equal(t, 0, stored.TotalXP)
	assert.Equal(t, 0, stored.CurrentQuestIndex("hello-world"))

	assert.ElementsMatch(t,
		[]service.EventType{service.EventQuestCompleted, service.EventAchievementUnlocked, service.EventLevelUp},
		eventTypes(f.events.Published()))
}

func TestSubmitQuest_PartialSurfacesHint(t *testing.T) {
	f := newFixture(t)
	quest := helloQuest()
	quest.Challenge.TestCases = append(quest.Challenge.TestCases,
		model.TestCase{ExpectedOutput: "a"}, model.TestCase{ExpectedOutput: "b"})
	f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(quest, nil)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(inProgress(1, "hello-world"), nil)
	f.grader.On("Grade", mock.Anything, "code", 71, quest.Challenge).
		Return(gamification.GradeResult{PassedTests: 1, TotalTests: 4}, nil)
	saved := f.captureSave("Save", nil)

	out, err := f.svc.SubmitQuest(context.Background(), 1, "hello-world", "code", 71, 0)

	require.NoError(t, err)
	assert.False(t, out.Completed)
	assert.Equal(t, 25, out.Progress)
	assert.Equal(t, "use printf", out.Hint)
	assert.Empty(t, out.Unlocked)
	assert.Equal(t, 25, saved.Quests.Current[0].Progress)
	f.catalog.AssertNotCalled(t, "ListActiveAchievements", mock.Anything)
}

func TestSubmitQuest_NotStartedSkipsGrader(t *testing.T) {
	f := newFixture(t)
	f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(helloQuest(), nil)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(model.NewUserProgress(1), nil)

	_, err := f.svc.SubmitQuest(context.Background(), 1, "hello-world", "code", 0, 0)

	assert.ErrorIs(t, err, gamification.ErrQuestNotStarted)
	f.grader.AssertNotCalled(t, "Grade", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmitQuest_GraderFailure(t *testing.T) {
	f := newFixture(t)
	quest := helloQuest()
	f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(quest, nil)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(inProgress(1, "hello-world"), nil)
	f.grader.On("Grade", mock.Anything, "code", 50, quest.Challenge).
		Return(gamification.GradeResult{}, util.ErrGraderFailed)

	_, err := f.svc.SubmitQuest(context.Background(), 1, "hello-world", "code", 0, 0)

	assert.ErrorIs(t, err, util.ErrGraderFailed)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestSubmitQuest_NoGraderConfigured(t *testing.T) {
	store := new(mocks.MockProgressStore)
	catalog := new(mocks.MockCatalog)
	svc := service.NewProgressionService(store, catalog, nil,
		repository.NewLocalUserLocker(time.Second), nil, gamification.DefaultRules(), nil)
	catalog.On("FindQuest", mock.Anything, "hello-world").Return(helloQuest(), nil)
	store.On("FindByUserID", mock.Anything, uint(1)).Return(inProgress(1, "hello-world"), nil)

	_, err := svc.SubmitQuest(context.Background(), 1, "hello-world", "code", 0, 0)

	assert.ErrorIs(t, err, util.ErrGraderUnavailable)
}

func TestUseHint(t *testing.T) {
	t.Run("insufficient coins leaves record untouched", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(helloQuest(), nil)
		rec := inProgress(1, "hello-world")
		rec.Coins = 5
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)

		_, _, err := f.svc.UseHint(context.Background(), 1, "hello-world", 0)

		assert.ErrorIs(t, err, gamification.ErrInsufficientCoins)
		assert.Equal(t, 5, rec.Coins)
		f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("deducts cost", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(helloQuest(), nil)
		rec := inProgress(1, "hello-world")
		rec.Coins = 25
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)
		saved := f.captureSave("Save", nil)

		text, _, err := f.svc.UseHint(context.Background(), 1, "hello-world", 0)

		require.NoError(t, err)
		assert.Equal(t, "use printf", text)
		assert.Equal(t, 15, saved.Coins)
		assert.Equal(t, 1, saved.Quests.Current[0].HintsUsed)
	})
}

func TestAbandonQuest(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(inProgress(1, "hello-world"), nil)
	saved := f.captureSave("Save", nil)

	_, err := f.svc.AbandonQuest(context.Background(), 1, "hello-world")

	require.NoError(t, err)
	assert.Empty(t, saved.Quests.Current)
}

func TestSpendSkillPoints(t *testing.T) {
	f := newFixture(t)
	rec := model.NewUserProgress(1)
	rec.SkillPoints = 3
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)
	saved := f.captureSave("Save", nil)

	_, err := f.svc.SpendSkillPoints(context.Background(), 1, "algorithms", "recursion", 3)

	require.NoError(t, err)
	assert.Equal(t, 0, saved.SkillPoints)
	assert.Equal(t, []string{"recursion"}, saved.SkillTrees["algorithms"].UnlockedSkills)

	_, err = f.svc.SpendSkillPoints(context.Background(), 1, "algorithms", "graphs", 4)
	assert.ErrorIs(t, err, gamification.ErrInsufficientSkillPoints)
}

func TestGrantXP(t *testing.T) {
	t.Run("multi level jump", func(t *testing.T) {
		f := newFixture(t)
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(model.NewUserProgress(1), nil)
		f.catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{}, nil)
		saved := f.captureSave("Save", nil)

		out, err := f.svc.GrantXP(context.Background(), 1, 250)

		require.NoError(t, err)
		assert.True(t, out.LevelUp.LeveledUp)
		assert.Equal(t, 3, out.LevelUp.NewLevel)
		assert.Equal(t, 2, out.LevelUp.SkillPointsGained)
		assert.Equal(t, 3, saved.Level)
		assert.Equal(t, 0, saved.XP)
		assert.Equal(t, []service.EventType{service.EventLevelUp}, eventTypes(f.events.Published()))
	})

	t.Run("rejects out of range", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.svc.GrantXP(context.Background(), 1, util.MaxManualXPGrant+1)
		assert.ErrorIs(t, err, gamification.ErrInvalidXPAmount)

		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(model.NewUserProgress(1), nil)
		_, err = f.svc.GrantXP(context.Background(), 1, 0)
		assert.ErrorIs(t, err, gamification.ErrInvalidXPAmount)
	})
}

func TestRecordActivity_UnlocksBattleAchievement(t *testing.T) {
	f := newFixture(t)
	rec := model.NewUserProgress(1)
	rec.Stats[model.StatBattleWins] = 9
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)
	f.catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{
		achievement("duelist",
			model.Requirements{Type: model.RequirementBattleWins, Target: 10},
			model.AchievementRewards{Gems: 2}),
	}, nil)
	saved := f.captureSave("Save", nil)

	out, err := f.svc.RecordActivity(context.Background(), 1, model.StatBattleWins, 1)

	require.NoError(t, err)
	require.Len(t, out.Unlocked, 1)
	assert.Equal(t, 10, saved.Stat(model.StatBattleWins))
	assert.Equal(t, 2, saved.Gems)
}

func TestRecordActivity_RejectsManagedStat(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(model.NewUserProgress(1), nil)

	_, err := f.svc.RecordActivity(context.Background(), 1, model.StatDailyStreak, 1)

	assert.ErrorIs(t, err, gamification.ErrManagedStat)
	f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	f.catalog.AssertNotCalled(t, "ListActiveAchievements", mock.Anything)
}

func TestCheckAchievements_ChainsWithinOneSweep(t *testing.T) {
	f := newFixture(t)
	rec := model.NewUserProgress(1)
	rec.Stats[model.StatQuestsCompleted] = 1
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)

	collector := achievement("collector",
		model.Requirements{Type: model.RequirementAchievementsUnlocked, Target: 1},
		model.AchievementRewards{Coins: 3})
	repeatable := achievement("grinder",
		model.Requirements{Type: model.RequirementLevelReached, Target: 1},
		model.AchievementRewards{Coins: 1})
	repeatable.Properties.IsRepeatable = true
	// 奖励经验让 level_reached 成就在同一次扫描的下一轮达标
	f.catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{
		collector,
		achievement("level-two",
			model.Requirements{Type: model.RequirementLevelReached, Target: 2},
			model.AchievementRewards{}),
		achievement("first-quest",
			model.Requirements{Type: model.RequirementQuestCompletion, Target: 1},
			model.AchievementRewards{XP: 100}),
		repeatable,
	}, nil)
	saved := f.captureSave("Save", nil)

	out, err := f.svc.CheckAchievements(context.Background(), 1)

	require.NoError(t, err)
	ids := make([]string, 0, len(out.Unlocked))
	for _, u := range out.Unlocked {
		ids = append(ids, u.AchievementID)
	}
	assert.ElementsMatch(t, []string{"first-quest", "grinder", "collector", "level-two"}, ids)
	assert.Equal(t, 1, saved.UnlockCount("grinder"))
	assert.Equal(t, 2, saved.Level)
	assert.Equal(t, 4, saved.Coins)
}

func TestMutate_ConcurrentUpdateNotPublished(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(model.NewUserProgress(1), nil)
	f.catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{}, nil)
	f.store.On("Save", mock.Anything, mock.Anything).Return(util.ErrConcurrentUpdate)

	_, err := f.svc.GrantXP(context.Background(), 1, 500)

	assert.ErrorIs(t, err, util.ErrConcurrentUpdate)
	f.events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
}

func TestLeaderboard(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindTop", mock.Anything, model.BoardStreak, util.MaxLeaderboardLimit).Return([]model.UserProgress{
		{UserID: 2, Level: 4, TotalXP: 900, Stats: model.Stats{model.StatDailyStreak: 12}},
		{UserID: 1, Level: 3, TotalXP: 300, CharacterClass: model.ClassFrontendWizard},
	}, nil)

	view, err := f.svc.Leaderboard(context.Background(), 1, model.BoardStreak, 1000)

	require.NoError(t, err)
	assert.Equal(t, model.BoardStreak, view.Type)
	require.Len(t, view.Entries, 2)
	assert.Equal(t, service.LeaderboardEntry{Rank: 1, UserID: 2, Level: 4, TotalXP: 900, DailyStreak: 12}, view.Entries[0])
	assert.Equal(t, 2, view.Entries[1].Rank)
	assert.True(t, view.Entries[1].IsCurrentUser)
	assert.Equal(t, model.ClassFrontendWizard, view.Entries[1].CharacterClass)
	assert.Equal(t, 2, view.UserRank)
}

func TestLeaderboard_ViewerOutsideTop(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindTop", mock.Anything, model.BoardLevel, util.DefaultLeaderboard).Return([]model.UserProgress{
		{UserID: 2, Level: 4},
	}, nil)

	view, err := f.svc.Leaderboard(context.Background(), 7, model.BoardLevel, 0)

	require.NoError(t, err)
	assert.Zero(t, view.UserRank)
	assert.False(t, view.Entries[0].IsCurrentUser)
}

func TestListQuests_HidesSecretsAndReportsState(t *testing.T) {
	f := newFixture(t)
	other := helloQuest()
	other.ID = "loops"
	f.catalog.On("ListActiveQuests", mock.Anything).Return([]model.Quest{*helloQuest(), *other}, nil)
	rec := inProgress(1, "hello-world")
	rec.Quests.Current[0].Progress = 50
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)

	views, err := f.svc.ListQuests(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, service.QuestInProgress, views[0].State)
	assert.Equal(t, 50, views[0].Progress)
	assert.Len(t, views[0].Challenge.TestCases, 1)
	assert.Empty(t, views[0].Challenge.Hints[0].Text)
	assert.Equal(t, service.QuestNotStarted, views[1].State)
}

func TestListAchievements_Flags(t *testing.T) {
	f := newFixture(t)
	rec := model.NewUserProgress(1)
	rec.Level = 3
	rec.Achievements.Unlocked = []model.UnlockedAchievement{{ID: "level-two", UnlockedAt: fixedNow}}
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)
	f.catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{
		achievement("level-two", model.Requirements{Type: model.RequirementLevelReached, Target: 2}, model.AchievementRewards{}),
		achievement("level-three", model.Requirements{Type: model.RequirementLevelReached, Target: 3}, model.AchievementRewards{}),
	}, nil)

	views, err := f.svc.ListAchievements(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.True(t, views[0].Unlocked)
	assert.False(t, views[0].Eligible)
	assert.False(t, views[1].Unlocked)
	assert.True(t, views[1].Eligible)
}

func TestSetRules_ChangesCurve(t *testing.T) {
	f := newFixture(t)
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(nil, util.ErrProgressNotFound)

	f.svc.SetRules(gamification.Rules{BaseXP: 200, XPStep: 10, SkillPointsPerLevel: 2, HintScoreThreshold: 0.5})
	view, err := f.svc.GetProgress(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, 200, view.Threshold)
	assert.Equal(t, fixedNow, f.svc.Engine().Now())
}

// memoryStore 带版本号校验的内存存储，用于并发测试
type memoryStore struct {
	mu   sync.Mutex
	recs map[uint]*model.UserProgress
}

func (s *memoryStore) FindByUserID(_ context.Context, userID uint) (*model.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.recs[userID]
	if !ok {
		return nil, util.ErrProgressNotFound
	}
	return rec.Clone(), nil
}

func (s *memoryStore) Create(_ context.Context, rec *model.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.UserID]; ok {
		return errors.New("duplicate key")
	}
	s.recs[rec.UserID] = rec.Clone()
	return nil
}

func (s *memoryStore) Save(_ context.Context, rec *model.UserProgress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.recs[rec.UserID]
	if !ok || cur.Version != rec.Version {
		return util.ErrConcurrentUpdate
	}
	rec.Version++
	s.recs[rec.UserID] = rec.Clone()
	return nil
}

func (s *memoryStore) FindTop(context.Context, model.LeaderboardType, int) ([]model.UserProgress, error) {
	return nil, nil
}

func (s *memoryStore) get(userID uint) *model.UserProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recs[userID].Clone()
}

func TestGrantXP_ConcurrentWritersAreSerialized(t *testing.T) {
	store := &memoryStore{recs: map[uint]*model.UserProgress{}}
	catalog := new(mocks.MockCatalog)
	catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{}, nil)
	svc := service.NewProgressionService(store, catalog, nil,
		repository.NewLocalUserLocker(5*time.Second), nil, gamification.DefaultRules(), zap.NewNop())

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.GrantXP(context.Background(), 9, 10)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	rec, err := store.FindByUserID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, 200, rec.TotalXP)
	assert.Equal(t, 2, rec.Level)
	assert.Equal(t, 100, rec.XP)
}

func newMemoryService(store *memoryStore, catalog *mocks.MockCatalog) *service.ProgressionService {
	svc := service.NewProgressionService(store, catalog, nil,
		repository.NewLocalUserLocker(time.Second), nil, gamification.DefaultRules(), zap.NewNop())
	svc.SetClock(func() time.Time { return fixedNow })
	return svc
}

func TestCheckAchievements_RepeatableNeedsNewProgress(t *testing.T) {
	rec := model.NewUserProgress(1)
	rec.Stats[model.StatDailyStreak] = 7
	store := &memoryStore{recs: map[uint]*model.UserProgress{1: rec}}
	weekly := achievement("week-streak",
		model.Requirements{Type: model.RequirementDailyStreak, Target: 7},
		model.AchievementRewards{Gems: 2})
	weekly.Properties = model.AchievementProperties{IsRepeatable: true, MaxUnlocks: 52}
	catalog := new(mocks.MockCatalog)
	catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{weekly}, nil)
	svc := newMemoryService(store, catalog)

	total := 0
	for i := 0; i < 5; i++ {
		out, err := svc.CheckAchievements(context.Background(), 1)
		require.NoError(t, err)
		total += len(out.Unlocked)
	}

	assert.Equal(t, 1, total)
	saved := store.get(1)
	assert.Equal(t, 1, saved.UnlockCount("week-streak"))
	assert.Equal(t, 2, saved.Gems)
}

func TestMutate_FailuresLeaveStoredRecordUnchanged(t *testing.T) {
	quest := helloQuest()
	locked := helloQuest()
	locked.ID = "advanced"
	locked.Prerequisites = []model.QuestPrerequisite{{Type: model.PrerequisiteLevel, Level: 9}}

	tests := []struct {
		name    string
		grade   gamification.GradeResult
		run     func(svc *service.ProgressionService) error
		wantErr error
	}{
		{
			name: "start quest already in progress",
			run: func(svc *service.ProgressionService) error {
				_, err := svc.StartQuest(context.Background(), 1, "hello-world")
				return err
			},
			wantErr: gamification.ErrQuestAlreadyInProgress,
		},
		{
			name: "start quest with unmet prerequisite",
			run: func(svc *service.ProgressionService) error {
				_, err := svc.StartQuest(context.Background(), 1, "advanced")
				return err
			},
			wantErr: gamification.ErrPrerequisiteNotMet,
		},
		{
			name:  "submit with inconsistent grade",
			grade: gamification.GradeResult{PassedTests: 3, TotalTests: 2},
			run: func(svc *service.ProgressionService) error {
				_, err := svc.SubmitQuest(context.Background(), 1, "hello-world", "code", 0, 30)
				return err
			},
			wantErr: gamification.ErrInvalidGrade,
		},
		{
			name: "hint out of range",
			run: func(svc *service.ProgressionService) error {
				_, _, err := svc.UseHint(context.Background(), 1, "hello-world", 4)
				return err
			},
			wantErr: gamification.ErrHintUnavailable,
		},
		{
			name: "hint too expensive",
			run: func(svc *service.ProgressionService) error {
				_, _, err := svc.UseHint(context.Background(), 1, "hello-world", 0)
				return err
			},
			wantErr: gamification.ErrInsufficientCoins,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := inProgress(1, "hello-world")
			rec.Coins = 3
			rec.Quests.Current[0].Progress = 40
			store := &memoryStore{recs: map[uint]*model.UserProgress{1: rec}}
			catalog := new(mocks.MockCatalog)
			catalog.On("FindQuest", mock.Anything, "hello-world").Return(quest, nil)
			catalog.On("FindQuest", mock.Anything, "advanced").Return(locked, nil)
			grader := new(mocks.MockGrader)
			grader.On("Grade", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(tt.grade, nil)
			events := new(mocks.MockEventPublisher)
			svc := service.NewProgressionService(store, catalog, grader,
				repository.NewLocalUserLocker(time.Second), events, gamification.DefaultRules(), zap.NewNop())
			svc.SetClock(func() time.Time { return fixedNow })
			before := store.get(1)

			err := tt.run(svc)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, before, store.get(1))
			events.AssertNotCalled(t, "Publish", mock.Anything, mock.Anything)
		})
	}
}

func TestCheckIn_ExtendsStreakOncePerDay(t *testing.T) {
	store := &memoryStore{recs: map[uint]*model.UserProgress{}}
	catalog := new(mocks.MockCatalog)
	catalog.On("ListActiveAchievements", mock.Anything).Return([]model.AchievementDefinition{
		achievement("two-days",
			model.Requirements{Type: model.RequirementDailyStreak, Target: 2},
			model.AchievementRewards{Coins: 7}),
	}, nil)
	svc := newMemoryService(store, catalog)
	now := fixedNow
	svc.SetClock(func() time.Time { return now })

	first, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Streak.Streak)
	assert.Empty(t, first.Unlocked)

	now = fixedNow.Add(2 * time.Hour)
	again, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	assert.False(t, again.Streak.Extended)
	catalog.AssertNumberOfCalls(t, "ListActiveAchievements", 1)

	now = fixedNow.AddDate(0, 0, 1)
	next, err := svc.CheckIn(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, gamification.StreakResult{Streak: 2, Longest: 2, Extended: true}, next.Streak)
	require.Len(t, next.Unlocked, 1)
	assert.Equal(t, "two-days", next.Unlocked[0].AchievementID)

	saved := store.get(1)
	assert.Equal(t, 2, saved.Stat(model.StatDailyStreak))
	assert.Equal(t, 7, saved.Coins)
	assert.Equal(t, now, *saved.LastActiveAt)
}

func TestChooseCharacterClass(t *testing.T) {
	t.Run("level high enough", func(t *testing.T) {
		f := newFixture(t)
		rec := model.NewUserProgress(1)
		rec.Level = 5
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)
		saved := f.captureSave("Save", nil)

		_, err := f.svc.ChooseCharacterClass(context.Background(), 1, model.ClassBackendKnight)

		require.NoError(t, err)
		assert.Equal(t, model.ClassBackendKnight, saved.CharacterClass)
	})

	t.Run("level too low", func(t *testing.T) {
		f := newFixture(t)
		rec := model.NewUserProgress(1)
		rec.Level = 14
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)

		_, err := f.svc.ChooseCharacterClass(context.Background(), 1, model.ClassFullstackPaladin)

		var ce *gamification.ClassLevelError
		require.ErrorAs(t, err, &ce)
		assert.Equal(t, 15, ce.Required)
		assert.Equal(t, model.ClassNoviceCoder, rec.CharacterClass)
		f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestGetQuest(t *testing.T) {
	archived := helloQuest()
	archived.ID = "retired"
	archived.Status = model.QuestArchived

	t.Run("public view until completed", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(helloQuest(), nil)
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(inProgress(1, "hello-world"), nil)

		v, err := f.svc.GetQuest(context.Background(), 1, "hello-world", false)

		require.NoError(t, err)
		assert.Equal(t, service.QuestInProgress, v.State)
		assert.Len(t, v.Challenge.TestCases, 1)
		assert.Empty(t, v.Challenge.Hints[0].Text)
	})

	t.Run("completed shows full quest", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("FindQuest", mock.Anything, "hello-world").Return(helloQuest(), nil)
		rec := model.NewUserProgress(1)
		rec.Quests.Completed = []model.CompletedQuest{{QuestID: "hello-world"}}
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)

		v, err := f.svc.GetQuest(context.Background(), 1, "hello-world", false)

		require.NoError(t, err)
		assert.Equal(t, service.QuestCompleted, v.State)
		assert.Len(t, v.Challenge.TestCases, 2)
		assert.Equal(t, "use printf", v.Challenge.Hints[0].Text)
	})

	t.Run("archived only for privileged", func(t *testing.T) {
		f := newFixture(t)
		f.catalog.On("FindQuest", mock.Anything, "retired").Return(archived, nil)
		f.store.On("FindByUserID", mock.Anything, uint(1)).Return(model.NewUserProgress(1), nil)

		_, err := f.svc.GetQuest(context.Background(), 1, "retired", false)
		assert.ErrorIs(t, err, util.ErrQuestNotFound)

		v, err := f.svc.GetQuest(context.Background(), 1, "retired", true)
		require.NoError(t, err)
		assert.Equal(t, service.QuestNotStarted, v.State)
		assert.Len(t, v.Challenge.TestCases, 2)
	})
}

func TestRecommendQuests(t *testing.T) {
	f := newFixture(t)
	algo := *helloQuest()
	algo.ID = "sum-two"
	algo.Category = "algorithms"
	algo.Difficulty = model.DifficultyEasy
	hard := *helloQuest()
	hard.ID = "graphs"
	hard.Difficulty = model.DifficultyHard
	f.catalog.On("ListActiveQuests", mock.Anything).Return([]model.Quest{*helloQuest(), algo, hard}, nil)
	rec := model.NewUserProgress(1)
	rec.SkillTrees["algorithms"] = &model.SkillTree{UnlockedSkills: []string{"recursion"}}
	f.store.On("FindByUserID", mock.Anything, uint(1)).Return(rec, nil)

	out, err := f.svc.RecommendQuests(context.Background(), 1, 50)

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "sum-two", out[0].ID)
	assert.Equal(t, 3, out[0].Score)
	assert.Equal(t, "hello-world", out[1].ID)
	assert.Len(t, out[1].Challenge.TestCases, 1)
}
