package gamification_test

import (
	"testing"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSpendSkillPoints_ExactBudget(t *testing.T) {
	e := newTestEngine()
	rec := model.NewUserProgress(1)
	rec.SkillPoints = 3

	require.NoError(t, e.SpendSkillPoints(rec, "algorithms", "recursion", 3))

	assert.Equal(t, 0, rec.SkillPoints)
	require.Contains(t, rec.SkillTrees, "algorithms")
	assert.Equal(t, []string{"recursion"}, rec.SkillTrees["algorithms"].UnlockedSkills)
	assert.Equal(t, 3, rec.SkillTrees["algorithms"].SkillPoints)
}

func TestSpendSkillPoints_FailuresLeaveRecordUnchanged(t *testing.T) {
	e := newTestEngine()
	rec := model.NewUserProgress(1)
	rec.SkillPoints = 2
	rec.SkillTrees["algorithms"] = &model.SkillTree{UnlockedSkills: []string{"loops"}, SkillPoints: 1}

	cases := []struct {
		name   string
		tree   string
		skill  string
		points int
		err    error
	}{
		{"insufficient", "algorithms", "sorting", 3, gamification.ErrInsufficientSkillPoints},
		{"already unlocked", "algorithms", "loops", 1, gamification.ErrSkillAlreadyUnlocked},
		{"zero points", "algorithms", "sorting", 0, gamification.ErrInvalidSkillPoints},
		{"empty skill", "algorithms", "", 1, gamification.ErrInvalidSkill},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			before := rec.Clone()

			err := e.SpendSkillPoints(rec, tc.tree, tc.skill, tc.points)

			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, before, rec)
			assert.GreaterOrEqual(t, rec.SkillPoints, 0)
		})
	}
}

func TestSpendSkillPoints_NilTreesMap(t *testing.T) {
	e := newTestEngine()
	rec := &model.UserProgress{UserID: 1, Level: 1, SkillPoints: 1}

	require.NoError(t, e.SpendSkillPoints(rec, "web", "html", 1))
	assert.Equal(t, 1, rec.SkillTrees["web"].SkillPoints)
}

func TestIncrementStat(t *testing.T) {
	e := newTestEngine()
	rec := &model.UserProgress{UserID: 1, Level: 1}

	require.NoError(t, e.IncrementStat(rec, model.StatBattleWins, 2))
	require.NoError(t, e.IncrementStat(rec, model.StatBattleWins, 1))
	assert.Equal(t, 3, rec.Stat(model.StatBattleWins))

	assert.ErrorIs(t, e.IncrementStat(rec, model.StatBattleWins, 0), gamification.ErrInvalidStat)
	assert.ErrorIs(t, e.IncrementStat(rec, "", 1), gamification.ErrInvalidStat)

	for _, managed := range []string{model.StatDailyStreak, model.StatLongestStreak, model.StatQuestsCompleted, model.StatCodeExecutions} {
		before := rec.Clone()
		assert.ErrorIs(t, e.IncrementStat(rec, managed, 1), gamification.ErrManagedStat, managed)
		assert.Equal(t, before, rec)
	}
}
