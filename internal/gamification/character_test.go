package gamification_test

import (
	"testing"

	"coder_quest_backend/internal/gamification"
	"coder_quest_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestChooseCharacterClass(t *testing.T) {
	e := newTestEngine()
	rec := model.NewUserProgress(1)
	rec.Level = 10

	assert.NoError(t, e.ChooseCharacterClass(rec, model.ClassAISorcerer))
	assert.Equal(t, model.ClassAISorcerer, rec.CharacterClass)

	err := e.ChooseCharacterClass(rec, model.ClassFullstackPaladin)
	assert.ErrorIs(t, err, gamification.ErrClassLevelTooLow)
	assert.Contains(t, err.Error(), "level 15")
	assert.Equal(t, model.ClassAISorcerer, rec.CharacterClass)

	assert.ErrorIs(t, e.ChooseCharacterClass(rec, "bard"), gamification.ErrUnknownClass)
	assert.NoError(t, e.ChooseCharacterClass(rec, model.ClassNoviceCoder))
}
