package gamification

import "coder_quest_backend/internal/model"

// ClassRequirements 各职业的最低等级
var ClassRequirements = map[model.CharacterClass]int{
	model.ClassNoviceCoder:      1,
	model.ClassFrontendWizard:   5,
	model.ClassBackendKnight:    5,
	model.ClassAISorcerer:       10,
	model.ClassFullstackPaladin: 15,
}

// ChooseCharacterClass 切换职业，等级不足时返回 *ClassLevelError
func (e *Engine) ChooseCharacterClass(rec *model.UserProgress, class model.CharacterClass) error {
	required, ok := ClassRequirements[class]
	if !ok {
		return ErrUnknownClass
	}
	if rec.Level < required {
		return &ClassLevelError{Class: class, Required: required}
	}
	rec.CharacterClass = class
	return nil
}
