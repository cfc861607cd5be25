package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSpendableCoins(t *testing.T) {
	s := &Student{TotalPoints: 500, Coins: 20, CoinsSpent: 30}

	assert.Equal(t, 40, s.SpendableCoins(10)) // 50 + 20 - 30
	assert.Equal(t, -10, s.SpendableCoins(0)) // 换算关闭时只剩奖励币
}

func TestNormalize(t *testing.T) {
	s := &Student{TotalPoints: -5, Level: 0}
	s.Normalize()

	assert.Equal(t, 0, s.TotalPoints)
	assert.Equal(t, 1, s.Level)
	assert.NotNil(t, s.CategoryTotal)
	assert.NotNil(t, s.CategoryWeekly)
}

func TestQuestTargets(t *testing.T) {
	classQuest := &Quest{IsClassQuest: true, TargetStudents: []uint{1}}
	assert.True(t, classQuest.Targets(99))

	open := &Quest{}
	assert.True(t, open.Targets(99))

	targeted := &Quest{TargetStudents: []uint{3, 4}}
	assert.True(t, targeted.Targets(3))
	assert.False(t, targeted.Targets(99))
}

func TestAchievementSatisfied(t *testing.T) {
	s := &Student{
		Level:           3,
		TotalPoints:     300,
		QuestsCompleted: 2,
		LoginStreak:     5,
		CategoryTotal:   CategoryPoints{CategoryLearner: 120},
		OwnedPets:       []Pet{{Name: "Ember"}},
	}

	cases := []struct {
		def  AchievementDef
		want bool
	}{
		{AchievementDef{Condition: ConditionLevel, Threshold: 3}, true},
		{AchievementDef{Condition: ConditionLevel, Threshold: 4}, false},
		{AchievementDef{Condition: ConditionPetsOwned, Threshold: 1}, true},
		{AchievementDef{Condition: ConditionQuestsCompleted, Threshold: 3}, false},
		{AchievementDef{Condition: ConditionCategoryTotal, Category: CategoryLearner, Threshold: 100}, true},
		{AchievementDef{Condition: ConditionCategoryTotal, Category: CategoryRespectful, Threshold: 1}, false},
		{AchievementDef{Condition: ConditionTotalPoints, Threshold: 300}, true},
		{AchievementDef{Condition: ConditionLoginStreak, Threshold: 7}, false},
		{AchievementDef{Condition: ConditionKind("bogus"), Threshold: 0}, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, c.def.Satisfied(s), "condition=%s threshold=%d", c.def.Condition, c.def.Threshold)
	}
}

func TestNewPetDefaultSpeed(t *testing.T) {
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tpl := &PetTemplate{Name: "Ember"}
	pet := NewPet(tpl, at)
	assert.Equal(t, 1.0, pet.Speed)

	tpl.BaseSpeed = 1.5
	pet = NewPet(tpl, at)
	assert.Equal(t, 1.5, pet.Speed)
}
