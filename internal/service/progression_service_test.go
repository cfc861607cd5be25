package service

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/util"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelForXP(t *testing.T) {
	svc := newTestProgression(&memStudentStore{}, nil, nil)

	cases := []struct {
		xp    int
		level int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{500, 4},
		{999999, 4}, // 封顶在阈值表长度
	}
	for _, c := range cases {
		assert.Equal(t, c.level, svc.LevelForXP(c.xp), "xp=%d", c.xp)
	}
}

func TestLevelMonotonic(t *testing.T) {
	svc := newTestProgression(&memStudentStore{}, nil, nil)

	prev := 0
	for xp := 0; xp <= 600; xp++ {
		level := svc.LevelForXP(xp)
		assert.GreaterOrEqual(t, level, prev)
		assert.GreaterOrEqual(t, level, 1)
		assert.LessOrEqual(t, level, svc.Game.MaxLevel())
		prev = level
	}
}

func TestAwardXPAdditive(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestProgression(store, nil, nil)
	student := newTestStudent(1)

	require.NoError(t, svc.AwardXP(student, model.CategoryLearner, 30, "test"))
	require.NoError(t, svc.AwardXP(student, model.CategoryRespectful, 12, "test"))

	assert.Equal(t, 42, student.TotalPoints)
	assert.Equal(t, 42, student.WeeklyPoints)
	assert.Equal(t, 30, student.CategoryTotal[model.CategoryLearner])
	assert.Equal(t, 12, student.CategoryTotal[model.CategoryRespectful])
	assert.Equal(t, 2, store.saves)

	require.Len(t, store.logs, 2)
	assert.Equal(t, 0, store.logs[0].OldTotal)
	assert.Equal(t, 30, store.logs[0].NewTotal)
	assert.Equal(t, 30, store.logs[1].OldTotal)
	assert.Equal(t, 42, store.logs[1].NewTotal)
}

func TestAwardXPLevelUp(t *testing.T) {
	svc := newTestProgression(&memStudentStore{}, nil, nil)
	student := newTestStudent(1)

	var from, to int
	svc.OnLevelUp(func(s *model.Student, oldLevel, newLevel int) {
		from, to = oldLevel, newLevel
	})

	require.NoError(t, svc.AwardXP(student, model.CategoryLearner, 100, "test"))

	assert.Equal(t, 2, student.Level)
	assert.Equal(t, 1, from)
	assert.Equal(t, 2, to)
	assert.Equal(t, "avatars/starter/level_2.png", student.AvatarImage)
}

func TestAwardXPInvalidInputNoMutation(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestProgression(store, nil, nil)
	student := newTestStudent(1)
	student.TotalPoints = 80
	student.Level = 1

	err := svc.AwardXP(student, model.Category("Sneaky"), 10, "test")
	assert.ErrorIs(t, err, util.ErrInvalidCategory)

	err = svc.AwardXP(student, model.CategoryLearner, 0, "test")
	assert.ErrorIs(t, err, util.ErrInvalidAmount)

	err = svc.AwardXP(student, model.CategoryLearner, -5, "test")
	assert.ErrorIs(t, err, util.ErrInvalidAmount)

	assert.Equal(t, 80, student.TotalPoints)
	assert.Empty(t, store.logs)
	assert.Equal(t, 0, store.saves)
}

func TestPetUnlockOnce(t *testing.T) {
	templates := []model.PetTemplate{
		{Name: "Ember"},
		{Name: "Frost"},
	}
	svc := newTestProgression(&memStudentStore{}, templates, nil)
	student := newTestStudent(1)

	unlocks := 0
	svc.OnPetUnlock(func(s *model.Student, pet model.Pet) { unlocks++ })

	require.NoError(t, svc.AwardXP(student, model.CategoryLearner, 50, "test"))
	require.NotNil(t, student.Pet)
	assert.Len(t, student.OwnedPets, 1)
	assert.Equal(t, 1, unlocks)
	first := student.Pet.Name

	// 继续加分不再重复解锁
	require.NoError(t, svc.AwardXP(student, model.CategoryLearner, 200, "test"))
	assert.Len(t, student.OwnedPets, 1)
	assert.Equal(t, 1, unlocks)
	assert.Equal(t, first, student.Pet.Name)
}

func TestPetUnlockBelowThreshold(t *testing.T) {
	svc := newTestProgression(&memStudentStore{}, []model.PetTemplate{{Name: "Ember"}}, nil)
	student := newTestStudent(1)

	require.NoError(t, svc.AwardXP(student, model.CategoryLearner, 49, "test"))
	assert.Nil(t, student.Pet)
}

func TestAchievementAwardedOnceWithBonus(t *testing.T) {
	defs := []model.AchievementDef{
		{
			Code:       "first_hundred",
			Condition:  model.ConditionTotalPoints,
			Threshold:  100,
			BonusCoins: 10,
			BonusXP:    20,
		},
	}
	store := &memStudentStore{}
	svc := newTestProgression(store, nil, defs)
	student := newTestStudent(1)

	earned := 0
	svc.OnAchievement(func(s *model.Student, def model.AchievementDef) { earned++ })

	require.NoError(t, svc.AwardXP(student, model.CategoryRespectful, 100, "test"))

	assert.True(t, student.HasAchievement("first_hundred"))
	assert.Equal(t, 10, student.Coins)
	// 奖励XP计入Learner类别
	assert.Equal(t, 120, student.TotalPoints)
	assert.Equal(t, 20, student.CategoryTotal[model.CategoryLearner])
	assert.Equal(t, 1, earned)

	require.NoError(t, svc.AwardXP(student, model.CategoryRespectful, 100, "test"))
	assert.Equal(t, 1, earned)
	assert.Equal(t, 10, student.Coins)
}

func TestBulkAwardXPCollectsErrors(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestProgression(store, nil, nil)

	a := newTestStudent(1)
	b := newTestStudent(2)
	c := newTestStudent(3)

	result := svc.BulkAwardXP([]*model.Student{a, b, c}, []uint{1, 3}, model.CategoryLearner, 10, "test")

	assert.Equal(t, []uint{1, 3}, result.Awarded)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 10, a.TotalPoints)
	assert.Equal(t, 0, b.TotalPoints) // 不在名单内
	assert.Equal(t, 10, c.TotalPoints)
}

func TestBulkAwardXPInvalidCategoryIsolated(t *testing.T) {
	svc := newTestProgression(&memStudentStore{}, nil, nil)

	a := newTestStudent(1)
	b := newTestStudent(2)

	result := svc.BulkAwardXP([]*model.Student{a, b}, []uint{1, 2}, model.Category("Nope"), 10, "test")

	assert.Empty(t, result.Awarded)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, uint(1), result.Errors[0].StudentID)
	assert.Equal(t, 0, a.TotalPoints)
	assert.Equal(t, 0, b.TotalPoints)
}

func TestGetLevelProgress(t *testing.T) {
	svc := newTestProgression(&memStudentStore{}, nil, nil)

	student := newTestStudent(1)
	student.TotalPoints = 175 // 2级(100)到3级(250)的中点
	p := svc.GetLevelProgress(student)
	assert.Equal(t, 2, p.CurrentLevel)
	assert.InDelta(t, 50.0, p.ProgressPercent, 0.001)
	assert.Equal(t, 75, p.XPForNext)

	student.TotalPoints = 500 // 满级
	p = svc.GetLevelProgress(student)
	assert.Equal(t, 4, p.CurrentLevel)
	assert.Equal(t, 100.0, p.ProgressPercent)
	assert.Equal(t, 0, p.XPForNext)
}

func TestAwardCoins(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestProgression(store, nil, nil)
	student := newTestStudent(1)

	require.NoError(t, svc.AwardCoins(student, 15, "quest:Test"))
	assert.Equal(t, 15, student.Coins)
	require.Len(t, store.logs, 1)
	assert.Equal(t, model.LogCoins, store.logs[0].Type)

	assert.ErrorIs(t, svc.AwardCoins(student, 0, "quest:Test"), util.ErrInvalidAmount)
	assert.Equal(t, 15, student.Coins)
}

func TestNormalizeStudentRepairsLevel(t *testing.T) {
	svc := newTestProgression(&memStudentStore{}, nil, nil)
	student := newTestStudent(1)
	student.TotalPoints = 300
	student.Level = 1

	svc.NormalizeStudent(student)

	assert.Equal(t, 3, student.Level)
	assert.Equal(t, "avatars/starter/level_3.png", student.AvatarImage)
}
