package service

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/util"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQuestService(store *memStudentStore, quests *memQuestStore) *QuestService {
	progression := newTestProgression(store, nil, nil)
	svc := NewQuestService(quests, store, progression)
	svc.nowFn = func() time.Time { return testClock }
	return svc
}

func activeQuest(id uint, createdAt time.Time) *model.Quest {
	q := &model.Quest{
		ClassID:      1,
		Title:        "Read a chapter",
		Description:  "Finish chapter 3",
		QuestGiverID: 1,
		Category:     model.CategoryLearner,
		XPReward:     40,
		CoinReward:   5,
		IsClassQuest: true,
		Status:       model.QuestActive,
		ExpiresAt:    createdAt.Add(24 * time.Hour),
	}
	q.ID = id
	q.CreatedAt = createdAt
	return q
}

func TestCreateQuestValidation(t *testing.T) {
	quests := newMemQuestStore()
	quests.givers[1] = &model.QuestGiver{Name: "Professor Hoot"}
	svc := newTestQuestService(&memStudentStore{}, quests)

	_, err := svc.CreateQuest(QuestRequest{ClassID: 1, Title: "  ", Description: "d", QuestGiverID: 1, Category: model.CategoryLearner})
	assert.ErrorIs(t, err, util.ErrInvalidArgument)

	_, err = svc.CreateQuest(QuestRequest{ClassID: 1, Title: "t", Description: "d", QuestGiverID: 1, Category: model.Category("Nope")})
	assert.ErrorIs(t, err, util.ErrInvalidCategory)

	_, err = svc.CreateQuest(QuestRequest{ClassID: 1, Title: "t", Description: "d", QuestGiverID: 9, Category: model.CategoryLearner})
	assert.ErrorIs(t, err, util.ErrQuestGiverNotFound)
}

func TestCreateQuestDefaults(t *testing.T) {
	quests := newMemQuestStore()
	quests.givers[1] = &model.QuestGiver{Name: "Professor Hoot"}
	svc := newTestQuestService(&memStudentStore{}, quests)

	quest, err := svc.CreateQuest(QuestRequest{
		ClassID:        1,
		Title:          " Read a chapter ",
		Description:    "Finish chapter 3",
		QuestGiverID:   1,
		Category:       model.CategoryLearner,
		XPReward:       -10,
		IsClassQuest:   true,
		TargetStudents: []uint{4, 5},
	})
	require.NoError(t, err)

	assert.Equal(t, "Read a chapter", quest.Title)
	assert.Equal(t, 0, quest.XPReward) // 负奖励归零
	assert.Equal(t, 24, quest.DurationHours)
	assert.Equal(t, testClock.Add(24*time.Hour), quest.ExpiresAt)
	assert.Nil(t, quest.TargetStudents) // 班级任务不保留定向名单
	assert.Equal(t, model.QuestActive, quest.Status)
}

func TestCompleteQuestAwardsOnce(t *testing.T) {
	store := &memStudentStore{}
	quests := newMemQuestStore()
	svc := newTestQuestService(store, quests)

	quest := activeQuest(1, testClock.Add(-30*time.Minute))
	student := newTestStudent(1)

	require.NoError(t, svc.CompleteQuest(quest, student))
	assert.Equal(t, 40, student.TotalPoints)
	assert.Equal(t, 5, student.Coins)
	assert.Equal(t, 1, student.QuestsCompleted)
	assert.Equal(t, 1, quest.TimesCompleted)
	assert.InDelta(t, 30.0, quest.AverageCompletionMinutes, 0.001)

	// 二次结算被拒，且不重复发奖
	err := svc.CompleteQuest(quest, student)
	assert.ErrorIs(t, err, util.ErrQuestAlreadyCompleted)
	assert.Equal(t, 40, student.TotalPoints)
	assert.Equal(t, 5, student.Coins)
	assert.Equal(t, 1, student.QuestsCompleted)
}

func TestCompleteQuestRetriesAfterRewardFailure(t *testing.T) {
	store := &memStudentStore{saveErr: errors.New("db down")}
	quests := newMemQuestStore()
	svc := newTestQuestService(store, quests)

	quest := activeQuest(1, testClock.Add(-30*time.Minute))
	require.Error(t, svc.CompleteQuest(quest, newTestStudent(1)))

	// 发奖失败不留下完成台账
	done, err := quests.HasCompleted(quest.ID, 1)
	require.NoError(t, err)
	assert.False(t, done)

	// 存储恢复后同一学生可以重新结算
	store.saveErr = nil
	student := newTestStudent(1)
	require.NoError(t, svc.CompleteQuest(quest, student))
	assert.Equal(t, 40, student.TotalPoints)
	assert.Equal(t, 1, student.QuestsCompleted)
}

func TestCompleteQuestExpired(t *testing.T) {
	svc := newTestQuestService(&memStudentStore{}, newMemQuestStore())

	// 时长1小时、2小时前发布的任务
	quest := activeQuest(1, testClock.Add(-2*time.Hour))
	quest.ExpiresAt = quest.CreatedAt.Add(time.Hour)
	student := newTestStudent(1)

	err := svc.CompleteQuest(quest, student)
	assert.ErrorIs(t, err, util.ErrQuestExpired)
	assert.Equal(t, 0, student.TotalPoints)
	assert.Equal(t, 0, student.QuestsCompleted)
}

func TestCompleteQuestArchived(t *testing.T) {
	svc := newTestQuestService(&memStudentStore{}, newMemQuestStore())

	quest := activeQuest(1, testClock)
	quest.Status = model.QuestArchived

	err := svc.CompleteQuest(quest, newTestStudent(1))
	assert.ErrorIs(t, err, util.ErrQuestInactive)
}

func TestCompleteQuestForClassCollectAndContinue(t *testing.T) {
	store := &memStudentStore{}
	quests := newMemQuestStore()
	svc := newTestQuestService(store, quests)

	quest := activeQuest(1, testClock.Add(-time.Hour))
	a := newTestStudent(1)
	b := newTestStudent(2)
	c := newTestStudent(3)

	// b 已经完成过
	require.NoError(t, svc.CompleteQuest(quest, b))

	result := svc.CompleteQuestForClass(quest, []*model.Student{a, b, c})

	assert.Equal(t, []uint{1, 3}, result.Completed)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, util.ErrQuestAlreadyCompleted.Error(), result.Errors[2])
	assert.Equal(t, 40, a.TotalPoints)
	assert.Equal(t, 40, c.TotalPoints)
}

func TestStartQuestIdempotent(t *testing.T) {
	quests := newMemQuestStore()
	svc := newTestQuestService(&memStudentStore{}, quests)

	quest := activeQuest(1, testClock)
	student := newTestStudent(1)

	require.NoError(t, svc.StartQuest(quest, student))
	// 重复开始按无操作成功处理
	require.NoError(t, svc.StartQuest(quest, student))

	started, err := quests.HasStarted(quest.ID, student.ID)
	require.NoError(t, err)
	assert.True(t, started)
}

func TestAvailableQuestsFilter(t *testing.T) {
	svc := newTestQuestService(&memStudentStore{}, newMemQuestStore())
	student := newTestStudent(7)

	open := activeQuest(1, testClock)

	expired := activeQuest(2, testClock.Add(-48*time.Hour))
	expired.ExpiresAt = testClock.Add(-24 * time.Hour)

	archived := activeQuest(3, testClock)
	archived.Status = model.QuestArchived

	done := activeQuest(4, testClock)
	done.Completions = []model.QuestCompletion{{QuestID: 4, StudentID: 7}}

	targeted := activeQuest(5, testClock)
	targeted.IsClassQuest = false
	targeted.TargetStudents = []uint{8, 9}

	targetedAtMe := activeQuest(6, testClock)
	targetedAtMe.IsClassQuest = false
	targetedAtMe.TargetStudents = []uint{7}

	available := svc.AvailableQuests([]model.Quest{*open, *expired, *archived, *done, *targeted, *targetedAtMe}, student)

	ids := make([]uint, 0, len(available))
	for _, q := range available {
		ids = append(ids, q.ID)
	}
	assert.Equal(t, []uint{1, 6}, ids)
}

func TestQuestsCompletedAchievementFiresInPass(t *testing.T) {
	store := &memStudentStore{}
	quests := newMemQuestStore()
	progression := newTestProgression(store, nil, []model.AchievementDef{
		{Code: "first_quest", Condition: model.ConditionQuestsCompleted, Threshold: 1, BonusCoins: 3},
	})
	svc := NewQuestService(quests, store, progression)
	svc.nowFn = func() time.Time { return testClock }

	quest := activeQuest(1, testClock.Add(-time.Minute))
	student := newTestStudent(1)

	require.NoError(t, svc.CompleteQuest(quest, student))

	assert.True(t, student.HasAchievement("first_quest"))
	// 成就奖励币 + 任务奖励币
	assert.Equal(t, 3+5, student.Coins)
}

func TestCreateFromTemplateBumpsUsage(t *testing.T) {
	quests := newMemQuestStore()
	quests.givers[1] = &model.QuestGiver{Name: "Professor Hoot"}
	svc := newTestQuestService(&memStudentStore{}, quests)

	tpl, err := svc.CreateTemplate(10, TemplateRequest{
		Title:        "Weekly reading",
		Description:  "Read 20 pages",
		QuestGiverID: 1,
		Category:     model.CategoryLearner,
		XPReward:     30,
	})
	require.NoError(t, err)

	quest, err := svc.CreateFromTemplate(tpl.ID, 2, true, nil)
	require.NoError(t, err)

	assert.Equal(t, "Weekly reading", quest.Title)
	assert.Equal(t, uint(2), quest.ClassID)
	assert.Equal(t, 1, tpl.UsageCount)
}
