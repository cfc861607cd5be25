package service

import (
	"classroom_champions_backend/internal/config"
	"classroom_champions_backend/internal/model"
	"errors"
	"math/rand"
	"time"
)

// 测试用的内存实现，覆盖服务层依赖的窄接口

type memStudentStore struct {
	saves   int
	logs    []model.PointLog
	saveErr error
}

func (m *memStudentStore) Save(student *model.Student) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	return nil
}

func (m *memStudentStore) AppendLog(entry *model.PointLog) error {
	m.logs = append(m.logs, *entry)
	return nil
}

type stubPetRoster struct {
	templates []model.PetTemplate
}

func (s *stubPetRoster) PetTemplates() ([]model.PetTemplate, error) {
	return s.templates, nil
}

type stubAchievementCatalog struct {
	defs []model.AchievementDef
}

func (s *stubAchievementCatalog) AchievementDefs() ([]model.AchievementDef, error) {
	return s.defs, nil
}

type stubItemCatalog struct {
	byCategory map[model.ItemCategory][]model.ShopItem
}

func (s *stubItemCatalog) ActiveByCategory(cat model.ItemCategory) ([]model.ShopItem, error) {
	return s.byCategory[cat], nil
}

type memQuestStore struct {
	quests      []*model.Quest
	completions map[[2]uint]bool
	starts      map[[2]uint]bool
	givers      map[uint]*model.QuestGiver
	templates   map[uint]*model.QuestTemplate
	nextID      uint
}

func newMemQuestStore() *memQuestStore {
	return &memQuestStore{
		completions: map[[2]uint]bool{},
		starts:      map[[2]uint]bool{},
		givers:      map[uint]*model.QuestGiver{},
		templates:   map[uint]*model.QuestTemplate{},
	}
}

func (m *memQuestStore) Create(quest *model.Quest) error {
	m.nextID++
	quest.ID = m.nextID
	m.quests = append(m.quests, quest)
	return nil
}

func (m *memQuestStore) Save(quest *model.Quest) error { return nil }

func (m *memQuestStore) HasCompleted(questID, studentID uint) (bool, error) {
	return m.completions[[2]uint{questID, studentID}], nil
}

func (m *memQuestStore) CreateCompletion(c *model.QuestCompletion) error {
	key := [2]uint{c.QuestID, c.StudentID}
	if m.completions[key] {
		return errors.New("duplicate completion")
	}
	m.completions[key] = true
	return nil
}

func (m *memQuestStore) DeleteCompletion(questID, studentID uint) error {
	delete(m.completions, [2]uint{questID, studentID})
	return nil
}

func (m *memQuestStore) HasStarted(questID, studentID uint) (bool, error) {
	return m.starts[[2]uint{questID, studentID}], nil
}

func (m *memQuestStore) CreateStart(s *model.QuestStart) error {
	key := [2]uint{s.QuestID, s.StudentID}
	if m.starts[key] {
		return errors.New("duplicate start")
	}
	m.starts[key] = true
	return nil
}

func (m *memQuestStore) FindGiver(id uint) (*model.QuestGiver, error) {
	giver, ok := m.givers[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return giver, nil
}

func (m *memQuestStore) CreateTemplate(t *model.QuestTemplate) error {
	m.nextID++
	t.ID = m.nextID
	m.templates[t.ID] = t
	return nil
}

func (m *memQuestStore) FindTemplate(id uint) (*model.QuestTemplate, error) {
	tpl, ok := m.templates[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return tpl, nil
}

func (m *memQuestStore) SaveTemplate(t *model.QuestTemplate) error { return nil }

var testClock = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func testGame() config.GameConfig {
	return config.GameConfig{
		LevelThresholds: []int{0, 100, 250, 500},
		CoinsPerXP:      10,
		PetUnlockXP:     50,
		DailyCheckinXP:  5,
	}
}

func newTestProgression(store *memStudentStore, templates []model.PetTemplate, defs []model.AchievementDef) *ProgressionService {
	svc := NewProgressionService(store, &stubPetRoster{templates: templates}, &stubAchievementCatalog{defs: defs}, testGame())
	svc.rng = rand.New(rand.NewSource(1))
	svc.nowFn = func() time.Time { return testClock }
	return svc
}

func newTestStudent(id uint) *model.Student {
	s := model.NewStudent(1, "Ada", "Lovelace")
	s.ID = id
	return s
}
