package service

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/util"
	"classroom_champions_backend/pkg/monitoring"
	"strings"
	"time"
)

// QuestStore 任务台账的持久化接口
type QuestStore interface {
	Create(quest *model.Quest) error
	Save(quest *model.Quest) error
	HasCompleted(questID, studentID uint) (bool, error)
	CreateCompletion(c *model.QuestCompletion) error
	DeleteCompletion(questID, studentID uint) error
	HasStarted(questID, studentID uint) (bool, error)
	CreateStart(s *model.QuestStart) error
	FindGiver(id uint) (*model.QuestGiver, error)
	CreateTemplate(t *model.QuestTemplate) error
	FindTemplate(id uint) (*model.QuestTemplate, error)
	SaveTemplate(t *model.QuestTemplate) error
}

// QuestService 任务生命周期与奖励发放
type QuestService struct {
	Quests      QuestStore
	Students    StudentStore
	Progression *ProgressionService

	nowFn func() time.Time
}

func NewQuestService(quests QuestStore, students StudentStore, progression *ProgressionService) *QuestService {
	return &QuestService{
		Quests:      quests,
		Students:    students,
		Progression: progression,
		nowFn:       time.Now,
	}
}

// QuestRequest 创建任务的入参
type QuestRequest struct {
	ClassID        uint           `json:"classId" binding:"required"`
	Title          string         `json:"title" binding:"required"`
	Description    string         `json:"description" binding:"required"`
	QuestGiverID   uint           `json:"questGiverId" binding:"required"`
	Category       model.Category `json:"category" binding:"required"`
	XPReward       int            `json:"xpReward"`
	CoinReward     int            `json:"coinReward"`
	IsClassQuest   bool           `json:"isClassQuest"`
	TargetStudents []uint         `json:"targetStudents"`
	DurationHours  int            `json:"durationHours"`
}

// CreateQuest 校验标题/描述/发布者，奖励归一化为非负整数，
// expiresAt = now + duration
func (s *QuestService) CreateQuest(req QuestRequest) (*model.Quest, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, util.ErrInvalidArgument
	}
	if !model.ValidCategory(req.Category) {
		return nil, util.ErrInvalidCategory
	}
	if _, err := s.Quests.FindGiver(req.QuestGiverID); err != nil {
		return nil, util.ErrQuestGiverNotFound
	}

	if req.XPReward < 0 {
		req.XPReward = 0
	}
	if req.CoinReward < 0 {
		req.CoinReward = 0
	}
	if req.DurationHours <= 0 {
		req.DurationHours = 24
	}
	// 班级任务不保留定向名单
	if req.IsClassQuest {
		req.TargetStudents = nil
	}

	now := s.nowFn()
	quest := &model.Quest{
		ClassID:        req.ClassID,
		Title:          strings.TrimSpace(req.Title),
		Description:    strings.TrimSpace(req.Description),
		QuestGiverID:   req.QuestGiverID,
		Category:       req.Category,
		XPReward:       req.XPReward,
		CoinReward:     req.CoinReward,
		IsClassQuest:   req.IsClassQuest,
		TargetStudents: req.TargetStudents,
		DurationHours:  req.DurationHours,
		ExpiresAt:      now.Add(time.Duration(req.DurationHours) * time.Hour),
		Status:         model.QuestActive,
	}
	quest.CreatedAt = now

	if err := s.Quests.Create(quest); err != nil {
		return nil, err
	}
	return quest, nil
}

// CreateFromTemplate 蓝本只复制不消耗，使用计数+1
func (s *QuestService) CreateFromTemplate(templateID, classID uint, isClassQuest bool, targetStudents []uint) (*model.Quest, error) {
	tpl, err := s.Quests.FindTemplate(templateID)
	if err != nil {
		return nil, util.ErrQuestNotFound
	}

	quest, err := s.CreateQuest(QuestRequest{
		ClassID:        classID,
		Title:          tpl.Title,
		Description:    tpl.Description,
		QuestGiverID:   tpl.QuestGiverID,
		Category:       tpl.Category,
		XPReward:       tpl.XPReward,
		CoinReward:     tpl.CoinReward,
		IsClassQuest:   isClassQuest,
		TargetStudents: targetStudents,
		DurationHours:  tpl.DurationHours,
	})
	if err != nil {
		return nil, err
	}

	tpl.UsageCount++
	if err := s.Quests.SaveTemplate(tpl); err != nil {
		return nil, err
	}
	return quest, nil
}

// CompleteQuest 按顺序检查：激活状态、是否已完成、是否过期；
// 通过后发奖并记台账。每个(任务,学生)只结算一次
func (s *QuestService) CompleteQuest(quest *model.Quest, student *model.Student) error {
	if quest.Status != model.QuestActive {
		return util.ErrQuestInactive
	}

	done, err := s.Quests.HasCompleted(quest.ID, student.ID)
	if err != nil {
		return err
	}
	if done {
		return util.ErrQuestAlreadyCompleted
	}

	now := s.nowFn()
	if quest.Expired(now) {
		return util.ErrQuestExpired
	}

	// 完成台账先落库，唯一索引兜底并发情况下的重复结算
	minutes := now.Sub(quest.CreatedAt).Minutes()
	if err := s.Quests.CreateCompletion(&model.QuestCompletion{
		QuestID:           quest.ID,
		StudentID:         student.ID,
		CompletedAt:       now,
		XPAwarded:         quest.XPReward,
		CoinsAwarded:      quest.CoinReward,
		CompletionMinutes: minutes,
	}); err != nil {
		return err
	}

	if err := s.awardQuestRewards(quest, student); err != nil {
		// 发奖失败时撤掉完成台账，下次结算可以重试
		_ = s.Quests.DeleteCompletion(quest.ID, student.ID)
		return err
	}

	// 滚动平均
	n := float64(quest.TimesCompleted)
	quest.AverageCompletionMinutes = (quest.AverageCompletionMinutes*n + minutes) / (n + 1)
	quest.TimesCompleted++
	quest.Completions = append(quest.Completions, model.QuestCompletion{
		QuestID:     quest.ID,
		StudentID:   student.ID,
		CompletedAt: now,
	})

	monitoring.QuestsCompleted.Inc()

	return s.Quests.Save(quest)
}

// awardQuestRewards 计数先行，让 quests_completed 类成就
// 在本次结算里就能判定
func (s *QuestService) awardQuestRewards(quest *model.Quest, student *model.Student) error {
	student.QuestsCompleted++

	if quest.XPReward > 0 {
		if err := s.Progression.AwardXP(student, quest.Category, quest.XPReward, "quest:"+quest.Title); err != nil {
			student.QuestsCompleted--
			return err
		}
	}
	if quest.CoinReward > 0 {
		if err := s.Progression.AwardCoins(student, quest.CoinReward, "quest:"+quest.Title); err != nil {
			return err
		}
	}
	return s.Students.Save(student)
}

// ClassCompletionResult 整班结算的成功/失败明细
type ClassCompletionResult struct {
	Completed []uint          `json:"completed"`
	Errors    map[uint]string `json:"errors,omitempty"`
}

// CompleteQuestForClass 逐个学生结算，单个失败（如已完成）不中断
func (s *QuestService) CompleteQuestForClass(quest *model.Quest, students []*model.Student) ClassCompletionResult {
	result := ClassCompletionResult{Errors: map[uint]string{}}
	for _, student := range students {
		if err := s.CompleteQuest(quest, student); err != nil {
			result.Errors[student.ID] = err.Error()
			continue
		}
		result.Completed = append(result.Completed, student.ID)
	}
	if len(result.Errors) == 0 {
		result.Errors = nil
	}
	return result
}

// StartQuest 开始台账，重复开始按无操作成功处理
func (s *QuestService) StartQuest(quest *model.Quest, student *model.Student) error {
	if quest.Status != model.QuestActive {
		return util.ErrQuestInactive
	}
	if quest.Expired(s.nowFn()) {
		return util.ErrQuestExpired
	}

	started, err := s.Quests.HasStarted(quest.ID, student.ID)
	if err != nil {
		return err
	}
	if started {
		return nil
	}

	return s.Quests.CreateStart(&model.QuestStart{
		QuestID:   quest.ID,
		StudentID: student.ID,
		StartedAt: s.nowFn(),
	})
}

// AvailableQuests 纯过滤：激活、未过期、本人未完成、且对本人可见
func (s *QuestService) AvailableQuests(quests []model.Quest, student *model.Student) []model.Quest {
	now := s.nowFn()
	available := make([]model.Quest, 0, len(quests))
	for _, q := range quests {
		if q.Status != model.QuestActive || q.Expired(now) {
			continue
		}
		if q.CompletedBy(student.ID) {
			continue
		}
		if !q.Targets(student.ID) {
			continue
		}
		available = append(available, q)
	}
	return available
}

// TemplateRequest 任务蓝本入参
type TemplateRequest struct {
	Title         string         `json:"title" binding:"required"`
	Description   string         `json:"description" binding:"required"`
	QuestGiverID  uint           `json:"questGiverId" binding:"required"`
	Category      model.Category `json:"category" binding:"required"`
	XPReward      int            `json:"xpReward"`
	CoinReward    int            `json:"coinReward"`
	DurationHours int            `json:"durationHours"`
}

func (s *QuestService) CreateTemplate(ownerID uint, req TemplateRequest) (*model.QuestTemplate, error) {
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" {
		return nil, util.ErrInvalidArgument
	}
	if !model.ValidCategory(req.Category) {
		return nil, util.ErrInvalidCategory
	}
	if _, err := s.Quests.FindGiver(req.QuestGiverID); err != nil {
		return nil, util.ErrQuestGiverNotFound
	}
	if req.XPReward < 0 {
		req.XPReward = 0
	}
	if req.CoinReward < 0 {
		req.CoinReward = 0
	}
	if req.DurationHours <= 0 {
		req.DurationHours = 24
	}

	tpl := &model.QuestTemplate{
		OwnerID:       ownerID,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		QuestGiverID:  req.QuestGiverID,
		Category:      req.Category,
		XPReward:      req.XPReward,
		CoinReward:    req.CoinReward,
		DurationHours: req.DurationHours,
	}
	if err := s.Quests.CreateTemplate(tpl); err != nil {
		return nil, err
	}
	return tpl, nil
}
