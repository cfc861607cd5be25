package repository

import (
	"classroom_champions_backend/internal/model"

	"gorm.io/gorm"
)

type QuestRepository struct {
	DB *gorm.DB
}

func NewQuestRepository(db *gorm.DB) *QuestRepository {
	return &QuestRepository{DB: db}
}

func (r *QuestRepository) Create(quest *model.Quest) error {
	return r.DB.Create(quest).Error
}

func (r *QuestRepository) FindByID(id uint) (*model.Quest, error) {
	var quest model.Quest
	err := r.DB.Preload("Completions").Preload("Starts").First(&quest, id).Error
	if err != nil {
		return nil, err
	}
	return &quest, nil
}

func (r *QuestRepository) FindByClass(classID uint) ([]model.Quest, error) {
	var quests []model.Quest
	err := r.DB.Preload("Completions").
		Where("class_id = ?", classID).
		Order("created_at desc").
		Find(&quests).Error
	return quests, err
}

func (r *QuestRepository) Save(quest *model.Quest) error {
	return r.DB.Omit("Completions", "Starts").Save(quest).Error
}

func (r *QuestRepository) HasCompleted(questID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuestCompletion{}).
		Where("quest_id = ? AND student_id = ?", questID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *QuestRepository) CreateCompletion(c *model.QuestCompletion) error {
	return r.DB.Create(c).Error
}

func (r *QuestRepository) DeleteCompletion(questID, studentID uint) error {
	return r.DB.Unscoped().
		Where("quest_id = ? AND student_id = ?", questID, studentID).
		Delete(&model.QuestCompletion{}).Error
}

func (r *QuestRepository) HasStarted(questID, studentID uint) (bool, error) {
	var count int64
	err := r.DB.Model(&model.QuestStart{}).
		Where("quest_id = ? AND student_id = ?", questID, studentID).
		Count(&count).Error
	return count > 0, err
}

func (r *QuestRepository) CreateStart(s *model.QuestStart) error {
	return r.DB.Create(s).Error
}

func (r *QuestRepository) FindGiver(id uint) (*model.QuestGiver, error) {
	var giver model.QuestGiver
	err := r.DB.First(&giver, id).Error
	if err != nil {
		return nil, err
	}
	return &giver, nil
}

func (r *QuestRepository) AllGivers() ([]model.QuestGiver, error) {
	var givers []model.QuestGiver
	err := r.DB.Order("id").Find(&givers).Error
	return givers, err
}

func (r *QuestRepository) CreateTemplate(t *model.QuestTemplate) error {
	return r.DB.Create(t).Error
}

func (r *QuestRepository) FindTemplate(id uint) (*model.QuestTemplate, error) {
	var tpl model.QuestTemplate
	err := r.DB.First(&tpl, id).Error
	if err != nil {
		return nil, err
	}
	return &tpl, nil
}

func (r *QuestRepository) TemplatesByOwner(ownerID uint) ([]model.QuestTemplate, error) {
	var tpls []model.QuestTemplate
	err := r.DB.Where("owner_id = ?", ownerID).Order("created_at desc").Find(&tpls).Error
	return tpls, err
}

func (r *QuestRepository) SaveTemplate(t *model.QuestTemplate) error {
	return r.DB.Save(t).Error
}

func (r *QuestRepository) DeleteTemplate(id uint) error {
	return r.DB.Delete(&model.QuestTemplate{}, id).Error
}
