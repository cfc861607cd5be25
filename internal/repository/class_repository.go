package repository

import (
	"classroom_champions_backend/internal/model"

	"gorm.io/gorm"
)

type ClassRepository struct {
	DB *gorm.DB
}

func NewClassRepository(db *gorm.DB) *ClassRepository {
	return &ClassRepository{DB: db}
}

func (r *ClassRepository) Create(class *model.Class) error {
	return r.DB.Create(class).Error
}

func (r *ClassRepository) FindByID(id uint) (*model.Class, error) {
	var class model.Class
	err := r.DB.First(&class, id).Error
	return &class, err
}

func (r *ClassRepository) FindByOwner(ownerID uint) ([]model.Class, error) {
	var classes []model.Class
	err := r.DB.Where("owner_id = ?", ownerID).Order("created_at desc").Find(&classes).Error
	return classes, err
}

func (r *ClassRepository) FindByJoinCode(code string) (*model.Class, error) {
	var class model.Class
	err := r.DB.Where("join_code = ?", code).First(&class).Error
	return &class, err
}

func (r *ClassRepository) Update(class *model.Class) error {
	return r.DB.Save(class).Error
}

func (r *ClassRepository) AllIDs() ([]uint, error) {
	var ids []uint
	err := r.DB.Model(&model.Class{}).Pluck("id", &ids).Error
	return ids, err
}
