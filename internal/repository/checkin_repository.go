package repository

import (
	"classroom_champions_backend/internal/model"
	"time"

	"gorm.io/gorm"
)

type CheckinRepository struct {
	DB *gorm.DB
}

// NewCheckinRepository 创建新的签到仓库实例
func NewCheckinRepository(db *gorm.DB) *CheckinRepository {
	return &CheckinRepository{DB: db}
}

// Create 创建新的签到记录
func (r *CheckinRepository) Create(checkin *model.Checkin) error {
	return r.DB.Create(checkin).Error
}

// FindByStudentAndDate 检查学生在指定日期是否已签到
func (r *CheckinRepository) FindByStudentAndDate(studentID uint, date time.Time) (*model.Checkin, error) {
	var checkin model.Checkin
	startOfDay := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	endOfDay := startOfDay.Add(24 * time.Hour).Add(-1 * time.Nanosecond)

	err := r.DB.Where("student_id = ? AND checkin_at BETWEEN ? AND ?", studentID, startOfDay, endOfDay).First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}

// FindLatestByStudent 获取学生最近的签到记录
func (r *CheckinRepository) FindLatestByStudent(studentID uint) (*model.Checkin, error) {
	var checkin model.Checkin
	err := r.DB.Where("student_id = ?", studentID).Order("checkin_at DESC").First(&checkin).Error
	if err != nil {
		return nil, err
	}
	return &checkin, nil
}
