package repository

import (
	"classroom_champions_backend/internal/model"

	"gorm.io/gorm"
)

type StudentRepository struct {
	DB *gorm.DB
}

func NewStudentRepository(db *gorm.DB) *StudentRepository {
	return &StudentRepository{DB: db}
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.DB.Create(student).Error
}

// FindByID 加载后立即归一化，保证字段齐整
func (r *StudentRepository) FindByID(id uint) (*model.Student, error) {
	var student model.Student
	if err := r.DB.First(&student, id).Error; err != nil {
		return nil, err
	}
	student.Normalize()
	return &student, nil
}

func (r *StudentRepository) FindByClass(classID uint) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Where("class_id = ?", classID).Order("last_name, first_name").Find(&students).Error
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].Normalize()
	}
	return students, nil
}

func (r *StudentRepository) FindByIDs(ids []uint) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Where("id IN ?", ids).Find(&students).Error
	if err != nil {
		return nil, err
	}
	for i := range students {
		students[i].Normalize()
	}
	return students, nil
}

func (r *StudentRepository) Save(student *model.Student) error {
	return r.DB.Save(student).Error
}

func (r *StudentRepository) Delete(student *model.Student) error {
	return r.DB.Delete(student).Error
}

func (r *StudentRepository) AppendLog(entry *model.PointLog) error {
	return r.DB.Create(entry).Error
}

func (r *StudentRepository) LogsByStudent(studentID uint, limit int) ([]model.PointLog, error) {
	var logs []model.PointLog
	err := r.DB.Where("student_id = ?", studentID).
		Order("created_at desc").
		Limit(limit).
		Find(&logs).Error
	return logs, err
}

func (r *StudentRepository) TopByXP(classID uint, limit int) ([]model.Student, error) {
	var students []model.Student
	err := r.DB.Where("class_id = ?", classID).
		Order("total_points DESC").
		Limit(limit).
		Find(&students).Error
	return students, err
}

// ResetWeekly 班级周计数清零，一条UPDATE完成
func (r *StudentRepository) ResetWeekly(classID uint) error {
	return r.DB.Model(&model.Student{}).
		Where("class_id = ?", classID).
		Updates(map[string]interface{}{
			"weekly_points":   0,
			"category_weekly": "{}",
		}).Error
}
