package model

import (
	"time"
)

// Checkin 学生每日签到记录，连续天数驱动login_streak成就
// swagger:model Checkin
type Checkin struct {
	BaseModel
	StudentID  uint      `gorm:"index;type:bigint unsigned;not null"`
	CheckinAt  time.Time `gorm:"not null;index:idx_student_checkin_date"`
	StreakDays int       `gorm:"default:1"` // 连续签到天数
}

func (Checkin) TableName() string {
	return "checkins"
}
