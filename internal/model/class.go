package model

// Class 班级，归属于一位教师，学生挂在班级下
// swagger:model Class
type Class struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	OwnerID  uint   `gorm:"index;type:bigint unsigned;not null" json:"ownerId"`
	JoinCode string `gorm:"size:36;uniqueIndex" json:"joinCode"`
}

func (Class) TableName() string {
	return "classes"
}
