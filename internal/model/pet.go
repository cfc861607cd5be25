package model

import "time"

// Pet 学生拥有的一只宠物实例，整只以JSON存在学生记录里
type Pet struct {
	TemplateID uint      `json:"templateId"`
	Name       string    `json:"name"`
	Image      string    `json:"image"`
	Speed      float64   `json:"speed"`
	Wins       int       `json:"wins"`
	UnlockedAt time.Time `json:"unlockedAt"`
}

// PetTemplate 静态宠物图鉴，解锁和开箱时从中随机抽取
type PetTemplate struct {
	BaseModel
	Name      string  `gorm:"size:100;not null" json:"name"`
	Image     string  `gorm:"size:255" json:"image"`
	BaseSpeed float64 `gorm:"default:1.0" json:"baseSpeed"`
}

func (PetTemplate) TableName() string {
	return "pet_templates"
}

// NewPet 以图鉴为模板构造宠物实例
func NewPet(tpl *PetTemplate, at time.Time) Pet {
	speed := tpl.BaseSpeed
	if speed <= 0 {
		speed = 1.0
	}
	return Pet{
		TemplateID: tpl.ID,
		Name:       tpl.Name,
		Image:      tpl.Image,
		Speed:      speed,
		Wins:       0,
		UnlockedAt: at,
	}
}
