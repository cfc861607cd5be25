package model

// ConditionKind 成就判定条件的类型
type ConditionKind string

const (
	ConditionLevel           ConditionKind = "level"
	ConditionPetsOwned       ConditionKind = "pets_owned"
	ConditionQuestsCompleted ConditionKind = "quests_completed"
	ConditionCategoryTotal   ConditionKind = "category_total"
	ConditionTotalPoints     ConditionKind = "total_points"
	ConditionLoginStreak     ConditionKind = "login_streak"
)

// AchievementDef 静态成就目录。奖励可以是奖励币和/或Learner类别的
// 追加XP；成就本身不会再触发成就
// swagger:model AchievementDef
type AchievementDef struct {
	BaseModel
	Code        string        `gorm:"size:50;uniqueIndex;not null" json:"code"`
	Name        string        `gorm:"size:100;not null" json:"name"`
	Description string        `gorm:"size:255" json:"description"`
	Icon        string        `gorm:"size:255" json:"icon"`
	Condition   ConditionKind `gorm:"size:30;not null" json:"condition"`
	Category    Category      `gorm:"size:20" json:"category,omitempty"` // condition=category_total 时生效
	Threshold   int           `gorm:"not null" json:"threshold"`
	BonusCoins  int           `gorm:"default:0" json:"bonusCoins"`
	BonusXP     int           `gorm:"default:0" json:"bonusXp"`
	Enabled     bool          `gorm:"default:true" json:"enabled"`
}

func (AchievementDef) TableName() string {
	return "achievement_defs"
}

// Satisfied 判定条件是否在学生当前状态下成立
func (d *AchievementDef) Satisfied(s *Student) bool {
	switch d.Condition {
	case ConditionLevel:
		return s.Level >= d.Threshold
	case ConditionPetsOwned:
		return len(s.OwnedPets) >= d.Threshold
	case ConditionQuestsCompleted:
		return s.QuestsCompleted >= d.Threshold
	case ConditionCategoryTotal:
		return s.CategoryTotal[d.Category] >= d.Threshold
	case ConditionTotalPoints:
		return s.TotalPoints >= d.Threshold
	case ConditionLoginStreak:
		return s.LoginStreak >= d.Threshold
	}
	return false
}
