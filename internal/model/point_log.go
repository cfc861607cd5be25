package model

// PointLogType 流水类型
type PointLogType string

const (
	LogXP    PointLogType = "xp"
	LogCoins PointLogType = "coins"
)

// PointLog 学生加分/加币的只追加审计流水，记录前后总值
type PointLog struct {
	BaseModel
	StudentID uint         `gorm:"index;type:bigint unsigned;not null" json:"studentId"`
	Type      PointLogType `gorm:"size:10;not null" json:"type"`
	Category  Category     `gorm:"size:20" json:"category,omitempty"`
	Amount    int          `gorm:"not null" json:"amount"`
	Source    string       `gorm:"size:200" json:"source"` // manual/quest/achievement/item 等来源标记
	OldTotal  int          `gorm:"not null" json:"oldTotal"`
	NewTotal  int          `gorm:"not null" json:"newTotal"`
}

func (PointLog) TableName() string {
	return "point_logs"
}
