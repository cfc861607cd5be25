package model

import "time"

type QuestStatus string

const (
	QuestActive   QuestStatus = "active"
	QuestArchived QuestStatus = "archived"
)

// QuestGiver 静态任务发布者目录（NPC），仅做展示用途
type QuestGiver struct {
	BaseModel
	Name      string `gorm:"size:100;not null" json:"name"`
	Image     string `gorm:"size:255" json:"image"`
	Specialty string `gorm:"size:100" json:"specialty"`
}

func (QuestGiver) TableName() string {
	return "quest_givers"
}

// Quest 一个可指派的任务实例。过期是读取时判断，不做状态迁移
// swagger:model Quest
type Quest struct {
	BaseModel
	ClassID      uint     `gorm:"index;type:bigint unsigned;not null" json:"classId"`
	Title        string   `gorm:"size:200;not null" json:"title"`
	Description  string   `gorm:"size:500" json:"description"`
	QuestGiverID uint     `gorm:"index;type:bigint unsigned;not null" json:"questGiverId"`
	Category     Category `gorm:"size:20;not null" json:"category"`
	XPReward     int      `gorm:"default:0" json:"xpReward"`
	CoinReward   int      `gorm:"default:0" json:"coinReward"`

	// 指派范围：班级任务和定向名单互斥
	IsClassQuest   bool   `gorm:"default:false" json:"isClassQuest"`
	TargetStudents []uint `gorm:"serializer:json;type:json" json:"targetStudents"`

	DurationHours int         `gorm:"default:24" json:"durationHours"`
	ExpiresAt     time.Time   `gorm:"not null" json:"expiresAt"`
	Status        QuestStatus `gorm:"size:20;default:'active'" json:"status"`

	TimesCompleted           int     `gorm:"default:0" json:"timesCompleted"`
	AverageCompletionMinutes float64 `gorm:"default:0" json:"averageCompletionMinutes"`

	Completions []QuestCompletion `gorm:"foreignKey:QuestID" json:"completions,omitempty"`
	Starts      []QuestStart      `gorm:"foreignKey:QuestID" json:"starts,omitempty"`
}

func (Quest) TableName() string {
	return "quests"
}

// Expired 读取时计算的软过期
func (q *Quest) Expired(now time.Time) bool {
	return now.After(q.ExpiresAt)
}

// CompletedBy 学生是否已出现在完成名单里（需预加载Completions）
func (q *Quest) CompletedBy(studentID uint) bool {
	for _, c := range q.Completions {
		if c.StudentID == studentID {
			return true
		}
	}
	return false
}

// Targets 任务对该学生是否可见：班级任务、未定向、或名单内
func (q *Quest) Targets(studentID uint) bool {
	if q.IsClassQuest || len(q.TargetStudents) == 0 {
		return true
	}
	for _, id := range q.TargetStudents {
		if id == studentID {
			return true
		}
	}
	return false
}

// QuestCompletion 完成台账，(quest, student) 唯一索引保证一人一次
type QuestCompletion struct {
	BaseModel
	QuestID           uint      `gorm:"uniqueIndex:idx_quest_student;type:bigint unsigned;not null" json:"questId"`
	StudentID         uint      `gorm:"uniqueIndex:idx_quest_student;type:bigint unsigned;not null" json:"studentId"`
	CompletedAt       time.Time `gorm:"not null" json:"completedAt"`
	XPAwarded         int       `gorm:"default:0" json:"xpAwarded"`
	CoinsAwarded      int       `gorm:"default:0" json:"coinsAwarded"`
	CompletionMinutes float64   `gorm:"default:0" json:"completionMinutes"`
}

func (QuestCompletion) TableName() string {
	return "quest_completions"
}

// QuestStart 开始台账，重复开始按无操作成功处理
type QuestStart struct {
	BaseModel
	QuestID   uint      `gorm:"uniqueIndex:idx_quest_start;type:bigint unsigned;not null" json:"questId"`
	StudentID uint      `gorm:"uniqueIndex:idx_quest_start;type:bigint unsigned;not null" json:"studentId"`
	StartedAt time.Time `gorm:"not null" json:"startedAt"`
}

func (QuestStart) TableName() string {
	return "quest_starts"
}

// QuestTemplate 可复用的任务蓝本，只复制不消耗
// swagger:model QuestTemplate
type QuestTemplate struct {
	BaseModel
	OwnerID       uint     `gorm:"index;type:bigint unsigned" json:"ownerId"`
	Title         string   `gorm:"size:200;not null" json:"title"`
	Description   string   `gorm:"size:500" json:"description"`
	QuestGiverID  uint     `gorm:"type:bigint unsigned;not null" json:"questGiverId"`
	Category      Category `gorm:"size:20;not null" json:"category"`
	XPReward      int      `gorm:"default:0" json:"xpReward"`
	CoinReward    int      `gorm:"default:0" json:"coinReward"`
	DurationHours int      `gorm:"default:24" json:"durationHours"`
	UsageCount    int      `gorm:"default:0" json:"usageCount"`
}

func (QuestTemplate) TableName() string {
	return "quest_templates"
}
