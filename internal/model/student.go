package model

import (
	"time"
)

// Category XP加分的行为类别，固定三个值
type Category string

const (
	CategoryRespectful  Category = "Respectful"
	CategoryResponsible Category = "Responsible"
	CategoryLearner     Category = "Learner"
)

var Categories = []Category{CategoryRespectful, CategoryResponsible, CategoryLearner}

func ValidCategory(c Category) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// CategoryPoints 按类别累计的XP，JSON列
type CategoryPoints map[Category]int

// OwnedItem 学生库存中的一件消耗品（购买时的物品快照）
type OwnedItem struct {
	ItemID       uint       `json:"itemId"`
	Name         string     `json:"name"`
	EffectKind   EffectKind `json:"effectKind"`
	EffectAmount int        `json:"effectAmount"`
	PurchasedAt  time.Time  `json:"purchasedAt"`
}

// PurchaseRecord 购买历史的规范化记录
type PurchaseRecord struct {
	ItemID   uint         `json:"itemId"`
	Name     string       `json:"name"`
	Category ItemCategory `json:"category"`
	Price    int          `json:"price"`
	At       time.Time    `json:"at"`
}

// UsageRecord 消耗品使用历史
type UsageRecord struct {
	ItemID       uint       `json:"itemId"`
	Name         string     `json:"name"`
	EffectKind   EffectKind `json:"effectKind"`
	EffectAmount int        `json:"effectAmount"`
	At           time.Time  `json:"at"`
}

// LootBoxRecord 一次开箱的完整结果
type LootBoxRecord struct {
	ItemID  uint         `json:"itemId"`
	Name    string       `json:"name"`
	At      time.Time    `json:"at"`
	Rewards []LootReward `json:"rewards"`
}

// LootReward 开箱掉落的单个奖励
type LootReward struct {
	Kind string `json:"kind"` // pet | avatar | consumable
	Name string `json:"name,omitempty"`
}

// Student 一名学生的全部游戏状态。集合类字段存JSON列，
// 加分流水单独落在 point_logs 表。
// swagger:model Student
type Student struct {
	BaseModel
	ClassID   uint   `gorm:"index;type:bigint unsigned;not null" json:"classId"`
	FirstName string `gorm:"size:100;not null" json:"firstName"`
	LastName  string `gorm:"size:100" json:"lastName"`

	// 进度
	TotalPoints    int            `gorm:"default:0" json:"totalPoints"`  // 累计XP，单调不减
	WeeklyPoints   int            `gorm:"default:0" json:"weeklyPoints"` // 每周清零
	Level          int            `gorm:"default:1" json:"level"`        // 由TotalPoints推导
	CategoryTotal  CategoryPoints `gorm:"serializer:json;type:json" json:"categoryTotal"`
	CategoryWeekly CategoryPoints `gorm:"serializer:json;type:json" json:"categoryWeekly"`

	// 经济
	Coins      int `gorm:"default:0" json:"coins"` // 奖励币，独立于XP换算的币
	CoinsSpent int `gorm:"default:0" json:"coinsSpent"`

	// 外观
	AvatarBase  string `gorm:"size:100" json:"avatarBase"`
	AvatarImage string `gorm:"size:255" json:"avatarImage"`

	// 收藏与历史（只追加）
	Inventory        []OwnedItem      `gorm:"serializer:json;type:json" json:"inventory"`
	OwnedAvatars     []string         `gorm:"serializer:json;type:json" json:"ownedAvatars"`
	OwnedPets        []Pet            `gorm:"serializer:json;type:json" json:"ownedPets"`
	Achievements     []string         `gorm:"serializer:json;type:json" json:"achievements"` // 成就code
	RewardsPurchased []PurchaseRecord `gorm:"serializer:json;type:json" json:"rewardsPurchased"`
	PurchaseHistory  []PurchaseRecord `gorm:"serializer:json;type:json" json:"purchaseHistory"`
	ItemUsageHistory []UsageRecord    `gorm:"serializer:json;type:json" json:"itemUsageHistory"`
	LootBoxHistory   []LootBoxRecord  `gorm:"serializer:json;type:json" json:"lootBoxHistory"`

	// 当前出战宠物，必须来自OwnedPets，可为空
	Pet *Pet `gorm:"serializer:json;type:json" json:"pet"`

	// 计数器
	QuestsCompleted int `gorm:"default:0" json:"questsCompleted"`
	LoginStreak     int `gorm:"default:0" json:"loginStreak"`
}

func (Student) TableName() string {
	return "students"
}

// Normalize 统一入口的归一化：补齐空map/slice，保证等级下限。
// 新建和从库加载后都要过这一遍，代替散落各处的默认值兜底。
func (s *Student) Normalize() {
	if s.CategoryTotal == nil {
		s.CategoryTotal = CategoryPoints{}
	}
	if s.CategoryWeekly == nil {
		s.CategoryWeekly = CategoryPoints{}
	}
	if s.Level < 1 {
		s.Level = 1
	}
	if s.TotalPoints < 0 {
		s.TotalPoints = 0
	}
}

// SpendableCoins 可用余额 = XP换算币 + 奖励币 - 已花费
func (s *Student) SpendableCoins(coinsPerXP int) int {
	if coinsPerXP <= 0 {
		return s.Coins - s.CoinsSpent
	}
	return s.TotalPoints/coinsPerXP + s.Coins - s.CoinsSpent
}

// HasAchievement 是否已获得指定code的成就
func (s *Student) HasAchievement(code string) bool {
	for _, c := range s.Achievements {
		if c == code {
			return true
		}
	}
	return false
}

// NewStudent 注册时创建全零状态的学生
func NewStudent(classID uint, firstName, lastName string) *Student {
	s := &Student{
		ClassID:   classID,
		FirstName: firstName,
		LastName:  lastName,
		Level:     1,
	}
	s.Normalize()
	return s
}
