package model

import "gorm.io/datatypes"

// ItemCategory 商品类别，封闭集合
type ItemCategory string

const (
	ItemAvatars     ItemCategory = "avatars"
	ItemPets        ItemCategory = "pets"
	ItemConsumables ItemCategory = "consumables"
	ItemRewards     ItemCategory = "rewards"
	ItemLootBoxes   ItemCategory = "lootboxes"
)

func ValidItemCategory(c ItemCategory) bool {
	switch c {
	case ItemAvatars, ItemPets, ItemConsumables, ItemRewards, ItemLootBoxes:
		return true
	}
	return false
}

// EffectKind 消耗品效果，内容录入时就定好类型和数值，
// 运行期不再解析效果字符串
type EffectKind string

const (
	EffectNone     EffectKind = "none"
	EffectXP       EffectKind = "xp"
	EffectCoins    EffectKind = "coins"
	EffectPetSpeed EffectKind = "pet_speed" // 数值为百分比加成
)

// LootBoxConfig 开箱配置：抽取次数 + 按权重的掉落表。
// 掉落只允许收藏类奖励，不允许货币，保证购买扣款恒等于标价
type LootBoxConfig struct {
	Count   int          `json:"count"`
	Rewards []LootWeight `json:"rewards"`
}

type LootWeight struct {
	Kind   string `json:"kind"` // pet | avatar | consumable
	Weight int    `json:"weight"`
}

func ValidLootKind(kind string) bool {
	switch kind {
	case "pet", "avatar", "consumable":
		return true
	}
	return false
}

// ShopItem 商城商品。头像类带AvatarBase，消耗品带结构化效果，
// 盲盒带LootBox配置
// swagger:model ShopItem
type ShopItem struct {
	BaseModel
	Name         string         `gorm:"size:100;not null" json:"name"`
	Description  string         `gorm:"size:255" json:"description"`
	Category     ItemCategory   `gorm:"size:20;index;not null" json:"category"`
	Price        int            `gorm:"not null" json:"price"`
	Image        string         `gorm:"size:255" json:"image"`
	AvatarBase   string         `gorm:"size:100" json:"avatarBase,omitempty"`
	PetName      string         `gorm:"size:100" json:"petName,omitempty"`
	PetImage     string         `gorm:"size:255" json:"petImage,omitempty"`
	EffectKind   EffectKind     `gorm:"size:20;default:'none'" json:"effectKind"`
	EffectAmount int            `gorm:"default:0" json:"effectAmount"`
	LootBox      datatypes.JSON `gorm:"type:json" json:"lootBox,omitempty"` // LootBoxConfig
	Active       bool           `gorm:"default:true" json:"active"`
}

func (ShopItem) TableName() string {
	return "shop_items"
}
