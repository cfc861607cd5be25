package service

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/util"
	"classroom_champions_backend/pkg/monitoring"
	"encoding/json"
	"math/rand"
	"time"
)

// ItemCatalog 商城目录访问，开箱掉落需要按类别取备选
type ItemCatalog interface {
	ActiveByCategory(cat model.ItemCategory) ([]model.ShopItem, error)
}

// XPAwarder 消耗品的XP效果回流到进度引擎，升级/成就照常触发
type XPAwarder interface {
	AwardXP(student *model.Student, category model.Category, amount int, source string) error
}

// ShopService 按可用余额把关购买和消耗品使用
type ShopService struct {
	Students    StudentStore
	Items       ItemCatalog
	Pets        PetRoster
	Progression XPAwarder
	CoinsPerXP  int

	rng   *rand.Rand
	nowFn func() time.Time
}

func NewShopService(students StudentStore, items ItemCatalog, pets PetRoster, progression XPAwarder, coinsPerXP int) *ShopService {
	return &ShopService{
		Students:    students,
		Items:       items,
		Pets:        pets,
		Progression: progression,
		CoinsPerXP:  coinsPerXP,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
		nowFn:       time.Now,
	}
}

// ProcessPurchase 余额不足直接拒绝且不产生任何变更；成功后
// 可用余额恰好减少 item.Price
func (s *ShopService) ProcessPurchase(student *model.Student, item *model.ShopItem) error {
	if !model.ValidItemCategory(item.Category) {
		return util.ErrInvalidArgument
	}
	if student.SpendableCoins(s.CoinsPerXP) < item.Price {
		return util.ErrInsufficientFunds
	}

	now := s.nowFn()

	switch item.Category {
	case model.ItemAvatars:
		first := len(student.OwnedAvatars) == 0
		student.OwnedAvatars = append(student.OwnedAvatars, item.AvatarBase)
		// 第一件外观自动装备
		if first {
			student.AvatarBase = item.AvatarBase
			student.AvatarImage = AvatarImage(item.AvatarBase, student.Level)
		}

	case model.ItemPets:
		pet := model.Pet{
			TemplateID: item.ID,
			Name:       item.PetName,
			Image:      item.PetImage,
			Speed:      1.0,
			Wins:       0,
			UnlockedAt: now,
		}
		student.OwnedPets = append(student.OwnedPets, pet)
		if student.Pet == nil {
			student.Pet = &pet
		}

	case model.ItemConsumables:
		student.Inventory = append(student.Inventory, model.OwnedItem{
			ItemID:       item.ID,
			Name:         item.Name,
			EffectKind:   item.EffectKind,
			EffectAmount: item.EffectAmount,
			PurchasedAt:  now,
		})

	case model.ItemRewards:
		student.RewardsPurchased = append(student.RewardsPurchased, model.PurchaseRecord{
			ItemID:   item.ID,
			Name:     item.Name,
			Category: item.Category,
			Price:    item.Price,
			At:       now,
		})

	case model.ItemLootBoxes:
		if err := s.openLootBox(student, item, now); err != nil {
			return err
		}
	}

	student.PurchaseHistory = append(student.PurchaseHistory, model.PurchaseRecord{
		ItemID:   item.ID,
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price,
		At:       now,
	})
	student.CoinsSpent += item.Price

	monitoring.PurchasesProcessed.WithLabelValues(string(item.Category)).Inc()

	return s.Students.Save(student)
}

// openLootBox 按配置的权重表抽取奖励包，逐个按单独购买的方式
// 入账，再整包记进开箱历史。掉落只进收藏不发货币，
// 购买后可用余额恰好减少标价
func (s *ShopService) openLootBox(student *model.Student, item *model.ShopItem, now time.Time) error {
	var cfg model.LootBoxConfig
	if len(item.LootBox) > 0 {
		if err := json.Unmarshal(item.LootBox, &cfg); err != nil {
			return util.ErrInvalidArgument
		}
	}
	if cfg.Count <= 0 || len(cfg.Rewards) == 0 {
		return util.ErrInvalidArgument
	}

	record := model.LootBoxRecord{ItemID: item.ID, Name: item.Name, At: now}

	for i := 0; i < cfg.Count; i++ {
		pick := s.drawWeighted(cfg.Rewards)

		switch pick.Kind {
		case "pet":
			templates, err := s.Pets.PetTemplates()
			if err != nil || len(templates) == 0 {
				continue
			}
			tpl := templates[s.rng.Intn(len(templates))]
			pet := model.NewPet(&tpl, now)
			student.OwnedPets = append(student.OwnedPets, pet)
			if student.Pet == nil {
				student.Pet = &pet
			}
			record.Rewards = append(record.Rewards, model.LootReward{Kind: "pet", Name: pet.Name})

		case "avatar":
			items, err := s.Items.ActiveByCategory(model.ItemAvatars)
			if err != nil || len(items) == 0 {
				continue
			}
			won := items[s.rng.Intn(len(items))]
			student.OwnedAvatars = append(student.OwnedAvatars, won.AvatarBase)
			record.Rewards = append(record.Rewards, model.LootReward{Kind: "avatar", Name: won.Name})

		case "consumable":
			items, err := s.Items.ActiveByCategory(model.ItemConsumables)
			if err != nil || len(items) == 0 {
				continue
			}
			won := items[s.rng.Intn(len(items))]
			student.Inventory = append(student.Inventory, model.OwnedItem{
				ItemID:       won.ID,
				Name:         won.Name,
				EffectKind:   won.EffectKind,
				EffectAmount: won.EffectAmount,
				PurchasedAt:  now,
			})
			record.Rewards = append(record.Rewards, model.LootReward{Kind: "consumable", Name: won.Name})
		}
	}

	student.LootBoxHistory = append(student.LootBoxHistory, record)
	return nil
}

func (s *ShopService) drawWeighted(rewards []model.LootWeight) model.LootWeight {
	total := 0
	for _, r := range rewards {
		if r.Weight > 0 {
			total += r.Weight
		}
	}
	if total <= 0 {
		return rewards[0]
	}

	roll := s.rng.Intn(total)
	for _, r := range rewards {
		if r.Weight <= 0 {
			continue
		}
		roll -= r.Weight
		if roll < 0 {
			return r
		}
	}
	return rewards[len(rewards)-1]
}

// UseConsumable 使用库存中的一件消耗品：应用结构化效果、
// 精确移除一件、记入使用历史
func (s *ShopService) UseConsumable(student *model.Student, itemID uint) error {
	idx := -1
	for i, owned := range student.Inventory {
		if owned.ItemID == itemID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return util.ErrInvalidItem
	}

	owned := student.Inventory[idx]
	student.Inventory = append(student.Inventory[:idx], student.Inventory[idx+1:]...)
	student.ItemUsageHistory = append(student.ItemUsageHistory, model.UsageRecord{
		ItemID:       owned.ItemID,
		Name:         owned.Name,
		EffectKind:   owned.EffectKind,
		EffectAmount: owned.EffectAmount,
		At:           s.nowFn(),
	})

	switch owned.EffectKind {
	case model.EffectXP:
		if err := s.Progression.AwardXP(student, model.CategoryLearner, owned.EffectAmount, "item:"+owned.Name); err != nil {
			return err
		}
	case model.EffectCoins:
		student.Coins += owned.EffectAmount
	case model.EffectPetSpeed:
		if student.Pet != nil {
			student.Pet.Speed *= 1 + float64(owned.EffectAmount)/100
		}
	}
	// EffectNone：照常消耗，不产生数值效果

	return s.Students.Save(student)
}
