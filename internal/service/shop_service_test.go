package service

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/util"
	"encoding/json"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShop(store *memStudentStore, catalog *stubItemCatalog, templates []model.PetTemplate) *ShopService {
	progression := newTestProgression(store, templates, nil)
	svc := NewShopService(store, catalog, &stubPetRoster{templates: templates}, progression, 10)
	svc.rng = rand.New(rand.NewSource(1))
	svc.nowFn = func() time.Time { return testClock }
	return svc
}

func emptyCatalog() *stubItemCatalog {
	return &stubItemCatalog{byCategory: map[model.ItemCategory][]model.ShopItem{}}
}

func TestPurchaseInsufficientFunds(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestShop(store, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.TotalPoints = 500 // 500/10 = 50 币
	item := &model.ShopItem{Name: "Golden Crown", Category: model.ItemAvatars, Price: 60, AvatarBase: "crown"}

	err := svc.ProcessPurchase(student, item)
	assert.ErrorIs(t, err, util.ErrInsufficientFunds)
	assert.Equal(t, 0, student.CoinsSpent)
	assert.Empty(t, student.OwnedAvatars)
	assert.Empty(t, student.PurchaseHistory)
	assert.Equal(t, 0, store.saves)
}

func TestPurchaseExactPrice(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestShop(store, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.TotalPoints = 500
	item := &model.ShopItem{Name: "Golden Crown", Category: model.ItemAvatars, Price: 50, AvatarBase: "crown"}

	require.NoError(t, svc.ProcessPurchase(student, item))
	assert.Equal(t, 0, student.SpendableCoins(10))
	assert.Equal(t, 50, student.CoinsSpent)
	require.Len(t, student.PurchaseHistory, 1)
	assert.Equal(t, "Golden Crown", student.PurchaseHistory[0].Name)
}

func TestPurchaseFirstAvatarAutoEquips(t *testing.T) {
	svc := newTestShop(&memStudentStore{}, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.TotalPoints = 1000
	student.Level = 4

	crown := &model.ShopItem{Name: "Golden Crown", Category: model.ItemAvatars, Price: 10, AvatarBase: "crown"}
	cape := &model.ShopItem{Name: "Red Cape", Category: model.ItemAvatars, Price: 10, AvatarBase: "cape"}

	require.NoError(t, svc.ProcessPurchase(student, crown))
	assert.Equal(t, "crown", student.AvatarBase)
	assert.Equal(t, "avatars/crown/level_4.png", student.AvatarImage)

	// 第二件只入收藏，不改变当前装扮
	require.NoError(t, svc.ProcessPurchase(student, cape))
	assert.Equal(t, "crown", student.AvatarBase)
	assert.Equal(t, []string{"crown", "cape"}, student.OwnedAvatars)
}

func TestPurchasePetEquipsWhenNone(t *testing.T) {
	svc := newTestShop(&memStudentStore{}, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.Coins = 100

	item := &model.ShopItem{Name: "Shop Dragon", Category: model.ItemPets, Price: 30, PetName: "Smoky"}
	item.ID = 7

	require.NoError(t, svc.ProcessPurchase(student, item))
	require.NotNil(t, student.Pet)
	assert.Equal(t, "Smoky", student.Pet.Name)
	assert.Equal(t, 1.0, student.Pet.Speed)
	assert.Len(t, student.OwnedPets, 1)
}

func TestUseConsumableXPEffect(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestShop(store, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.Inventory = []model.OwnedItem{
		{ItemID: 3, Name: "XP Potion", EffectKind: model.EffectXP, EffectAmount: 25},
	}

	require.NoError(t, svc.UseConsumable(student, 3))

	assert.Empty(t, student.Inventory)
	require.Len(t, student.ItemUsageHistory, 1)
	assert.Equal(t, 25, student.TotalPoints)
	assert.Equal(t, 25, student.CategoryTotal[model.CategoryLearner])
}

func TestUseConsumableRemovesOneInstance(t *testing.T) {
	svc := newTestShop(&memStudentStore{}, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.Inventory = []model.OwnedItem{
		{ItemID: 3, Name: "XP Potion", EffectKind: model.EffectNone},
		{ItemID: 3, Name: "XP Potion", EffectKind: model.EffectNone},
	}

	require.NoError(t, svc.UseConsumable(student, 3))
	assert.Len(t, student.Inventory, 1)
}

func TestUseConsumableNotOwned(t *testing.T) {
	svc := newTestShop(&memStudentStore{}, emptyCatalog(), nil)
	student := newTestStudent(1)

	err := svc.UseConsumable(student, 99)
	assert.ErrorIs(t, err, util.ErrInvalidItem)
	assert.Empty(t, student.ItemUsageHistory)
}

func TestUseConsumablePetSpeed(t *testing.T) {
	svc := newTestShop(&memStudentStore{}, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.Pet = &model.Pet{Name: "Smoky", Speed: 1.0}
	student.Inventory = []model.OwnedItem{
		{ItemID: 5, Name: "Speed Treat", EffectKind: model.EffectPetSpeed, EffectAmount: 20},
	}

	require.NoError(t, svc.UseConsumable(student, 5))
	assert.InDelta(t, 1.2, student.Pet.Speed, 0.0001)
}

func TestOpenLootBox(t *testing.T) {
	catalog := &stubItemCatalog{byCategory: map[model.ItemCategory][]model.ShopItem{
		model.ItemAvatars: {{Name: "Wizard Hat", AvatarBase: "wizard"}},
		model.ItemConsumables: {
			{Name: "XP Potion", EffectKind: model.EffectXP, EffectAmount: 25},
		},
	}}
	svc := newTestShop(&memStudentStore{}, catalog, []model.PetTemplate{{Name: "Ember"}})

	cfg := model.LootBoxConfig{
		Count: 3,
		Rewards: []model.LootWeight{
			{Kind: "pet", Weight: 1},
			{Kind: "avatar", Weight: 1},
			{Kind: "consumable", Weight: 1},
		},
	}
	payload, err := json.Marshal(cfg)
	require.NoError(t, err)

	student := newTestStudent(1)
	student.Coins = 100
	box := &model.ShopItem{Name: "Mystery Box", Category: model.ItemLootBoxes, Price: 20, LootBox: payload}

	before := student.SpendableCoins(10)
	require.NoError(t, svc.ProcessPurchase(student, box))

	require.Len(t, student.LootBoxHistory, 1)
	assert.Equal(t, "Mystery Box", student.LootBoxHistory[0].Name)
	assert.Len(t, student.LootBoxHistory[0].Rewards, 3)
	assert.Equal(t, 20, student.CoinsSpent)
	// 开箱掉落不发货币，净扣款恒等于标价
	assert.Equal(t, before-box.Price, student.SpendableCoins(10))
}

func TestOpenLootBoxInvalidConfigRejected(t *testing.T) {
	store := &memStudentStore{}
	svc := newTestShop(store, emptyCatalog(), nil)

	student := newTestStudent(1)
	student.Coins = 100
	box := &model.ShopItem{Name: "Broken Box", Category: model.ItemLootBoxes, Price: 20}

	err := svc.ProcessPurchase(student, box)
	assert.ErrorIs(t, err, util.ErrInvalidArgument)
	assert.Equal(t, 0, student.CoinsSpent)
	assert.Empty(t, student.LootBoxHistory)
	assert.Equal(t, 0, store.saves)
}
