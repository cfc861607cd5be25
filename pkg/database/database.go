package database

import (
	"classroom_champions_backend/internal/config"
	"classroom_champions_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.Class{},
		&model.Student{},
		&model.PointLog{},
		&model.Quest{},
		&model.QuestCompletion{},
		&model.QuestStart{},
		&model.QuestTemplate{},
		&model.QuestGiver{},
		&model.AchievementDef{},
		&model.ShopItem{},
		&model.PetTemplate{},
		&model.Checkin{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedCatalogs(db)

	return db, nil
}

// seedCatalogs 静态目录表为空时写入默认内容：任务发布者、宠物图鉴、
// 成就目录和基础商品。这些是只读配置，服务端不会再修改
func seedCatalogs(db *gorm.DB) {
	var count int64

	db.Model(&model.QuestGiver{}).Count(&count)
	if count == 0 {
		givers := []model.QuestGiver{
			{Name: "Professor Hoot", Image: "quest-givers/hoot.png", Specialty: "Learner"},
			{Name: "Captain Kindheart", Image: "quest-givers/kindheart.png", Specialty: "Respectful"},
			{Name: "Ranger Steady", Image: "quest-givers/steady.png", Specialty: "Responsible"},
			{Name: "Wizard Quill", Image: "quest-givers/quill.png", Specialty: "Learner"},
		}
		for _, g := range givers {
			db.Create(&g)
		}
	}

	db.Model(&model.PetTemplate{}).Count(&count)
	if count == 0 {
		pets := []model.PetTemplate{
			{Name: "Ember the Fox", Image: "pets/fox.png", BaseSpeed: 1.0},
			{Name: "Splash the Turtle", Image: "pets/turtle.png", BaseSpeed: 1.0},
			{Name: "Ziggy the Dragon", Image: "pets/dragon.png", BaseSpeed: 1.0},
			{Name: "Willow the Owl", Image: "pets/owl.png", BaseSpeed: 1.0},
			{Name: "Biscuit the Dog", Image: "pets/dog.png", BaseSpeed: 1.0},
			{Name: "Mochi the Cat", Image: "pets/cat.png", BaseSpeed: 1.0},
		}
		for _, p := range pets {
			db.Create(&p)
		}
	}

	db.Model(&model.AchievementDef{}).Count(&count)
	if count == 0 {
		defs := []model.AchievementDef{
			{Code: "first_steps", Name: "First Steps", Description: "Reach level 2", Icon: "achievements/first_steps.png", Condition: model.ConditionLevel, Threshold: 2, BonusCoins: 5, Enabled: true},
			{Code: "rising_star", Name: "Rising Star", Description: "Reach level 5", Icon: "achievements/rising_star.png", Condition: model.ConditionLevel, Threshold: 5, BonusCoins: 15, Enabled: true},
			{Code: "champion", Name: "Classroom Champion", Description: "Reach the maximum level", Icon: "achievements/champion.png", Condition: model.ConditionLevel, Threshold: 10, BonusCoins: 50, Enabled: true},
			{Code: "pet_pal", Name: "Pet Pal", Description: "Own 3 pets", Icon: "achievements/pet_pal.png", Condition: model.ConditionPetsOwned, Threshold: 3, BonusCoins: 10, Enabled: true},
			{Code: "quest_rookie", Name: "Quest Rookie", Description: "Complete 5 quests", Icon: "achievements/quest_rookie.png", Condition: model.ConditionQuestsCompleted, Threshold: 5, BonusXP: 25, Enabled: true},
			{Code: "quest_master", Name: "Quest Master", Description: "Complete 25 quests", Icon: "achievements/quest_master.png", Condition: model.ConditionQuestsCompleted, Threshold: 25, BonusCoins: 25, BonusXP: 50, Enabled: true},
			{Code: "scholar", Name: "Scholar", Description: "Earn 500 Learner XP", Icon: "achievements/scholar.png", Condition: model.ConditionCategoryTotal, Category: model.CategoryLearner, Threshold: 500, BonusCoins: 20, Enabled: true},
			{Code: "kind_soul", Name: "Kind Soul", Description: "Earn 500 Respectful XP", Icon: "achievements/kind_soul.png", Condition: model.ConditionCategoryTotal, Category: model.CategoryRespectful, Threshold: 500, BonusCoins: 20, Enabled: true},
			{Code: "reliable", Name: "Reliable", Description: "Earn 500 Responsible XP", Icon: "achievements/reliable.png", Condition: model.ConditionCategoryTotal, Category: model.CategoryResponsible, Threshold: 500, BonusCoins: 20, Enabled: true},
			{Code: "point_collector", Name: "Point Collector", Description: "Earn 1000 total XP", Icon: "achievements/point_collector.png", Condition: model.ConditionTotalPoints, Threshold: 1000, BonusCoins: 30, Enabled: true},
			{Code: "week_streak", Name: "Perfect Week", Description: "Check in 7 days in a row", Icon: "achievements/week_streak.png", Condition: model.ConditionLoginStreak, Threshold: 7, BonusXP: 20, Enabled: true},
		}
		for _, d := range defs {
			db.Create(&d)
		}
	}

	db.Model(&model.ShopItem{}).Count(&count)
	if count == 0 {
		items := []model.ShopItem{
			{Name: "Knight Avatar", Description: "A brave knight look", Category: model.ItemAvatars, Price: 20, Image: "shop/knight.png", AvatarBase: "knight", Active: true},
			{Name: "Explorer Avatar", Description: "Ready for adventure", Category: model.ItemAvatars, Price: 20, Image: "shop/explorer.png", AvatarBase: "explorer", Active: true},
			{Name: "Wizard Avatar", Description: "Master of spells", Category: model.ItemAvatars, Price: 35, Image: "shop/wizard.png", AvatarBase: "wizard", Active: true},
			{Name: "Pocket Dragon", Description: "A tiny loyal dragon", Category: model.ItemPets, Price: 40, Image: "shop/dragon.png", PetName: "Pocket Dragon", PetImage: "pets/pocket_dragon.png", Active: true},
			{Name: "XP Scroll", Description: "Grants 10 bonus XP", Category: model.ItemConsumables, Price: 10, Image: "shop/scroll.png", EffectKind: model.EffectXP, EffectAmount: 10, Active: true},
			{Name: "Coin Pouch", Description: "Grants 5 bonus coins", Category: model.ItemConsumables, Price: 8, Image: "shop/pouch.png", EffectKind: model.EffectCoins, EffectAmount: 5, Active: true},
			{Name: "Turbo Treat", Description: "Boosts your pet's speed by 10%", Category: model.ItemConsumables, Price: 15, Image: "shop/treat.png", EffectKind: model.EffectPetSpeed, EffectAmount: 10, Active: true},
			{Name: "Homework Pass", Description: "Skip one homework assignment", Category: model.ItemRewards, Price: 50, Image: "shop/pass.png", Active: true},
			{Name: "Front of the Line", Description: "Be first in line for a day", Category: model.ItemRewards, Price: 25, Image: "shop/line.png", Active: true},
			{Name: "Mystery Box", Description: "Three random surprises inside", Category: model.ItemLootBoxes, Price: 30, Image: "shop/box.png",
				LootBox: []byte(`{"count":3,"rewards":[{"kind":"pet","weight":1},{"kind":"avatar","weight":2},{"kind":"consumable","weight":4}]}`), Active: true},
		}
		for _, it := range items {
			db.Create(&it)
		}
	}
}
