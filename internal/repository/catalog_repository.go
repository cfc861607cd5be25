package repository

import (
	"classroom_champions_backend/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository 静态目录的只读访问：宠物图鉴、成就目录。
// 商品表可由教师编辑，单独给写方法
type CatalogRepository struct {
	DB *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) *CatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) PetTemplates() ([]model.PetTemplate, error) {
	var pets []model.PetTemplate
	err := r.DB.Order("id").Find(&pets).Error
	return pets, err
}

func (r *CatalogRepository) AchievementDefs() ([]model.AchievementDef, error) {
	var defs []model.AchievementDef
	err := r.DB.Where("enabled = ?", true).Order("id").Find(&defs).Error
	return defs, err
}

type ShopRepository struct {
	DB *gorm.DB
}

func NewShopRepository(db *gorm.DB) *ShopRepository {
	return &ShopRepository{DB: db}
}

func (r *ShopRepository) FindByID(id uint) (*model.ShopItem, error) {
	var item model.ShopItem
	err := r.DB.First(&item, id).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *ShopRepository) Active() ([]model.ShopItem, error) {
	var items []model.ShopItem
	err := r.DB.Where("active = ?", true).Order("category, price").Find(&items).Error
	return items, err
}

func (r *ShopRepository) ActiveByCategory(cat model.ItemCategory) ([]model.ShopItem, error) {
	var items []model.ShopItem
	err := r.DB.Where("active = ? AND category = ?", true, cat).Order("price").Find(&items).Error
	return items, err
}

func (r *ShopRepository) Create(item *model.ShopItem) error {
	return r.DB.Create(item).Error
}

func (r *ShopRepository) Save(item *model.ShopItem) error {
	return r.DB.Save(item).Error
}

func (r *ShopRepository) Delete(id uint) error {
	return r.DB.Delete(&model.ShopItem{}, id).Error
}
