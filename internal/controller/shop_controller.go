package controller

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/repository"
	"classroom_champions_backend/internal/service"
	"classroom_champions_backend/internal/util"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ShopController struct {
	ShopRepo       *repository.ShopRepository
	ShopService    *service.ShopService
	StudentService *service.StudentService
	Storage        *service.StorageService
}

func NewShopController(shopRepo *repository.ShopRepository, shopService *service.ShopService, studentService *service.StudentService, storage *service.StorageService) *ShopController {
	return &ShopController{
		ShopRepo:       shopRepo,
		ShopService:    shopService,
		StudentService: studentService,
		Storage:        storage,
	}
}

// ListItems godoc
// @Summary 商城商品列表
// @Tags 商城
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.ShopItem}
// @Router /api/shop/items [get]
func (c *ShopController) ListItems(ctx *gin.Context) {
	items, err := c.ShopRepo.Active()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, items)
}

type ShopItemRequest struct {
	Name         string               `json:"name" binding:"required"`
	Description  string               `json:"description"`
	Category     model.ItemCategory   `json:"category" binding:"required"`
	Price        int                  `json:"price" binding:"required"`
	Image        string               `json:"image"`
	AvatarBase   string               `json:"avatarBase"`
	PetName      string               `json:"petName"`
	PetImage     string               `json:"petImage"`
	EffectKind   model.EffectKind     `json:"effectKind"`
	EffectAmount int                  `json:"effectAmount"`
	LootBox      *model.LootBoxConfig `json:"lootBox"`
}

func marshalLootBox(cfg *model.LootBoxConfig) (datatypes.JSON, error) {
	if cfg.Count <= 0 || len(cfg.Rewards) == 0 {
		return nil, util.ErrInvalidArgument
	}
	for _, r := range cfg.Rewards {
		if !model.ValidLootKind(r.Kind) {
			return nil, util.ErrInvalidArgument
		}
	}
	payload, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(payload), nil
}

// CreateItem godoc
// @Summary 新建商品
// @Tags 商城
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ShopItemRequest true "商品信息"
// @Success 201 {object} util.Response{data=model.ShopItem}
// @Router /api/shop/items [post]
func (c *ShopController) CreateItem(ctx *gin.Context) {
	var req ShopItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if !model.ValidItemCategory(req.Category) || req.Price < 0 {
		util.BadRequest(ctx, util.ErrInvalidArgument.Error())
		return
	}

	item := &model.ShopItem{
		Name:         req.Name,
		Description:  req.Description,
		Category:     req.Category,
		Price:        req.Price,
		Image:        req.Image,
		AvatarBase:   req.AvatarBase,
		PetName:      req.PetName,
		PetImage:     req.PetImage,
		EffectKind:   req.EffectKind,
		EffectAmount: req.EffectAmount,
		Active:       true,
	}
	if item.EffectKind == "" {
		item.EffectKind = model.EffectNone
	}
	if req.LootBox != nil {
		payload, err := marshalLootBox(req.LootBox)
		if err != nil {
			util.BadRequest(ctx, err.Error())
			return
		}
		item.LootBox = payload
	}

	if err := c.ShopRepo.Create(item); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Created(ctx, item)
}

// DeleteItem godoc
// @Summary 下架商品
// @Tags 商城
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "商品ID"
// @Success 200 {object} util.Response
// @Router /api/shop/items/{id} [delete]
func (c *ShopController) DeleteItem(ctx *gin.Context) {
	if err := c.ShopRepo.Delete(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}

type PurchaseRequest struct {
	ItemID uint `json:"itemId" binding:"required"`
}

// Purchase godoc
// @Summary 学生购买商品
// @Description 余额由XP换算币+奖励币-已花费推导，不足直接拒绝
// @Tags 商城
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Param   body body PurchaseRequest true "购买信息"
// @Success 200 {object} util.Response
// @Failure 402 {object} util.Response "余额不足"
// @Router /api/students/{id}/purchase [post]
func (c *ShopController) Purchase(ctx *gin.Context) {
	student, err := c.StudentService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var req PurchaseRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	item, err := c.ShopRepo.FindByID(req.ItemID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	if err := c.ShopService.ProcessPurchase(student, item); err != nil {
		if errors.Is(err, util.ErrInsufficientFunds) {
			util.Error(ctx, 402, err.Error())
		} else if errors.Is(err, util.ErrInvalidArgument) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"student":        student,
		"spendableCoins": student.SpendableCoins(c.ShopService.CoinsPerXP),
	})
}

// UseItem godoc
// @Summary 使用消耗品
// @Tags 商城
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Param   itemId path int true "商品ID"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "物品不在库存或类别不符"
// @Router /api/students/{id}/items/{itemId}/use [post]
func (c *ShopController) UseItem(ctx *gin.Context) {
	student, err := c.StudentService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	if err := c.ShopService.UseConsumable(student, util.MustParseUint(ctx.Param("itemId"))); err != nil {
		if errors.Is(err, util.ErrInvalidItem) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, student)
}

// UploadArt godoc
// @Summary 上传商品美术素材
// @Tags 商城
// @Accept  multipart/form-data
// @Produce  json
// @Security ApiKeyAuth
// @Param   file formData file true "图片文件"
// @Success 200 {object} util.Response{data=object}
// @Router /api/shop/art [post]
func (c *ShopController) UploadArt(ctx *gin.Context) {
	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "file is required")
		return
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	allowed := false
	for _, e := range util.AllowedImageExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		util.BadRequest(ctx, "unsupported image type")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	defer src.Close()

	filename := fmt.Sprintf("art/%s%s", uuid.New().String(), ext)
	url, err := c.Storage.Upload(ctx.Request.Context(), filename, src, file.Size, file.Header.Get("Content-Type"))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{"url": url})
}
