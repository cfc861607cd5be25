package controller

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/repository"
	"classroom_champions_backend/internal/service"
	"classroom_champions_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type ClassController struct {
	ClassRepo      *repository.ClassRepository
	StudentService *service.StudentService
	Leaderboard    *service.LeaderboardService
}

func NewClassController(classRepo *repository.ClassRepository, studentService *service.StudentService, leaderboard *service.LeaderboardService) *ClassController {
	return &ClassController{
		ClassRepo:      classRepo,
		StudentService: studentService,
		Leaderboard:    leaderboard,
	}
}

type ClassRequest struct {
	Name string `json:"name" binding:"required"`
}

// CreateClass godoc
// @Summary 创建班级
// @Tags 班级
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body ClassRequest true "班级信息"
// @Success 201 {object} util.Response{data=model.Class}
// @Router /api/classes [post]
func (c *ClassController) CreateClass(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	class := &model.Class{
		Name:     req.Name,
		OwnerID:  claims.UserID,
		JoinCode: model.GenerateUUID(),
	}
	if err := c.ClassRepo.Create(class); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, class)
}

// ListClasses godoc
// @Summary 当前教师的班级列表
// @Tags 班级
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.Class}
// @Router /api/classes [get]
func (c *ClassController) ListClasses(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	classes, err := c.ClassRepo.FindByOwner(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, classes)
}

// ownedClass 校验路径里的班级归当前教师所有
func (c *ClassController) ownedClass(ctx *gin.Context) *model.Class {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return nil
	}

	class, err := c.ClassRepo.FindByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return nil
	}
	if class.OwnerID != claims.UserID && claims.Role != model.Admin {
		util.Forbidden(ctx)
		return nil
	}
	return class
}

// GetRoster godoc
// @Summary 班级名册及等级进度
// @Tags 班级
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "班级ID"
// @Success 200 {object} util.Response{data=[]service.RosterEntry}
// @Router /api/classes/{id}/students [get]
func (c *ClassController) GetRoster(ctx *gin.Context) {
	class := c.ownedClass(ctx)
	if class == nil {
		return
	}

	roster, err := c.StudentService.Roster(class.ID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, roster)
}

type EnrollRequest struct {
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName"`
}

// EnrollStudent godoc
// @Summary 学生入班
// @Tags 班级
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "班级ID"
// @Param   body body EnrollRequest true "学生姓名"
// @Success 201 {object} util.Response{data=model.Student}
// @Router /api/classes/{id}/students [post]
func (c *ClassController) EnrollStudent(ctx *gin.Context) {
	class := c.ownedClass(ctx)
	if class == nil {
		return
	}

	var req EnrollRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.Enroll(class.ID, req.FirstName, req.LastName)
	if err != nil {
		if errors.Is(err, util.ErrInvalidArgument) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, student)
}

// GetLeaderboard godoc
// @Summary 班级排行榜
// @Tags 班级
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "班级ID"
// @Param   limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response{data=[]service.LeaderboardEntry}
// @Router /api/classes/{id}/leaderboard [get]
func (c *ClassController) GetLeaderboard(ctx *gin.Context) {
	class := c.ownedClass(ctx)
	if class == nil {
		return
	}

	limit := 10
	if l := util.MustParseUint(ctx.Query("limit")); l > 0 {
		limit = int(l)
	}

	entries, err := c.Leaderboard.Get(ctx.Request.Context(), class.ID, limit)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}

// WeeklyReset godoc
// @Summary 手动执行班级周清零
// @Tags 班级
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "班级ID"
// @Success 200 {object} util.Response
// @Router /api/classes/{id}/weekly-reset [post]
func (c *ClassController) WeeklyReset(ctx *gin.Context) {
	class := c.ownedClass(ctx)
	if class == nil {
		return
	}

	if err := c.StudentService.WeeklyReset(class.ID); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"classId": class.ID})
}
