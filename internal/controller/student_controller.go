package controller

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/service"
	"classroom_champions_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type StudentController struct {
	StudentService *service.StudentService
	Progression    *service.ProgressionService
}

func NewStudentController(studentService *service.StudentService, progression *service.ProgressionService) *StudentController {
	return &StudentController{
		StudentService: studentService,
		Progression:    progression,
	}
}

// GetStudent godoc
// @Summary 学生详情与等级进度
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response
// @Router /api/students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.StudentService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	util.Success(ctx, gin.H{
		"student":  student,
		"progress": c.Progression.GetLevelProgress(student),
	})
}

// RemoveStudent godoc
// @Summary 移除学生
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response
// @Router /api/students/{id} [delete]
func (c *StudentController) RemoveStudent(ctx *gin.Context) {
	if err := c.StudentService.Remove(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, nil)
}

type AwardXPRequest struct {
	Category model.Category `json:"category" binding:"required"`
	Amount   int            `json:"amount" binding:"required"`
	Source   string         `json:"source"`
}

// AwardXP godoc
// @Summary 给学生加XP
// @Description 类别加分，自动结算升级、宠物解锁与成就
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Param   body body AwardXPRequest true "加分信息"
// @Success 200 {object} util.Response
// @Failure 400 {object} util.Response "类别或数量无效"
// @Router /api/students/{id}/xp [post]
func (c *StudentController) AwardXP(ctx *gin.Context) {
	student, err := c.StudentService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var req AwardXPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	if err := c.Progression.AwardXP(student, req.Category, req.Amount, req.Source); err != nil {
		if errors.Is(err, util.ErrInvalidCategory) || errors.Is(err, util.ErrInvalidAmount) {
			util.BadRequest(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"student":  student,
		"progress": c.Progression.GetLevelProgress(student),
	})
}

type BulkAwardXPRequest struct {
	StudentIDs []uint         `json:"studentIds" binding:"required"`
	Category   model.Category `json:"category" binding:"required"`
	Amount     int            `json:"amount" binding:"required"`
	Source     string         `json:"source"`
}

// BulkAwardXP godoc
// @Summary 批量加XP
// @Description 对名单内每个学生独立结算，个别失败不影响其余
// @Tags 学生
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body BulkAwardXPRequest true "批量加分信息"
// @Success 200 {object} util.Response{data=service.BulkAwardResult}
// @Router /api/students/bulk-xp [post]
func (c *StudentController) BulkAwardXP(ctx *gin.Context) {
	var req BulkAwardXPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	students, err := c.StudentService.StudentRepo.FindByIDs(req.StudentIDs)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	refs := make([]*model.Student, len(students))
	for i := range students {
		c.Progression.NormalizeStudent(&students[i])
		refs[i] = &students[i]
	}

	result := c.Progression.BulkAwardXP(refs, req.StudentIDs, req.Category, req.Amount, req.Source)
	util.Success(ctx, result)
}

// GetProgress godoc
// @Summary 等级进度
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response{data=service.LevelProgress}
// @Router /api/students/{id}/progress [get]
func (c *StudentController) GetProgress(ctx *gin.Context) {
	student, err := c.StudentService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, c.Progression.GetLevelProgress(student))
}

// GetLogs godoc
// @Summary 加分流水
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Param   limit query int false "返回数量" default(50)
// @Success 200 {object} util.Response{data=[]model.PointLog}
// @Router /api/students/{id}/logs [get]
func (c *StudentController) GetLogs(ctx *gin.Context) {
	logs, err := c.StudentService.Logs(util.MustParseUint(ctx.Param("id")), int(util.MustParseUint(ctx.Query("limit"))))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, logs)
}

// CheckIn godoc
// @Summary 每日签到
// @Description 连续签到天数驱动login_streak类成就
// @Tags 学生
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "今日已签到"
// @Router /api/students/{id}/checkin [post]
func (c *StudentController) CheckIn(ctx *gin.Context) {
	student, err := c.StudentService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	streak, err := c.StudentService.CheckIn(student)
	if err != nil {
		if errors.Is(err, util.ErrAlreadyCheckedIn) {
			util.Conflict(ctx, err.Error())
		} else {
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{"streak": streak})
}
