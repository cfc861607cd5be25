package controller

import (
	"classroom_champions_backend/internal/model"
	"classroom_champions_backend/internal/repository"
	"classroom_champions_backend/internal/service"
	"classroom_champions_backend/internal/util"
	"errors"

	"github.com/gin-gonic/gin"
)

type QuestController struct {
	QuestRepo      *repository.QuestRepository
	QuestService   *service.QuestService
	StudentService *service.StudentService
}

func NewQuestController(questRepo *repository.QuestRepository, questService *service.QuestService, studentService *service.StudentService) *QuestController {
	return &QuestController{
		QuestRepo:      questRepo,
		QuestService:   questService,
		StudentService: studentService,
	}
}

// ListGivers godoc
// @Summary 任务发布者列表
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuestGiver}
// @Router /api/quests/givers [get]
func (c *QuestController) ListGivers(ctx *gin.Context) {
	givers, err := c.QuestRepo.AllGivers()
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, givers)
}

// CreateQuest godoc
// @Summary 发布任务
// @Description 班级任务对全班可见，定向任务只对目标学生可见
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.QuestRequest true "任务信息"
// @Success 201 {object} util.Response{data=model.Quest}
// @Router /api/quests [post]
func (c *QuestController) CreateQuest(ctx *gin.Context) {
	var req service.QuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quest, err := c.QuestService.CreateQuest(req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestGiverNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidArgument), errors.Is(err, util.ErrInvalidCategory):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, quest)
}

// ListClassQuests godoc
// @Summary 班级任务列表
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "班级ID"
// @Success 200 {object} util.Response{data=[]model.Quest}
// @Router /api/classes/{id}/quests [get]
func (c *QuestController) ListClassQuests(ctx *gin.Context) {
	quests, err := c.QuestRepo.FindByClass(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quests)
}

// GetQuest godoc
// @Summary 任务详情
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "任务ID"
// @Success 200 {object} util.Response{data=model.Quest}
// @Router /api/quests/{id} [get]
func (c *QuestController) GetQuest(ctx *gin.Context) {
	quest, err := c.QuestRepo.FindByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}
	util.Success(ctx, quest)
}

// ArchiveQuest godoc
// @Summary 归档任务
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "任务ID"
// @Success 200 {object} util.Response{data=model.Quest}
// @Router /api/quests/{id}/archive [post]
func (c *QuestController) ArchiveQuest(ctx *gin.Context) {
	quest, err := c.QuestRepo.FindByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	quest.Status = model.QuestArchived
	if err := c.QuestRepo.Save(quest); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, quest)
}

type QuestStudentRequest struct {
	StudentID uint `json:"studentId" binding:"required"`
}

// CompleteQuest godoc
// @Summary 学生完成任务
// @Description 每个(任务,学生)仅结算一次，重复提交返回409
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "任务ID"
// @Param   body body QuestStudentRequest true "学生信息"
// @Success 200 {object} util.Response
// @Failure 409 {object} util.Response "已完成"
// @Failure 410 {object} util.Response "已过期"
// @Router /api/quests/{id}/complete [post]
func (c *QuestController) CompleteQuest(ctx *gin.Context) {
	quest, err := c.QuestRepo.FindByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var req QuestStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.GetByID(req.StudentID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	if err := c.QuestService.CompleteQuest(quest, student); err != nil {
		switch {
		case errors.Is(err, util.ErrQuestAlreadyCompleted):
			util.Conflict(ctx, err.Error())
		case errors.Is(err, util.ErrQuestExpired):
			util.Error(ctx, 410, err.Error())
		case errors.Is(err, util.ErrQuestInactive):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, gin.H{
		"quest":   quest,
		"student": student,
	})
}

// CompleteQuestForClass godoc
// @Summary 整班完成任务
// @Description 逐个学生结算，单个失败不中断，返回成功与失败明细
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "任务ID"
// @Success 200 {object} util.Response{data=service.ClassCompletionResult}
// @Router /api/quests/{id}/complete-class [post]
func (c *QuestController) CompleteQuestForClass(ctx *gin.Context) {
	quest, err := c.QuestRepo.FindByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	students, err := c.StudentService.StudentRepo.FindByClass(quest.ClassID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	refs := make([]*model.Student, len(students))
	for i := range students {
		refs[i] = &students[i]
	}

	util.Success(ctx, c.QuestService.CompleteQuestForClass(quest, refs))
}

// StartQuest godoc
// @Summary 学生开始任务
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "任务ID"
// @Param   body body QuestStudentRequest true "学生信息"
// @Success 200 {object} util.Response
// @Router /api/quests/{id}/start [post]
func (c *QuestController) StartQuest(ctx *gin.Context) {
	quest, err := c.QuestRepo.FindByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	var req QuestStudentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	student, err := c.StudentService.GetByID(req.StudentID)
	if err != nil {
		util.NotFound(ctx)
		return
	}

	if err := c.QuestService.StartQuest(quest, student); err != nil {
		switch {
		case errors.Is(err, util.ErrQuestExpired):
			util.Error(ctx, 410, err.Error())
		case errors.Is(err, util.ErrQuestInactive):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Success(ctx, nil)
}

// AvailableQuests godoc
// @Summary 学生可见任务
// @Description 过滤掉已归档、已过期、已完成以及不面向该学生的任务
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "学生ID"
// @Success 200 {object} util.Response{data=[]model.Quest}
// @Router /api/students/{id}/quests [get]
func (c *QuestController) AvailableQuests(ctx *gin.Context) {
	student, err := c.StudentService.GetByID(util.MustParseUint(ctx.Param("id")))
	if err != nil {
		util.NotFound(ctx)
		return
	}

	quests, err := c.QuestRepo.FindByClass(student.ClassID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Success(ctx, c.QuestService.AvailableQuests(quests, student))
}

// ListTemplates godoc
// @Summary 我的任务蓝本
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=[]model.QuestTemplate}
// @Router /api/quests/templates [get]
func (c *QuestController) ListTemplates(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	templates, err := c.QuestRepo.TemplatesByOwner(claims.UserID)
	if err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, templates)
}

// CreateTemplate godoc
// @Summary 保存任务蓝本
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   body body service.TemplateRequest true "蓝本信息"
// @Success 201 {object} util.Response{data=model.QuestTemplate}
// @Router /api/quests/templates [post]
func (c *QuestController) CreateTemplate(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	var req service.TemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	tpl, err := c.QuestService.CreateTemplate(claims.UserID, req)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestGiverNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidArgument), errors.Is(err, util.ErrInvalidCategory):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, tpl)
}

type InstantiateTemplateRequest struct {
	ClassID        uint   `json:"classId" binding:"required"`
	IsClassQuest   bool   `json:"isClassQuest"`
	TargetStudents []uint `json:"targetStudents"`
}

// InstantiateTemplate godoc
// @Summary 从蓝本发布任务
// @Tags 任务
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "蓝本ID"
// @Param   body body InstantiateTemplateRequest true "发布目标"
// @Success 201 {object} util.Response{data=model.Quest}
// @Router /api/quests/templates/{id}/instantiate [post]
func (c *QuestController) InstantiateTemplate(ctx *gin.Context) {
	var req InstantiateTemplateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	quest, err := c.QuestService.CreateFromTemplate(util.MustParseUint(ctx.Param("id")), req.ClassID, req.IsClassQuest, req.TargetStudents)
	if err != nil {
		switch {
		case errors.Is(err, util.ErrQuestNotFound), errors.Is(err, util.ErrQuestGiverNotFound):
			util.NotFound(ctx)
		case errors.Is(err, util.ErrInvalidArgument), errors.Is(err, util.ErrInvalidCategory):
			util.BadRequest(ctx, err.Error())
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	util.Created(ctx, quest)
}

// DeleteTemplate godoc
// @Summary 删除任务蓝本
// @Tags 任务
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "蓝本ID"
// @Success 200 {object} util.Response
// @Router /api/quests/templates/{id} [delete]
func (c *QuestController) DeleteTemplate(ctx *gin.Context) {
	if err := c.QuestRepo.DeleteTemplate(util.MustParseUint(ctx.Param("id"))); err != nil {
		util.LogInternalError(ctx, err)
		return
	}
	util.Success(ctx, nil)
}
