package controller

import (
	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/service"
	"coder_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ProgressController struct {
	ProgressionService *service.ProgressionService
}

func NewProgressController(progressionService *service.ProgressionService) *ProgressController {
	return &ProgressController{ProgressionService: progressionService}
}

type SpendSkillPointsRequest struct {
	Points int `json:"points" binding:"required,min=1"`
}

type GrantXPRequest struct {
	Amount int `json:"amount" binding:"required,min=1,max=1000"`
}

type ChooseClassRequest struct {
	CharacterClass model.CharacterClass `json:"characterClass" binding:"required,oneof=novice_coder frontend_wizard backend_knight ai_sorcerer fullstack_paladin"`
}

type RecordActivityRequest struct {
	Stat  string `json:"stat" binding:"required"`
	Delta int    `json:"delta" binding:"required,min=1"`
}

// @Summary 获取成长记录
// @Description 获取当前用户的等级、经验、货币、任务与技能树
// @Tags 成长体系
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ProgressView}
// @Router /api/progress [get]
func (c *ProgressController) GetProgress(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ProgressionService.GetProgress(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 获取排行榜
// @Description 按等级、累计经验、对战胜场或连续签到排序，返回当前用户名次
// @Tags 成长体系
// @Produce json
// @Security BearerAuth
// @Param type query string false "level|xp|battles|streak" default(level)
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response{data=service.LeaderboardView}
// @Router /api/leaderboard [get]
func (c *ProgressController) GetLeaderboard(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	board := model.ParseLeaderboardType(ctx.Query("type"))
	limit := util.ParseLimit(ctx.Query("limit"), util.DefaultLeaderboard, util.MaxLeaderboardLimit)

	view, err := c.ProgressionService.Leaderboard(ctx.Request.Context(), user.UserID, board, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, view)
}

// @Summary 每日签到
// @Description 维护连续签到天数，续上连续时检查成就
// @Tags 成长体系
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.CheckInOutcome}
// @Router /api/progress/check-in [post]
func (c *ProgressController) CheckIn(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	out, err := c.ProgressionService.CheckIn(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, out)
}

// @Summary 选择职业
// @Description 新手 1 级，前端法师/后端骑士 5 级，AI 术士 10 级，全栈圣骑士 15 级
// @Tags 成长体系
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ChooseClassRequest true "职业"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 400 {object} util.Response
// @Router /api/progress/character-class [put]
func (c *ProgressController) ChooseCharacterClass(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req ChooseClassRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rec, err := c.ProgressionService.ChooseCharacterClass(ctx.Request.Context(), user.UserID, req.CharacterClass)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, rec)
}

// @Summary 解锁技能
// @Description 花费技能点解锁技能树节点
// @Tags 成长体系
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tree path string true "技能树"
// @Param skillId path string true "技能ID"
// @Param request body SpendSkillPointsRequest true "技能点"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 400 {object} util.Response
// @Router /api/skill-trees/{tree}/skills/{skillId} [post]
func (c *ProgressController) SpendSkillPoints(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SpendSkillPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	rec, err := c.ProgressionService.SpendSkillPoints(ctx.Request.Context(), user.UserID,
		ctx.Param("tree"), ctx.Param("skillId"), req.Points)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, rec)
}

// @Summary 发放经验（教师/管理员）
// @Tags 成长体系管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Param request body GrantXPRequest true "经验值 1-1000"
// @Success 200 {object} util.Response{data=service.XPGrantOutcome}
// @Failure 400 {object} util.Response
// @Router /api/admin/users/{userId}/xp [post]
func (c *ProgressController) GrantXP(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("userId"))
	if userID == 0 {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req GrantXPRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.ProgressionService.GrantXP(ctx.Request.Context(), userID, req.Amount)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, out)
}

// @Summary 上报行为计数（教师/管理员）
// @Description 累加对战胜利等外部计数器并触发成就检查；任务、执行次数与签到计数不可上报
// @Tags 成长体系管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param userId path int true "用户ID"
// @Param request body RecordActivityRequest true "计数器"
// @Success 200 {object} util.Response{data=service.ActionOutcome}
// @Failure 400 {object} util.Response
// @Router /api/admin/users/{userId}/stats [post]
func (c *ProgressController) RecordActivity(ctx *gin.Context) {
	userID := util.MustParseUint(ctx.Param("userId"))
	if userID == 0 {
		util.BadRequest(ctx, "invalid user id")
		return
	}

	var req RecordActivityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.ProgressionService.RecordActivity(ctx.Request.Context(), userID, req.Stat, req.Delta)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, out)
}
