package controller

import (
	"coder_quest_backend/internal/service"
	"coder_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	ProgressionService *service.ProgressionService
}

func NewAchievementController(progressionService *service.ProgressionService) *AchievementController {
	return &AchievementController{ProgressionService: progressionService}
}

// @Summary 获取成就列表
// @Description 上架成就及当前用户是否已解锁、是否可解锁
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.AchievementView}
// @Router /api/achievements [get]
func (c *AchievementController) ListAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	views, err := c.ProgressionService.ListAchievements(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, views)
}

// @Summary 检查成就
// @Description 扫描并解锁所有已达标的成就
// @Tags 成就系统
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=service.ActionOutcome}
// @Router /api/achievements/check [post]
func (c *AchievementController) CheckAchievements(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	out, err := c.ProgressionService.CheckAchievements(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, out)
}
