package controller

import (
	"strconv"

	"coder_quest_backend/internal/model"
	"coder_quest_backend/internal/service"
	"coder_quest_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestController struct {
	ProgressionService *service.ProgressionService
	RatingService      *service.RatingService
}

func NewQuestController(progressionService *service.ProgressionService, ratingService *service.RatingService) *QuestController {
	return &QuestController{ProgressionService: progressionService, RatingService: ratingService}
}

type SubmitQuestRequest struct {
	Code       string `json:"code" binding:"required"`
	LanguageID int    `json:"languageId"`
	TimeSpent  int    `json:"timeSpent" binding:"min=0"` // 秒
}

type RateQuestRequest struct {
	Rating     int    `json:"rating" binding:"required,min=1,max=5"`
	Difficulty int    `json:"difficulty" binding:"required,min=1,max=5"`
	Feedback   string `json:"feedback" binding:"max=500"`
}

// QuestDetail 任务详情附带评分汇总
type QuestDetail struct {
	service.QuestView
	Rating model.RatingSummary `json:"rating"`
}

type HintResponse struct {
	Hint  string `json:"hint"`
	Coins int    `json:"coins"`
}

// @Summary 任务列表
// @Description 返回上架任务及当前用户的进度，隐藏测试用例与提示内容不返回
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response{data=[]service.QuestView}
// @Router /api/quests [get]
func (c *QuestController) ListQuests(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	quests, err := c.ProgressionService.ListQuests(ctx.Request.Context(), user.UserID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, quests)
}

// @Summary 推荐任务
// @Description 按等级难度区间、前置条件与已投入的技能树推荐，最多 10 个
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response{data=[]service.RecommendedQuest}
// @Router /api/quests/recommended [get]
func (c *QuestController) RecommendQuests(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	limit := util.ParseLimit(ctx.Query("limit"), util.DefaultRecommendations, util.DefaultRecommendations)
	quests, err := c.ProgressionService.RecommendQuests(ctx.Request.Context(), user.UserID, limit)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, quests)
}

// @Summary 任务详情
// @Description 未完成任务的学生看不到隐藏用例与提示内容，教师与管理员可查看全部
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param questId path string true "任务ID"
// @Success 200 {object} util.Response{data=QuestDetail}
// @Failure 404 {object} util.Response
// @Router /api/quests/{questId} [get]
func (c *QuestController) GetQuest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	view, err := c.ProgressionService.GetQuest(ctx.Request.Context(), user.UserID, ctx.Param("questId"), user.Privileged())
	if err != nil {
		respondError(ctx, err)
		return
	}

	summary, err := c.RatingService.Summary(ctx.Request.Context(), view.ID)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, QuestDetail{QuestView: *view, Rating: summary})
}

// @Summary 任务评分
// @Description 完成任务后才能评分，重复评分覆盖旧评分
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questId path string true "任务ID"
// @Param request body RateQuestRequest true "评分与难度 1-5"
// @Success 201 {object} util.Response{data=service.RatingOutcome}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quests/{questId}/rate [post]
func (c *QuestController) RateQuest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req RateQuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.RatingService.RateQuest(ctx.Request.Context(), user.UserID, ctx.Param("questId"),
		req.Rating, req.Difficulty, req.Feedback)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Created(ctx, out)
}

// @Summary 开始任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param questId path string true "任务ID"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 400 {object} util.Response
// @Failure 404 {object} util.Response
// @Router /api/quests/{questId}/start [post]
func (c *QuestController) StartQuest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rec, err := c.ProgressionService.StartQuest(ctx.Request.Context(), user.UserID, ctx.Param("questId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, rec)
}

// @Summary 提交代码
// @Description 评测代码，全部用例通过则完成任务并发放奖励
// @Tags 任务
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param questId path string true "任务ID"
// @Param request body SubmitQuestRequest true "代码"
// @Success 200 {object} util.Response{data=service.SubmitOutcome}
// @Failure 400 {object} util.Response
// @Failure 503 {object} util.Response
// @Router /api/quests/{questId}/submit [post]
func (c *QuestController) SubmitQuest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req SubmitQuestRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	out, err := c.ProgressionService.SubmitQuest(ctx.Request.Context(), user.UserID,
		ctx.Param("questId"), req.Code, req.LanguageID, req.TimeSpent)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, out)
}

// @Summary 放弃任务
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param questId path string true "任务ID"
// @Success 200 {object} util.Response{data=model.UserProgress}
// @Failure 400 {object} util.Response
// @Router /api/quests/{questId}/abandon [post]
func (c *QuestController) AbandonQuest(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	rec, err := c.ProgressionService.AbandonQuest(ctx.Request.Context(), user.UserID, ctx.Param("questId"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, rec)
}

// @Summary 购买提示
// @Tags 任务
// @Produce json
// @Security BearerAuth
// @Param questId path string true "任务ID"
// @Param index path int true "提示序号（从 0 开始）"
// @Success 200 {object} util.Response{data=HintResponse}
// @Failure 400 {object} util.Response
// @Router /api/quests/{questId}/hints/{index} [post]
func (c *QuestController) UseHint(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	index, err := strconv.Atoi(ctx.Param("index"))
	if err != nil {
		util.BadRequest(ctx, "invalid hint index")
		return
	}

	text, rec, err := c.ProgressionService.UseHint(ctx.Request.Context(), user.UserID, ctx.Param("questId"), index)
	if err != nil {
		respondError(ctx, err)
		return
	}

	util.Success(ctx, HintResponse{Hint: text, Coins: rec.Coins})
}
