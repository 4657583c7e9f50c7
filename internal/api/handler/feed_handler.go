package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-feed/internal/api/middleware"
	"github.com/d60-Lab/blog-feed/internal/pagination"
	"github.com/d60-Lab/blog-feed/pkg/response"
)

// GlobalTimeline 全站时间线
// @Summary 全站时间线
// @Tags 时间线
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=model.Timeline}
// @Failure 500 {object} response.Response
// @Router /api/v1/posts [get]
func (h *Handler) GlobalTimeline(c *gin.Context) {
	tl, err := h.feedService.Global(c.Request.Context(), pagination.ParsePage(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tl)
}

// GroupTimeline 分组时间线
// @Summary 分组时间线
// @Tags 时间线
// @Produce json
// @Param slug path string true "分组 slug"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=service.GroupTimeline}
// @Failure 404 {object} response.Response
// @Router /api/v1/groups/{slug}/posts [get]
func (h *Handler) GroupTimeline(c *gin.Context) {
	res, err := h.feedService.Group(c.Request.Context(), c.Param("slug"), pagination.ParsePage(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// ProfileTimeline 作者主页
// @Summary 作者主页
// @Tags 时间线
// @Produce json
// @Param username path string true "用户名"
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=service.ProfileTimeline}
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/users/{username}/posts [get]
func (h *Handler) ProfileTimeline(c *gin.Context) {
	res, err := h.feedService.Profile(c.Request.Context(), c.Param("username"), middleware.ActorID(c), pagination.ParsePage(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}

// FollowingTimeline 关注的人的时间线
// @Summary 关注时间线
// @Tags 时间线
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=model.Timeline}
// @Failure 401 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/feed/following [get]
func (h *Handler) FollowingTimeline(c *gin.Context) {
	tl, err := h.feedService.Following(c.Request.Context(), middleware.ActorID(c), pagination.ParsePage(c.Query("page")))
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, tl)
}

// PostDetail 帖子详情
// @Summary 帖子详情及评论
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response{data=service.PostDetail}
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [get]
func (h *Handler) PostDetail(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	res, err := h.feedService.PostDetail(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, res)
}
