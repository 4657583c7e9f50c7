package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-feed/internal/api/middleware"
	"github.com/d60-Lab/blog-feed/internal/pagination"
	"github.com/d60-Lab/blog-feed/pkg/response"
)

// Follow 关注作者；重复关注和关注自己都直接返回成功
// @Summary 关注用户
// @Tags 关系链
// @Produce json
// @Param username path string true "被关注的用户名"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/users/{username}/follow [post]
func (h *Handler) Follow(c *gin.Context) {
	if err := h.relService.Follow(c.Request.Context(), middleware.ActorID(c), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// Unfollow 取消关注
// @Summary 取消关注
// @Tags 关系链
// @Produce json
// @Param username path string true "被取消关注的用户名"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/users/{username}/follow [delete]
func (h *Handler) Unfollow(c *gin.Context) {
	if err := h.relService.Unfollow(c.Request.Context(), middleware.ActorID(c), c.Param("username")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// ListFollowing 当前用户关注的作者，最近关注的在前
// @Summary 查询关注列表
// @Tags 关系链
// @Produce json
// @Param page query int false "页码" default(1)
// @Success 200 {object} response.Response{data=service.FollowingList}
// @Security BearerAuth
// @Router /api/v1/me/following [get]
func (h *Handler) ListFollowing(c *gin.Context) {
	list, err := h.relService.ListFollowing(c.Request.Context(), middleware.ActorID(c), pagination.ParsePage(c.Query("page")), h.pageSize)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, list)
}
