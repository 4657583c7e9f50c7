package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-feed/internal/service"
	"github.com/d60-Lab/blog-feed/pkg/response"
)

// CreateGroup 新建分组
// @Summary 新建分组
// @Tags 分组
// @Accept json
// @Produce json
// @Param request body service.GroupInput true "分组信息"
// @Success 201 {object} response.Response{data=model.Group}
// @Failure 400 {object} response.Response
// @Failure 409 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
	var req service.GroupInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	group, err := h.groupService.Create(c.Request.Context(), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, group)
}

// DeleteGroup 删除分组，帖子保留
// @Summary 删除分组
// @Tags 分组
// @Produce json
// @Param slug path string true "分组 slug"
// @Success 200 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/groups/{slug} [delete]
func (h *Handler) DeleteGroup(c *gin.Context) {
	if err := h.groupService.Delete(c.Request.Context(), c.Param("slug")); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}
