package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-feed/internal/api/middleware"
	"github.com/d60-Lab/blog-feed/internal/service"
	"github.com/d60-Lab/blog-feed/pkg/response"
)

type commentRequest struct {
	Text string `json:"text"`
}

// CreatePost 发帖
// @Summary 发帖
// @Tags 帖子
// @Accept json
// @Produce json
// @Param request body service.PostInput true "帖子内容"
// @Success 201 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 401 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
	var req service.PostInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.Create(c.Request.Context(), middleware.ActorID(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, post)
}

// EditPost 编辑帖子，仅作者本人
// @Summary 编辑帖子
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path int true "帖子ID"
// @Param request body service.PostPatch true "修改内容"
// @Success 200 {object} response.Response{data=model.Post}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id} [patch]
func (h *Handler) EditPost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req service.PostPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	post, err := h.postService.Edit(c.Request.Context(), middleware.ActorID(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, post)
}

// DeletePost 删除帖子及其评论
// @Summary 删除帖子
// @Tags 帖子
// @Produce json
// @Param id path int true "帖子ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.postService.Delete(c.Request.Context(), middleware.ActorID(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, nil)
}

// AddComment 评论
// @Summary 发表评论
// @Tags 帖子
// @Accept json
// @Produce json
// @Param id path int true "帖子ID"
// @Param request body commentRequest true "评论内容"
// @Success 201 {object} response.Response{data=model.Comment}
// @Failure 400 {object} response.Response
// @Failure 404 {object} response.Response
// @Security BearerAuth
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) AddComment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	comment, err := h.commentService.Add(c.Request.Context(), middleware.ActorID(c), id, req.Text)
	if err != nil {
		fail(c, err)
		return
	}
	response.Created(c, comment)
}
