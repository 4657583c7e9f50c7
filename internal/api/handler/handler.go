package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/d60-Lab/blog-feed/internal/service"
	"github.com/d60-Lab/blog-feed/pkg/response"
)

// Handler 持有各业务服务，路由方法分散在同包的各个文件中
type Handler struct {
	feedService    service.FeedService
	postService    service.PostService
	commentService service.CommentService
	relService     service.RelationshipService
	groupService   service.GroupService
	pageSize       int
}

func New(
	feedService service.FeedService,
	postService service.PostService,
	commentService service.CommentService,
	relService service.RelationshipService,
	groupService service.GroupService,
	pageSize int,
) *Handler {
	return &Handler{
		feedService:    feedService,
		postService:    postService,
		commentService: commentService,
		relService:     relService,
		groupService:   groupService,
		pageSize:       pageSize,
	}
}

// fail 按服务层错误类型映射状态码
func fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotFound):
		response.NotFound(c, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, err.Error())
	case errors.Is(err, service.ErrValidation):
		response.BadRequest(c, err.Error())
	case errors.Is(err, service.ErrConflict):
		response.Conflict(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.NotFound(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
