package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/d60-Lab/blog-feed/internal/cache"
	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/repository"
	"github.com/d60-Lab/blog-feed/pkg/logger"
)

// PostInput 新建帖子
type PostInput struct {
	Text     string `json:"text" validate:"required"`
	GroupID  *uint  `json:"group_id"`
	ImageRef string `json:"image_ref" validate:"omitempty,max=255"`
}

// PostPatch 编辑帖子，nil 字段保持不变；ClearGroup 取消分组
type PostPatch struct {
	Text       *string `json:"text"`
	GroupID    *uint   `json:"group_id"`
	ClearGroup bool    `json:"clear_group"`
	ImageRef   *string `json:"image_ref" validate:"omitempty,max=255"`
}

// PostService 帖子写操作；创建、编辑、删除都会在返回前清空全局时间线缓存
type PostService interface {
	Create(ctx context.Context, actorID uint, in PostInput) (*model.Post, error)
	Edit(ctx context.Context, actorID, postID uint, patch PostPatch) (*model.Post, error)
	Delete(ctx context.Context, actorID, postID uint) error
}

type postService struct {
	repos *repository.Repositories
	cache cache.TimelineCache
}

func NewPostService(repos *repository.Repositories, timelineCache cache.TimelineCache) PostService {
	if timelineCache == nil {
		timelineCache = cache.NopTimelineCache{}
	}
	return &postService{repos: repos, cache: timelineCache}
}

func (s *postService) Create(ctx context.Context, actorID uint, in PostInput) (*model.Post, error) {
	in.Text = strings.TrimSpace(in.Text)
	in.ImageRef = strings.TrimSpace(in.ImageRef)
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := requireActor(ctx, s.repos.Users, actorID); err != nil {
		return nil, err
	}

	post := &model.Post{Text: in.Text, AuthorID: actorID, GroupID: in.GroupID, ImageRef: in.ImageRef}
	if err := s.repos.Posts.Create(ctx, post); err != nil {
		if err := groupError(err, in.GroupID); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("create post: %w", err)
	}
	if err := invalidateTimeline(ctx, s.cache); err != nil {
		return nil, err
	}
	return s.repos.Posts.Get(ctx, post.ID)
}

func (s *postService) Edit(ctx context.Context, actorID, postID uint, patch PostPatch) (*model.Post, error) {
	if patch.Text != nil {
		text := strings.TrimSpace(*patch.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: text is required", ErrValidation)
		}
		patch.Text = &text
	}
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if patch.ClearGroup && patch.GroupID != nil {
		return nil, fmt.Errorf("%w: group_id and clear_group are mutually exclusive", ErrValidation)
	}

	post, err := s.repos.Posts.Update(ctx, postID, func(p *model.Post) error {
		if p.AuthorID != actorID {
			return fmt.Errorf("%w: post %d belongs to another author", ErrForbidden, postID)
		}
		if patch.Text != nil {
			p.Text = *patch.Text
		}
		if patch.ImageRef != nil {
			p.ImageRef = strings.TrimSpace(*patch.ImageRef)
		}
		switch {
		case patch.ClearGroup:
			p.GroupID = nil
		case patch.GroupID != nil:
			p.GroupID = patch.GroupID
		}
		return nil
	})
	if err != nil {
		if err := groupError(err, patch.GroupID); err != nil {
			return nil, err
		}
		return nil, notFound(err, "post %d", postID)
	}
	if err := invalidateTimeline(ctx, s.cache); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, actorID, postID uint) error {
	err := s.repos.Posts.Delete(ctx, postID, func(p *model.Post) error {
		if p.AuthorID != actorID {
			return fmt.Errorf("%w: post %d belongs to another author", ErrForbidden, postID)
		}
		return nil
	})
	if err != nil {
		return notFound(err, "post %d", postID)
	}
	return invalidateTimeline(ctx, s.cache)
}

// groupError 分组不存在属于输入错误；其他错误返回 nil 交给调用方处理
func groupError(err error, groupID *uint) error {
	if !errors.Is(err, repository.ErrGroupNotFound) || groupID == nil {
		return nil
	}
	return fmt.Errorf("%w: group %d does not exist", ErrValidation, *groupID)
}

// requireActor 身份由上游认证，这里只确认用户引用存在
func requireActor(ctx context.Context, users repository.UserRepository, actorID uint) error {
	if _, err := users.GetByID(ctx, actorID); err != nil {
		return notFound(err, "user %d", actorID)
	}
	return nil
}

// invalidateTimeline 写事务提交后、返回调用方前清空全局时间线缓存
func invalidateTimeline(ctx context.Context, c cache.TimelineCache) error {
	if err := c.Clear(ctx); err != nil {
		logger.Error("timeline cache clear failed", zap.Error(err))
		return fmt.Errorf("invalidate timeline cache: %w", err)
	}
	return nil
}
