package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/d60-Lab/blog-feed/internal/cache"
	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/repository"
)

// GroupInput 新建分组
type GroupInput struct {
	Title       string `json:"title" validate:"required,max=200"`
	Slug        string `json:"slug" validate:"required,max=50,slug"`
	Description string `json:"description" validate:"required"`
}

type GroupService interface {
	Create(ctx context.Context, in GroupInput) (*model.Group, error)
	Get(ctx context.Context, slug string) (*model.Group, error)
	// Delete 删除分组；帖子保留，group_id 置空
	Delete(ctx context.Context, slug string) error
}

type groupService struct {
	groups repository.GroupRepository
	cache  cache.TimelineCache
}

func NewGroupService(groups repository.GroupRepository, timelineCache cache.TimelineCache) GroupService {
	if timelineCache == nil {
		timelineCache = cache.NopTimelineCache{}
	}
	return &groupService{groups: groups, cache: timelineCache}
}

func (s *groupService) Create(ctx context.Context, in GroupInput) (*model.Group, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Slug = strings.TrimSpace(in.Slug)
	in.Description = strings.TrimSpace(in.Description)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	if _, err := s.groups.GetBySlug(ctx, in.Slug); err == nil {
		return nil, fmt.Errorf("%w: group slug %q already taken", ErrConflict, in.Slug)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	g := &model.Group{Title: in.Title, Slug: in.Slug, Description: in.Description}
	if err := s.groups.Create(ctx, g); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, fmt.Errorf("%w: group slug %q already taken", ErrConflict, in.Slug)
		}
		return nil, fmt.Errorf("create group: %w", err)
	}
	return g, nil
}

func (s *groupService) Get(ctx context.Context, slug string) (*model.Group, error) {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "group %q", slug)
	}
	return g, nil
}

func (s *groupService) Delete(ctx context.Context, slug string) error {
	g, err := s.groups.GetBySlug(ctx, slug)
	if err != nil {
		return notFound(err, "group %q", slug)
	}
	if err := s.groups.Delete(ctx, g.ID); err != nil {
		return notFound(err, "group %q", slug)
	}
	// 缓存页里带有分组信息
	return invalidateTimeline(ctx, s.cache)
}
