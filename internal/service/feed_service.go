package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/d60-Lab/blog-feed/internal/cache"
	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/pagination"
	"github.com/d60-Lab/blog-feed/internal/repository"
	"github.com/d60-Lab/blog-feed/pkg/logger"
)

// GroupTimeline 分组页
type GroupTimeline struct {
	Group    model.Group    `json:"group"`
	Timeline model.Timeline `json:"timeline"`
}

// ProfileTimeline 作者主页
type ProfileTimeline struct {
	Author         model.User     `json:"author"`
	PostsCount     int64          `json:"posts_count"`
	FollowersCount int64          `json:"followers_count"`
	FollowingCount int64          `json:"following_count"`
	Following      bool           `json:"following"`
	Timeline       model.Timeline `json:"timeline"`
}

// PostDetail 帖子详情及评论
type PostDetail struct {
	Post             model.Post      `json:"post"`
	Comments         []model.Comment `json:"comments"`
	AuthorPostsCount int64           `json:"author_posts_count"`
}

// FeedService 时间线组合；四种视图共用 created_at DESC, id DESC 排序和分页规则，只有全局时间线走缓存
type FeedService interface {
	Global(ctx context.Context, page int) (*model.Timeline, error)
	Group(ctx context.Context, slug string, page int) (*GroupTimeline, error)
	// Profile viewerID 为 0 表示匿名访问
	Profile(ctx context.Context, username string, viewerID uint, page int) (*ProfileTimeline, error)
	Following(ctx context.Context, viewerID uint, page int) (*model.Timeline, error)
	PostDetail(ctx context.Context, postID uint) (*PostDetail, error)
}

type feedService struct {
	repos    *repository.Repositories
	cache    cache.TimelineCache
	pageSize int
}

func NewFeedService(repos *repository.Repositories, timelineCache cache.TimelineCache, pageSize int) FeedService {
	if pageSize < 1 {
		pageSize = 10
	}
	if timelineCache == nil {
		timelineCache = cache.NopTimelineCache{}
	}
	return &feedService{repos: repos, cache: timelineCache, pageSize: pageSize}
}

func (s *feedService) compose(ctx context.Context, filter repository.PostFilter, page int) (*model.Timeline, error) {
	total, err := s.repos.Posts.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	p := pagination.New(total, s.pageSize, page)
	posts := []model.Post{}
	if p.Limit() > 0 {
		items, err := s.repos.Posts.List(ctx, filter, p.Offset(), p.Limit())
		if err != nil {
			return nil, err
		}
		if items != nil {
			posts = items
		}
	}
	return &model.Timeline{Posts: posts, Page: p}, nil
}

func (s *feedService) Global(ctx context.Context, page int) (*model.Timeline, error) {
	if page < 1 {
		page = 1
	}
	// 代号必须在查库之前取得，期间发生的 Clear 会让这次写回失效
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		logger.Warn("timeline cache generation failed", zap.Error(err))
		return s.compose(ctx, repository.AllPosts(), page)
	}
	tl, ok, err := s.cache.Get(ctx, page)
	if err != nil {
		logger.Warn("timeline cache get failed", zap.Int("page", page), zap.Error(err))
	} else if ok {
		return tl, nil
	}

	tl, err = s.compose(ctx, repository.AllPosts(), page)
	if err != nil {
		return nil, err
	}
	// 按实际页码写入，越界页码不会产生新的缓存键
	if err := s.cache.Set(ctx, gen, tl.Page.Number, tl); err != nil {
		logger.Warn("timeline cache set failed", zap.Int("page", tl.Page.Number), zap.Error(err))
	}
	return tl, nil
}

func (s *feedService) Group(ctx context.Context, slug string, page int) (*GroupTimeline, error) {
	group, err := s.repos.Groups.GetBySlug(ctx, slug)
	if err != nil {
		return nil, notFound(err, "group %q", slug)
	}
	tl, err := s.compose(ctx, repository.ByGroup(group.ID), page)
	if err != nil {
		return nil, err
	}
	return &GroupTimeline{Group: *group, Timeline: *tl}, nil
}

func (s *feedService) Profile(ctx context.Context, username string, viewerID uint, page int) (*ProfileTimeline, error) {
	author, err := s.repos.Users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user %q", username)
	}
	tl, err := s.compose(ctx, repository.ByAuthor(author.ID), page)
	if err != nil {
		return nil, err
	}
	followers, err := s.repos.Follows.CountFollowers(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	followings, err := s.repos.Follows.CountFollowings(ctx, author.ID)
	if err != nil {
		return nil, err
	}
	following := false
	if viewerID != 0 && viewerID != author.ID {
		if following, err = s.repos.Follows.Exists(ctx, viewerID, author.ID); err != nil {
			return nil, err
		}
	}
	return &ProfileTimeline{
		Author:         *author,
		PostsCount:     tl.Page.TotalItems,
		FollowersCount: followers,
		FollowingCount: followings,
		Following:      following,
		Timeline:       *tl,
	}, nil
}

func (s *feedService) Following(ctx context.Context, viewerID uint, page int) (*model.Timeline, error) {
	return s.compose(ctx, repository.ByFollowedAuthors(viewerID), page)
}

func (s *feedService) PostDetail(ctx context.Context, postID uint) (*PostDetail, error) {
	post, err := s.repos.Posts.Get(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post %d", postID)
	}
	comments, err := s.repos.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []model.Comment{}
	}
	cnt, err := s.repos.Posts.Count(ctx, repository.ByAuthor(post.AuthorID))
	if err != nil {
		return nil, err
	}
	return &PostDetail{Post: *post, Comments: comments, AuthorPostsCount: cnt}, nil
}
