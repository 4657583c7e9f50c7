package service

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/pagination"
	"github.com/d60-Lab/blog-feed/internal/repository"
	"github.com/d60-Lab/blog-feed/pkg/logger"
)

// FollowingList 一页关注的作者 ID；Page 为越界钳制后的实际页码
type FollowingList struct {
	Page      int    `json:"page"`
	PageSize  int    `json:"page_size"`
	AuthorIDs []uint `json:"list"`
}

// RelationshipService 关注关系
type RelationshipService interface {
	// Follow 幂等；关注自己静默忽略
	Follow(ctx context.Context, followerID uint, username string) error
	// Unfollow 未关注时返回 ErrNotFound
	Unfollow(ctx context.Context, followerID uint, username string) error
	IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error)
	ListFollowing(ctx context.Context, userID uint, page, pageSize int) (*FollowingList, error)
}

type relationshipService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
}

func NewRelationshipService(users repository.UserRepository, follows repository.FollowRepository) RelationshipService {
	return &relationshipService{users: users, follows: follows}
}

func (s *relationshipService) resolve(ctx context.Context, username string) (*model.User, error) {
	author, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, notFound(err, "user %q", username)
	}
	return author, nil
}

func (s *relationshipService) Follow(ctx context.Context, followerID uint, username string) error {
	if err := requireActor(ctx, s.users, followerID); err != nil {
		return err
	}
	author, err := s.resolve(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == followerID {
		logger.Debug("ignore self follow", zap.Uint("user", followerID))
		return nil
	}
	created, err := s.follows.Create(ctx, followerID, author.ID)
	if err != nil {
		return fmt.Errorf("create follow: %w", err)
	}
	if !created {
		logger.Debug("follow already exists", zap.Uint("follower", followerID), zap.Uint("author", author.ID))
	}
	return nil
}

func (s *relationshipService) Unfollow(ctx context.Context, followerID uint, username string) error {
	author, err := s.resolve(ctx, username)
	if err != nil {
		return err
	}
	if author.ID == followerID {
		return nil
	}
	n, err := s.follows.Delete(ctx, followerID, author.ID)
	if err != nil {
		return fmt.Errorf("delete follow: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: user %d does not follow %q", ErrNotFound, followerID, username)
	}
	return nil
}

func (s *relationshipService) IsFollowing(ctx context.Context, followerID, authorID uint) (bool, error) {
	if followerID == 0 || followerID == authorID {
		return false, nil
	}
	return s.follows.Exists(ctx, followerID, authorID)
}

func (s *relationshipService) ListFollowing(ctx context.Context, userID uint, page, pageSize int) (*FollowingList, error) {
	if pageSize < 1 {
		pageSize = 10
	}
	total, err := s.follows.CountFollowings(ctx, userID)
	if err != nil {
		return nil, err
	}
	p := pagination.New(total, pageSize, page)
	items, err := s.follows.ListFollowings(ctx, userID, p.Offset(), p.Size)
	if err != nil {
		return nil, err
	}
	return &FollowingList{
		Page:      p.Number,
		PageSize:  p.Size,
		AuthorIDs: lo.Map(items, func(it *model.Follow, _ int) uint { return it.AuthorID }),
	}, nil
}
