package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/d60-Lab/blog-feed/internal/model"
	"github.com/d60-Lab/blog-feed/internal/repository"
)

type commentInput struct {
	Text string `validate:"required"`
}

// CommentService 评论；评论不影响帖子列表，不清缓存
type CommentService interface {
	Add(ctx context.Context, actorID, postID uint, text string) (*model.Comment, error)
}

type commentService struct {
	repos *repository.Repositories
}

func NewCommentService(repos *repository.Repositories) CommentService {
	return &commentService{repos: repos}
}

func (s *commentService) Add(ctx context.Context, actorID, postID uint, text string) (*model.Comment, error) {
	in := commentInput{Text: strings.TrimSpace(text)}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.repos.Posts.Get(ctx, postID); err != nil {
		return nil, notFound(err, "post %d", postID)
	}
	actor, err := s.repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, notFound(err, "user %d", actorID)
	}

	comment := &model.Comment{PostID: postID, AuthorID: actorID, Text: in.Text}
	if err := s.repos.Comments.Create(ctx, comment); err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}
	comment.Author = *actor
	return comment, nil
}
