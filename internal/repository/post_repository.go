package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/d60-Lab/blog-feed/internal/model"
)

// ErrGroupNotFound 帖子引用的分组不存在
var ErrGroupNotFound = errors.New("group not found")

type postFilterKind int

const (
	filterAll postFilterKind = iota
	filterAuthor
	filterGroup
	filterFollowedAuthors
)

// PostFilter 帖子查询条件，只能通过下面的构造函数得到
type PostFilter struct {
	kind postFilterKind
	id   uint
}

// AllPosts 全部帖子
func AllPosts() PostFilter { return PostFilter{kind: filterAll} }

// ByAuthor 某作者的帖子
func ByAuthor(authorID uint) PostFilter { return PostFilter{kind: filterAuthor, id: authorID} }

// ByGroup 某分组的帖子
func ByGroup(groupID uint) PostFilter { return PostFilter{kind: filterGroup, id: groupID} }

// ByFollowedAuthors followerID 所关注作者的帖子
func ByFollowedAuthors(followerID uint) PostFilter {
	return PostFilter{kind: filterFollowedAuthors, id: followerID}
}

func (f PostFilter) scope(tx *gorm.DB) *gorm.DB {
	switch f.kind {
	case filterAuthor:
		return tx.Where("posts.author_id = ?", f.id)
	case filterGroup:
		return tx.Where("posts.group_id = ?", f.id)
	case filterFollowedAuthors:
		sub := tx.Session(&gorm.Session{NewDB: true}).
			Model(&model.Follow{}).
			Select("author_id").
			Where("follower_id = ?", f.id)
		return tx.Where("posts.author_id IN (?)", sub)
	default:
		return tx
	}
}

// PostRepository 帖子仓储；所有列表按 created_at DESC, id DESC 排序
type PostRepository interface {
	// Create 在同一事务内确认分组存在并写入
	Create(ctx context.Context, post *model.Post) error
	Get(ctx context.Context, id uint) (*model.Post, error)
	// Update 在同一事务内加载、回调修改并保存；回调返回错误则整体回滚。分组变更时在事务内确认分组存在
	Update(ctx context.Context, id uint, mutate func(post *model.Post) error) (*model.Post, error)
	// Delete 在同一事务内加载、校验并删除帖子及其评论
	Delete(ctx context.Context, id uint, guard func(post *model.Post) error) error
	Count(ctx context.Context, filter PostFilter) (int64, error)
	List(ctx context.Context, filter PostFilter, offset, limit int) ([]model.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireGroup(tx, post.GroupID); err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Create(post).Error
	})
}

func (r *postRepository) Get(ctx context.Context, id uint) (*model.Post, error) {
	return loadPost(r.db.WithContext(ctx), id)
}

func (r *postRepository) Update(ctx context.Context, id uint, mutate func(post *model.Post) error) (*model.Post, error) {
	var updated *model.Post
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(lockingClause(tx, "UPDATE")...).Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		before := post.GroupID
		if err := mutate(&post); err != nil {
			return err
		}
		if post.GroupID != nil && (before == nil || *before != *post.GroupID) {
			if err := requireGroup(tx, post.GroupID); err != nil {
				return err
			}
		}
		if err := tx.Omit(clause.Associations).Save(&post).Error; err != nil {
			return err
		}
		p, err := loadPost(tx, id)
		if err != nil {
			return err
		}
		updated = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (r *postRepository) Delete(ctx context.Context, id uint, guard func(post *model.Post) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var post model.Post
		if err := tx.Clauses(lockingClause(tx, "UPDATE")...).Where("id = ?", id).First(&post).Error; err != nil {
			return err
		}
		if guard != nil {
			if err := guard(&post); err != nil {
				return err
			}
		}
		if err := tx.Where("post_id = ?", id).Delete(&model.Comment{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.Post{}).Error
	})
}

func (r *postRepository) Count(ctx context.Context, filter PostFilter) (int64, error) {
	var cnt int64
	err := r.db.WithContext(ctx).
		Model(&model.Post{}).
		Scopes(filter.scope).
		Count(&cnt).Error
	return cnt, err
}

func (r *postRepository) List(ctx context.Context, filter PostFilter, offset, limit int) ([]model.Post, error) {
	var res []model.Post
	err := r.db.WithContext(ctx).
		Preload("Author").
		Preload("Group").
		Scopes(filter.scope).
		Order("posts.created_at DESC, posts.id DESC").
		Offset(offset).
		Limit(limit).
		Find(&res).Error
	return res, err
}

func loadPost(tx *gorm.DB, id uint) (*model.Post, error) {
	var post model.Post
	if err := tx.Preload("Author").Preload("Group").Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// requireGroup 以共享锁读取分组，分组删除需等本事务提交后才能置空帖子
func requireGroup(tx *gorm.DB, groupID *uint) error {
	if groupID == nil {
		return nil
	}
	var g model.Group
	err := tx.Clauses(lockingClause(tx, "SHARE")...).Where("id = ?", *groupID).First(&g).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrGroupNotFound
	}
	return err
}

// lockingClause sqlite 不支持行锁，事务本身已串行
func lockingClause(tx *gorm.DB, strength string) []clause.Expression {
	if tx.Dialector.Name() == "sqlite" {
		return nil
	}
	return []clause.Expression{clause.Locking{Strength: strength}}
}
