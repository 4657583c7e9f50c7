package repository

import "gorm.io/gorm"

// Repositories 聚合各实体仓储，便于服务层注入
type Repositories struct {
	Users    UserRepository
	Groups   GroupRepository
	Posts    PostRepository
	Comments CommentRepository
	Follows  FollowRepository
}

func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db),
		Groups:   NewGroupRepository(db),
		Posts:    NewPostRepository(db),
		Comments: NewCommentRepository(db),
		Follows:  NewFollowRepository(db),
	}
}
