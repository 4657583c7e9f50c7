package model

import (
	"time"
)

// Follow 关注关系（Follower 关注 Author）
type Follow struct {
	ID         uint `gorm:"primaryKey"`
	FollowerID uint `gorm:"index:idx_follow_follower;index:idx_follow_pair,unique;not null"`
	AuthorID   uint `gorm:"index:idx_follow_author;index:idx_follow_pair,unique;not null"`
	// 复合唯一键，避免重复关注
	// idx_follow_pair = (follower_id, author_id)
	CreatedAt time.Time
}

func (Follow) TableName() string { return "follows" }
