package model

import "time"

// Comment 评论，随帖子级联删除
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    uint      `json:"post_id" gorm:"index:idx_comment_post;not null"`
	AuthorID  uint      `json:"author_id" gorm:"not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	Author User `json:"author" gorm:"foreignKey:AuthorID"`
}

func (Comment) TableName() string { return "comments" }
