package model

import "time"

// Post 帖子，作者独占；Group 为非拥有关联（删除分组时置空）
type Post struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	AuthorID  uint      `json:"author_id" gorm:"index:idx_post_author;not null"`
	GroupID   *uint     `json:"group_id" gorm:"index:idx_post_group"`
	ImageRef  string    `json:"image_ref,omitempty" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"created_at" gorm:"index:idx_post_created;autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at"`

	Author User   `json:"author" gorm:"foreignKey:AuthorID"`
	Group  *Group `json:"group,omitempty" gorm:"foreignKey:GroupID"`
}

func (Post) TableName() string { return "posts" }
