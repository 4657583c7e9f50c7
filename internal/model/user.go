package model

import "time"

// User 外部身份的引用（只用于解析 username，不在本系统内管理）
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"type:varchar(150);uniqueIndex;not null"`
	CreatedAt time.Time `json:"created_at"`
}

func (User) TableName() string { return "users" }
