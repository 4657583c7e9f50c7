package model

import "github.com/d60-Lab/blog-feed/internal/pagination"

// Timeline 一页已排序的帖子及分页信息；全局时间线缓存的就是它
type Timeline struct {
	Posts []Post          `json:"posts"`
	Page  pagination.Page `json:"page"`
}
