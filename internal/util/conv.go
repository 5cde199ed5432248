package util

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// QueryInt 读取整型查询参数，缺失或非法时返回 def
func QueryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return def
	}
	return v
}

// Pagination reads page and limit, clamped to sane bounds.
func Pagination(c *gin.Context) (page, limit int) {
	page = QueryInt(c, "page", 1)
	if page < 1 {
		page = 1
	}
	limit = QueryInt(c, "limit", defaultPageLimit)
	if limit < 1 || limit > maxPageLimit {
		limit = defaultPageLimit
	}
	return page, limit
}
