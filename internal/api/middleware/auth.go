package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/blog-feed/pkg/response"
)

const actorKey = "actor_id"

// Auth 校验上游签发的 HS256 token，subject 为用户 ID。required 为 false 时允许匿名访问
func Auth(secret string, required bool) gin.HandlerFunc {
	key := []byte(secret)
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			if required {
				response.Unauthorized(c, "missing bearer token")
				return
			}
			c.Next()
			return
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			response.Unauthorized(c, "malformed authorization header")
			return
		}
		actorID, err := parseActor(raw, key)
		if err != nil {
			response.Unauthorized(c, err.Error())
			return
		}
		c.Set(actorKey, actorID)
		c.Next()
	}
}

func parseActor(raw string, key []byte) (uint, error) {
	token, err := jwt.ParseWithClaims(raw, &jwt.RegisteredClaims{}, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return 0, err
	}
	sub, err := token.Claims.GetSubject()
	if err != nil {
		return 0, err
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid subject")
	}
	return uint(id), nil
}

// ActorID 当前请求的操作者，匿名为 0
func ActorID(c *gin.Context) uint {
	if v, ok := c.Get(actorKey); ok {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// IssueToken 签发测试/本地调试用 token
func IssueToken(secret string, userID uint) (string, error) {
	claims := jwt.RegisteredClaims{Subject: strconv.FormatUint(uint64(userID), 10)}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
