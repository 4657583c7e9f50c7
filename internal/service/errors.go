package service

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

var (
	// ErrNotFound 引用的实体、slug 或用户名不存在
	ErrNotFound = errors.New("not found")
	// ErrForbidden 操作者不是资源所有者
	ErrForbidden = errors.New("forbidden")
	// ErrValidation 创建/编辑的输入不合法
	ErrValidation = errors.New("validation failed")
	// ErrConflict 唯一性冲突
	ErrConflict = errors.New("conflict")
)

var slugPattern = regexp.MustCompile(`^[-a-zA-Z0-9_]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("slug", func(fl validator.FieldLevel) bool {
		return slugPattern.MatchString(fl.Field().String())
	})
	return v
}

// validateStruct 将 validator 的错误转换为 ErrValidation
func validateStruct(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	msgs := lo.Map(verrs, func(fe validator.FieldError, _ int) string {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			return field + " is required"
		case "max":
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		case "slug":
			return field + " may only contain letters, digits, hyphens and underscores"
		default:
			return fmt.Sprintf("%s failed %s", field, fe.Tag())
		}
	})
	return fmt.Errorf("%w: %s", ErrValidation, strings.Join(msgs, "; "))
}

// notFound 把 gorm 的 ErrRecordNotFound 翻译为 ErrNotFound，其余错误原样返回
func notFound(err error, format string, args ...any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return err
}
