package card

import (
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// 卡牌领域错误定义
var (
	// ErrCardNotFound 卡牌不存在
	ErrCardNotFound = apperrors.New(apperrors.ErrCodeCardNotFound, "card not found")

	// ErrEmptyCardIDs 批量查询未提供ID
	ErrEmptyCardIDs = apperrors.New(apperrors.ErrCodeInvalidParams, "card_ids must be a non-empty list")

	// ErrTooManyCardIDs 批量查询ID过多
	ErrTooManyCardIDs = apperrors.New(apperrors.ErrCodeInvalidParams, "too many card_ids")

	// ErrInvalidSortOrder 排序方向非法
	ErrInvalidSortOrder = apperrors.New(apperrors.ErrCodeInvalidSortField, "sort_order must be asc or desc")
)

// InvalidColor 非法颜色代码
func InvalidColor(color string) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeInvalidColor, "invalid color: %s", color)
}

// InvalidSortField 不在白名单中的排序字段
func InvalidSortField(field string) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeInvalidSortField, "invalid sort_by field: %s", field)
}

// InvalidPagination 分页参数非法
func InvalidPagination(format string, args ...interface{}) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeInvalidParams, format, args...)
}
