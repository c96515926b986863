package inventory

import (
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// 库存领域错误定义
var (
	// ErrInvalidRow CSV行无效(数量、闪卡标记、列数)
	ErrInvalidRow = apperrors.New(apperrors.ErrCodeInvalidRow, "invalid row")

	// ErrInvalidQuantity 数量非法
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidQuantity, "quantities must be non-negative integers")

	// ErrInvalidBucket 未知的库存桶
	ErrInvalidBucket = apperrors.New(apperrors.ErrCodeInvalidBucket, "bucket must be collection or kiosk")

	// ErrNegativeCounter 增量会使计数变为负数
	ErrNegativeCounter = apperrors.New(apperrors.ErrCodeInvalidQuantity, "counter would become negative")
)

// InvalidRowf 带原因的InvalidRow错误
func InvalidRowf(format string, args ...interface{}) *apperrors.AppError {
	return apperrors.Newf(apperrors.ErrCodeInvalidRow, format, args...)
}
