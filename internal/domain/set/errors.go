package set

import (
	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
)

// ErrSetNotFound 系列不存在
var ErrSetNotFound = apperrors.New(apperrors.ErrCodeSetNotFound, "set not found")
