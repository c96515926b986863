package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/xiebiao/mtgkiosk/pkg/errors"
	"github.com/xiebiao/mtgkiosk/pkg/logger"
)

// ErrorBody 错误响应结构
// 设计说明：
// 1. 所有错误统一为{"error": "..."}，HTTP状态码由AppError错误码映射
// 2. 5xx错误只返回通用提示，内部原因写日志
type ErrorBody struct {
	Error string `json:"error" example:"card not found"`
}

// Success 成功响应（200，直接输出数据本身）
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created 201响应
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// NoContent 204响应
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error 错误响应（自动处理AppError）
// 用法：
//
//	result, err := uc.Execute(ctx, req)
//	if err != nil {
//	    response.Error(c, err)
//	    return
//	}
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	message := appErr.Message
	if status >= http.StatusInternalServerError {
		logger.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("code", appErr.Code).
			Msg("请求处理失败")
		message = "internal server error"
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

// ErrorWithStatus 自定义状态码和消息
func ErrorWithStatus(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, ErrorBody{Error: message})
}

// =========================================
// 分页响应结构
// =========================================

// PageData 分页数据封装
type PageData struct {
	Items       interface{} `json:"items"`
	Total       int64       `json:"total"`
	Pages       int         `json:"pages"`
	CurrentPage int         `json:"current_page"`
}

// NewPageData 创建分页数据
// 页码超过总页数时items为空列表，total/pages保持正确
func NewPageData(items interface{}, total int64, page, pageSize int) *PageData {
	return &PageData{
		Items:       items,
		Total:       total,
		Pages:       TotalPages(total, pageSize),
		CurrentPage: page,
	}
}

// TotalPages 计算总页数
func TotalPages(total int64, pageSize int) int {
	if pageSize <= 0 || total <= 0 {
		return 0
	}
	pages := int(total) / pageSize
	if int(total)%pageSize != 0 {
		pages++
	}
	return pages
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, items interface{}, total int64, page, pageSize int) {
	Success(c, NewPageData(items, total, page, pageSize))
}
