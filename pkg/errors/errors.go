// Package errors 提供统一错误类型与哨兵错误。
//
// 两层结构:
//   - L1 哨兵错误: 分类 (ErrInvalidInput / ErrForbidden / ErrNotFound ...)，决定 HTTP 状态码
//   - L2 AppError: 带 Op + Code + Message + Detail 的应用级错误，Code 为稳定的机器可读拒绝码
package errors

import (
	"errors"
	"fmt"
)

// ========================================
// L1 哨兵错误 (Sentinel Errors)
// ========================================

var (
	// ErrNotFound 资源不存在
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput 输入参数无效
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden 策略拒绝 (系统目录、管理共享、无权限)
	ErrForbidden = errors.New("forbidden")

	// ErrUnavailable 依赖未配置或不可用 (如未配置数据库)
	ErrUnavailable = errors.New("unavailable")

	// ErrInternal 内部错误
	ErrInternal = errors.New("internal error")

	// ErrTimeout 操作超时
	ErrTimeout = errors.New("timeout")

	// ErrReadOnly 只读查询校验失败
	ErrReadOnly = errors.New("read-only violation")
)

// ========================================
// L2 AppError (应用级错误)
// ========================================

// AppError 应用级错误，带操作上下文。
type AppError struct {
	Op      string // 操作名，如 "PathPolicy.ValidateExport"
	Code    string // 拒绝码，如 "PATH_TRAVERSAL"
	Message string // 人类可读消息
	Detail  string // 附加信息，如命中的关键字
	Err     error  // 原始错误或分类哨兵
}

// Error 实现 error 接口。
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap 支持 errors.Is / errors.As 链式查找。
func (e *AppError) Unwrap() error {
	return e.Err
}

// ========================================
// 工厂函数
// ========================================

// New 创建无原因链的应用错误。
func New(op, message string) error {
	return &AppError{Op: op, Message: message}
}

// Newf 创建带格式化消息的应用错误。
func Newf(op, format string, args ...any) error {
	return &AppError{Op: op, Message: fmt.Sprintf(format, args...)}
}

// Wrap 包装错误并附加操作上下文。
func Wrap(err error, op string, message string) error {
	return &AppError{Op: op, Message: message, Err: err}
}

// Wrapf 用格式化消息包装错误。
func Wrapf(err error, op, format string, args ...any) error {
	return &AppError{Op: op, Message: fmt.Sprintf(format, args...), Err: err}
}

// Reject 创建带拒绝码的策略错误。kind 为分类哨兵。
func Reject(kind error, op, code, message string) *AppError {
	return &AppError{Op: op, Code: code, Message: message, Err: kind}
}

// WithDetail 附加 Detail 并返回自身，便于链式构造。
func (e *AppError) WithDetail(detail string) *AppError {
	e.Detail = detail
	return e
}

// CodeOf 返回错误链上第一个非空 Code；无则返回 ""。
func CodeOf(err error) string {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return ""
		}
		if appErr.Code != "" {
			return appErr.Code
		}
		err = appErr.Err
	}
	return ""
}

// DetailOf 返回错误链上第一个非空 Detail。
func DetailOf(err error) string {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return ""
		}
		if appErr.Detail != "" {
			return appErr.Detail
		}
		err = appErr.Err
	}
	return ""
}

// MessageOf 返回带 Code 的那一层的 Message；无 Code 时返回 ""。
func MessageOf(err error) string {
	for err != nil {
		var appErr *AppError
		if !errors.As(err, &appErr) {
			return ""
		}
		if appErr.Code != "" {
			return appErr.Message
		}
		err = appErr.Err
	}
	return ""
}

// Is / As 转发标准库，调用方无需同时 import 两个 errors 包。
func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }
