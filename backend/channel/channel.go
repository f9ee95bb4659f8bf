// Package channel is the host request/response boundary: a named set of methods invoked
// with a key/value argument map.
package channel

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"proxymanager/backend/domain"
)

// Status 调用结果类型
type Status string

const (
	StatusSuccess        Status = "success"
	StatusError          Status = "error"
	StatusNotImplemented Status = "notImplemented"
)

// Error codes carried by StatusError responses.
const (
	CodeInvalidArgument = "invalid_argument"
	CodeInternal        = "internal"
)

// MethodCall 一次方法调用
type MethodCall struct {
	Method    string    `json:"method"`
	Arguments Arguments `json:"arguments,omitempty"`
}

// Response 调用结果。Result 仅在 success 时有意义，可以为空。
type Response struct {
	Status  Status `json:"status"`
	Result  any    `json:"result,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Arguments is the key/value argument map of a call.
type Arguments map[string]any

// String returns the string argument key or an ErrInvalidArgument error when it is
// missing or not a string.
func (a Arguments) String(key string) (string, error) {
	raw, ok := a[key]
	if !ok {
		return "", fmt.Errorf("%w: missing %q", domain.ErrInvalidArgument, key)
	}
	s, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: %q must be a string, got %T", domain.ErrInvalidArgument, key, raw)
	}
	return s, nil
}

// Handler 方法实现；返回值作为 success 的 Result
type Handler func(ctx context.Context, args Arguments) (any, error)

// Channel 方法分发器
type Channel struct {
	name string
	log  *zap.Logger

	mu       sync.RWMutex
	handlers map[string]Handler
}

func New(name string, logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{
		name:     name,
		log:      logger.Named("Channel").With(zap.String("channel", name)),
		handlers: make(map[string]Handler),
	}
}

func (ch *Channel) Name() string { return ch.name }

// Register binds method to h, replacing any previous handler.
func (ch *Channel) Register(method string, h Handler) {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	ch.handlers[method] = h
}

// Invoke dispatches call. Unknown methods answer notImplemented; handler errors answer
// error with an invalid_argument or internal code.
func (ch *Channel) Invoke(ctx context.Context, call MethodCall) Response {
	ch.mu.RLock()
	h, ok := ch.handlers[call.Method]
	ch.mu.RUnlock()
	if !ok {
		ch.log.Debug("method not implemented", zap.String("method", call.Method))
		return Response{Status: StatusNotImplemented}
	}

	result, err := h(ctx, call.Arguments)
	if err != nil {
		code := CodeInternal
		if errors.Is(err, domain.ErrInvalidArgument) {
			code = CodeInvalidArgument
		}
		ch.log.Warn("method failed", zap.String("method", call.Method), zap.String("code", code), zap.Error(err))
		return Response{Status: StatusError, Code: code, Message: err.Error()}
	}
	return Response{Status: StatusSuccess, Result: result}
}
