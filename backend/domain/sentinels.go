package domain

import "errors"

var (
	// ErrInvalidArgument 请求参数缺失或类型错误
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrUnknownChannel 未注册的 channel 名称
	ErrUnknownChannel = errors.New("unknown channel")
)
