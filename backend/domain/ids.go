package domain

import "github.com/google/uuid"

// NewOperationID 为一次 set/clear 操作生成 ID，用于日志与事件关联。
func NewOperationID() string {
	return uuid.NewString()
}
