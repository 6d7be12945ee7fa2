package utils

import "github.com/google/uuid"

// NewRunID 生成一次播放的运行ID
func NewRunID() string {
	return uuid.NewString()
}
