package storage

import "errors"

// 固定的存储键，所有持久化状态都是这三个键下的 JSON 文档
const (
	KeyUsers   = "shift_ledger:v1:users"
	KeyShifts  = "shift_ledger:v1:shifts"
	KeySession = "shift_ledger:v1:session"
)

var ErrKeyNotFound = errors.New("键不存在")

// Provider 是按键存取文本文档的存储后端
type Provider interface {
	Get(key string) (string, error)
	Set(key string, value string) error
	Remove(key string) error
}
