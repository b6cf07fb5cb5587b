// Package backup 实现全量状态的 JSON 备份文档编解码。
package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
)

// SystemVersion 写入备份文档，仅供人工参考，不用于迁移判断
const SystemVersion = "1.1"

var ErrInvalidBackup = errors.New("备份文件无效")

// Document 是备份文件的顶层结构，读取时忽略未知键
type Document struct {
	Users         []domain.User        `json:"users"`
	Shifts        []domain.ShiftRecord `json:"shifts"`
	ExportDate    time.Time            `json:"exportDate"`
	SystemVersion string               `json:"systemVersion"`
}

// Serialize 输出缩进的 JSON，方便用户自行检查备份内容
func Serialize(users []domain.User, shifts []domain.ShiftRecord) ([]byte, error) {
	if users == nil {
		users = []domain.User{}
	}
	if shifts == nil {
		shifts = []domain.ShiftRecord{}
	}

	doc := Document{
		Users:         users,
		Shifts:        shifts,
		ExportDate:    time.Now(),
		SystemVersion: SystemVersion,
	}

	return json.MarshalIndent(doc, "", "  ")
}

// Deserialize 校验文档结构：users 键缺失或不是数组时判定文档无效，
// shifts 键缺失时视为空历史，备份仍然有效。后续的整体替换由调用方执行。
func Deserialize(data []byte) ([]domain.User, []domain.ShiftRecord, error) {
	var raw struct {
		Users  json.RawMessage `json:"users"`
		Shifts json.RawMessage `json:"shifts"`
	}

	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidBackup, "无法解析 JSON")
	}

	if len(raw.Users) == 0 || string(raw.Users) == "null" {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidBackup, "缺少用户数据")
	}

	var users []domain.User
	if err := json.Unmarshal(raw.Users, &users); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrInvalidBackup, "用户数据格式错误")
	}

	shifts := []domain.ShiftRecord{}
	if len(raw.Shifts) > 0 && string(raw.Shifts) != "null" {
		if err := json.Unmarshal(raw.Shifts, &shifts); err != nil {
			return nil, nil, fmt.Errorf("%w: %s", ErrInvalidBackup, "班次数据格式错误")
		}
	}

	return users, shifts, nil
}
