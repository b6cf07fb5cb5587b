package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/backup"
)

func (h *Handler) ExportBackup(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.LoadUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	shifts, err := h.store.LoadShifts()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	data, err := backup.Serialize(users, shifts)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	filename := fmt.Sprintf("shift-ledger-backup-%s.json", time.Now().Format("2006-01-02"))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)

	if _, err := w.Write(data); err != nil {
		h.logInternalServerError(r, err)
	}
}

// ImportBackup 整体替换现有数据，是否向用户二次确认由前端负责
func (h *Handler) ImportBackup(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(r.Body)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	users, shifts, err := backup.Deserialize(data)
	if err != nil {
		switch {
		case errors.Is(err, backup.ErrInvalidBackup):
			h.errorResponse(w, r, "备份文件无效，请确认文件正确且未被修改")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	if err := h.store.ReplaceAll(users, shifts); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "备份恢复成功", map[string]any{
		"userCount":  len(users),
		"shiftCount": len(shifts),
	})
}
