package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/store"
)

func (h *Handler) GetAllUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.LoadUsers()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取用户列表成功", users)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Name     string `json:"name" validate:"required"`
		Password string `json:"password" validate:"required"`
		Role     string `json:"role" validate:"required,oneof=管理员 收银员"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := domain.User{
		ID:       store.NewUserID(),
		Username: req.Username,
		Name:     req.Name,
		Password: req.Password,
		Role:     domain.Role(req.Role),
	}

	if err := h.store.AddUser(user); err != nil {
		switch {
		case errors.Is(err, store.ErrDuplicateUsername):
			h.errorResponse(w, r, "用户名已存在")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "用户创建成功", user)
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.store.DeleteUser(id); err != nil {
		switch {
		case errors.Is(err, store.ErrProtectedAccount):
			h.errorResponse(w, r, "禁止删除初始管理员")
		default:
			h.internalServerError(w, r, err)
		}
		return
	}

	h.successResponse(w, r, "用户删除成功", nil)
}
