package handler

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AuthClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	// 验证用户名和密码，密码按设计直接明文比对
	user, ok, err := h.store.FindUserByUsername(req.Username)
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if !ok || user.Password != req.Password {
		h.errorResponse(w, r, "用户名不存在或密码错误")
		return
	}

	// 生成 JWT
	expiration := time.Now().Add(time.Duration(h.config.JWT.Expiration) * time.Second)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, AuthClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiration),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			NotBefore: jwt.NewNumericDate(time.Now()),
			Subject:   user.ID,
		},
	})
	ss, err := token.SignedString([]byte(h.config.JWT.Secret))
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 通过 http-only 的 cookie 返回给客户端
	cookie := &http.Cookie{
		Name:     "__shift_ledger_token",
		Value:    ss,
		Expires:  expiration,
		Path:     "/",
		HttpOnly: true,
		Secure:   false,
	}

	if h.config.Environment == "production" {
		cookie.Secure = true
		cookie.SameSite = http.SameSiteStrictMode
	}

	http.SetCookie(w, cookie)

	// 同时持久化当前会话指针
	if err := h.store.SaveSession(user); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "登录成功", user)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:    "__shift_ledger_token",
		Value:   "",
		Expires: time.Now().Add(-time.Hour),
		Path:    "/",
	})

	if err := h.store.ClearSession(); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "登出成功", nil)
}

func (h *Handler) Session(w http.ResponseWriter, r *http.Request) {
	user, err := h.store.LoadSession()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}
	if user == nil {
		h.errorResponse(w, r, "用户未登录")
		return
	}

	h.successResponse(w, r, "获取会话成功", user)
}
