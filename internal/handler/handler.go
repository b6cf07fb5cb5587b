package handler

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/locales/zh"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	zh_translations "github.com/go-playground/validator/v10/translations/zh"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/store"
)

type Handler struct {
	validate        *validator.Validate
	config          *config.Config
	store           *store.Store
	translator      ut.Translator
	analysisChannel *amqp.Channel

	Mux *chi.Mux
}

func NewHandler(cfg *config.Config, st *store.Store, analysisCh *amqp.Channel) (*Handler, error) {
	validate := validator.New(validator.WithRequiredStructEnabled())
	zh := zh.New()
	uni := ut.New(zh, zh)
	trans, _ := uni.GetTranslator("zh")
	if err := zh_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, err
	}

	return &Handler{
		validate:        validate,
		config:          cfg,
		store:           st,
		translator:      trans,
		analysisChannel: analysisCh,

		Mux: chi.NewRouter(),
	}, nil
}

func (h *Handler) RegisterRoutes() {
	h.Mux.Use(h.logger)
	h.Mux.Use(h.recoverer)

	// 认证相关
	h.Mux.Route("/auth", func(r chi.Router) {
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Get("/session", h.Session)
	})

	// 以下 API 必须要在登录后才允许调用
	h.Mux.Group(func(r chi.Router) {
		r.Use(h.auth)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", h.GetAllUsers)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Post("/", h.CreateUser)
			r.With(h.RequiredRole([]domain.Role{domain.RoleAdmin})).Delete("/{id}", h.DeleteUser)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.With(h.currentUser).Post("/", h.CreateShift)
			r.Get("/", h.GetShifts)
			r.With(h.shiftRecord).Get("/{id}", h.GetShift)
		})

		r.Get("/dashboard/stats", h.GetDashboardStats)

		r.Route("/backup", func(r chi.Router) {
			r.Use(h.RequiredRole([]domain.Role{domain.RoleAdmin}))
			r.Get("/export", h.ExportBackup)
			r.Post("/import", h.ImportBackup)
		})
	})
}
