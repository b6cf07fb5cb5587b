package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/reconcile"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/report"
)

func (h *Handler) CreateShift(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartingCash       decimal.Decimal  `json:"startingCash"`
		CashSales          decimal.Decimal  `json:"cashSales"`
		CardSales          decimal.Decimal  `json:"cardSales"`
		TransferSales      decimal.Decimal  `json:"transferSales"`
		Expenses           decimal.Decimal  `json:"expenses"`
		ExpensesNote       string           `json:"expensesNote"`
		ExternalSystemData *decimal.Decimal `json:"externalSystemData"`
		ActualCash         decimal.Decimal  `json:"actualCash"`
		Notes              string           `json:"notes"`
	}

	// 缺失的数字字段按零处理，负数和零都允许，这里不做数值校验
	if err := h.readJSON(r, &req); err != nil {
		h.badRequest(w, r, err)
		return
	}

	user := r.Context().Value(CurrentUserCtx).(*domain.User)

	result := reconcile.Calculate(reconcile.Input{
		StartingCash:       req.StartingCash,
		CashSales:          req.CashSales,
		CardSales:          req.CardSales,
		TransferSales:      req.TransferSales,
		Expenses:           req.Expenses,
		ActualCash:         req.ActualCash,
		ExternalSystemData: req.ExternalSystemData,
	})

	now := time.Now()
	shift := domain.ShiftRecord{
		ID:       domain.NewShiftID(now),
		UserID:   user.ID,
		UserName: user.Name,
		Date:     now,
		// 没有真实的开班打卡，固定按交班前 8 小时记录
		StartTime:          now.Add(-8 * time.Hour),
		EndTime:            now,
		StartingCash:       req.StartingCash,
		CashSales:          req.CashSales,
		CardSales:          req.CardSales,
		TransferSales:      req.TransferSales,
		ExternalSystemData: req.ExternalSystemData,
		Expenses:           req.Expenses,
		ExpensesNote:       req.ExpensesNote,
		ExpectedCash:       result.ExpectedCash,
		ActualCash:         req.ActualCash,
		Discrepancy:        result.Discrepancy,
		Notes:              req.Notes,
	}

	if err := h.store.SaveShift(shift); err != nil {
		h.internalServerError(w, r, err)
		return
	}

	// 保存成功之后才投递分析任务，投递失败只记录日志，
	// 不允许影响已经完成的保存
	h.publishAnalysisJob(shift.ID)

	h.successResponse(w, r, "交班成功", map[string]any{
		"shift":       shift,
		"systemTotal": result.SystemTotal,
		"matchDiff":   result.MatchDiff,
		"matchStatus": result.MatchStatus,
	})
}

func (h *Handler) publishAnalysisJob(shiftID string) {
	if h.analysisChannel == nil {
		return
	}

	data, err := json.Marshal(domain.AnalysisJob{ShiftID: shiftID})
	if err != nil {
		slog.Warn("无法序列化分析任务", "shiftId", shiftID, "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(h.config.RabbitMQ.PublishTimeout)*time.Second)
	defer cancel()

	if err := h.analysisChannel.PublishWithContext(
		ctx,
		"",
		"analysis_queue",
		true,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        data,
		},
	); err != nil {
		slog.Warn("无法投递分析任务", "shiftId", shiftID, "error", err)
	}
}

func (h *Handler) GetShifts(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.store.LoadShifts()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	filter := report.Filter{
		UserID: r.URL.Query().Get("userId"),
	}

	if v := r.URL.Query().Get("startDate"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			h.errorResponse(w, r, "开始日期格式无效")
			return
		}
		filter.StartDate = t
	}
	if v := r.URL.Query().Get("endDate"); v != "" {
		t, err := time.ParseInLocation("2006-01-02", v, time.Local)
		if err != nil {
			h.errorResponse(w, r, "结束日期格式无效")
			return
		}
		filter.EndDate = t
	}

	filtered := report.FilterShifts(shifts, filter)

	h.successResponse(w, r, "获取班次历史成功", map[string]any{
		"shifts":  filtered,
		"summary": report.SummarizeFiltered(filtered),
	})
}

func (h *Handler) GetShift(w http.ResponseWriter, r *http.Request) {
	shift := r.Context().Value(ShiftRecordCtx).(*domain.ShiftRecord)
	h.successResponse(w, r, "获取班次记录成功", shift)
}

func (h *Handler) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	shifts, err := h.store.LoadShifts()
	if err != nil {
		h.internalServerError(w, r, err)
		return
	}

	h.successResponse(w, r, "获取统计数据成功", report.ComputeDashboardStats(shifts))
}
