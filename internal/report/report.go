// Package report 从完整的班次集合派生仪表盘统计和历史筛选视图。
package report

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
)

// FilterAllUsers 是"不按用户筛选"的哨兵值
const FilterAllUsers = "all"

type DashboardStats struct {
	TotalSales decimal.Decimal `json:"totalSales"`
	TotalCash  decimal.Decimal `json:"totalCash"`
	TotalCard  decimal.Decimal `json:"totalCard"`
	// 只累计短款的绝对值，盈余不计入
	TotalShortage decimal.Decimal `json:"totalShortage"`
	ShiftCount    int             `json:"shiftCount"`
}

func ComputeDashboardStats(shifts []domain.ShiftRecord) DashboardStats {
	stats := DashboardStats{
		ShiftCount: len(shifts),
	}

	for _, s := range shifts {
		stats.TotalSales = stats.TotalSales.Add(s.CashSales).Add(s.CardSales).Add(s.TransferSales)
		stats.TotalCash = stats.TotalCash.Add(s.CashSales)
		stats.TotalCard = stats.TotalCard.Add(s.CardSales)
		if s.Discrepancy.IsNegative() {
			stats.TotalShortage = stats.TotalShortage.Add(s.Discrepancy.Abs())
		}
	}

	return stats
}

// Filter 的各个条件按逻辑与组合，零值表示不筛选
type Filter struct {
	StartDate time.Time
	EndDate   time.Time
	UserID    string
}

// FilterShifts 按本地时区的自然日闭区间筛选：StartDate 取当天
// 00:00:00.000，EndDate 取当天 23:59:59.999。结果保持集合原有的
// 最新在前顺序，不重新排序。
func FilterShifts(shifts []domain.ShiftRecord, f Filter) []domain.ShiftRecord {
	result := make([]domain.ShiftRecord, 0, len(shifts))

	var start, end time.Time
	if !f.StartDate.IsZero() {
		y, m, d := f.StartDate.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, f.StartDate.Location())
	}
	if !f.EndDate.IsZero() {
		y, m, d := f.EndDate.Date()
		end = time.Date(y, m, d, 23, 59, 59, 999000000, f.EndDate.Location())
	}

	for _, s := range shifts {
		if !start.IsZero() && s.Date.Before(start) {
			continue
		}
		if !end.IsZero() && s.Date.After(end) {
			continue
		}
		if f.UserID != "" && f.UserID != FilterAllUsers && s.UserID != f.UserID {
			continue
		}
		result = append(result, s)
	}

	return result
}

type FilteredSummary struct {
	TotalSales    decimal.Decimal `json:"totalSales"`
	TotalShortage decimal.Decimal `json:"totalShortage"`
	TotalExcess   decimal.Decimal `json:"totalExcess"`
}

// SummarizeFiltered 只对筛选后的子集计算，与仪表盘统计不同，
// 这里额外给出盈余合计
func SummarizeFiltered(shifts []domain.ShiftRecord) FilteredSummary {
	summary := FilteredSummary{}

	for _, s := range shifts {
		summary.TotalSales = summary.TotalSales.Add(s.CashSales).Add(s.CardSales).Add(s.TransferSales)
		switch {
		case s.Discrepancy.IsNegative():
			summary.TotalShortage = summary.TotalShortage.Add(s.Discrepancy.Abs())
		case s.Discrepancy.IsPositive():
			summary.TotalExcess = summary.TotalExcess.Add(s.Discrepancy)
		}
	}

	return summary
}
