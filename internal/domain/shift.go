package domain

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ShiftRecord 表示一次已经交班的收银班次，创建后不可修改，
// 只有 AIAnalysis 会在事后由分析 worker 补充。
type ShiftRecord struct {
	ID       string    `json:"id"`
	UserID   string    `json:"userId"`
	UserName string    `json:"userName"` // 创建时的姓名快照，之后不再重新解析
	Date     time.Time `json:"date"`
	// 系统没有真正记录开班时间，固定取交班前 8 小时
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`

	StartingCash decimal.Decimal `json:"startingCash"`

	CashSales     decimal.Decimal `json:"cashSales"`
	CardSales     decimal.Decimal `json:"cardSales"`
	TransferSales decimal.Decimal `json:"transferSales"`

	// 外部收银系统中录入的销售总额，nil 表示未录入
	ExternalSystemData *decimal.Decimal `json:"externalSystemData,omitempty"`

	Expenses     decimal.Decimal `json:"expenses"`
	ExpensesNote string          `json:"expensesNote,omitempty"`

	ExpectedCash decimal.Decimal `json:"expectedCash"`
	ActualCash   decimal.Decimal `json:"actualCash"`
	Discrepancy  decimal.Decimal `json:"discrepancy"`

	Notes      string `json:"notes"`
	AIAnalysis string `json:"aiAnalysis,omitempty"`
}

// NewShiftID 按创建时刻的毫秒时间戳生成班次 ID
func NewShiftID(now time.Time) string {
	return strconv.FormatInt(now.UnixMilli(), 10)
}
