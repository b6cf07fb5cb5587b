// Package reconcile 实现交班对账的全部算术，纯函数，不会失败。
package reconcile

import "github.com/shopspring/decimal"

// MatchStatus 是与外部收银系统核对的结果
type MatchStatus string

const (
	// 未录入外部系统数据（nil 或 <= 0 都视为未录入，
	// 0 不作为"恰好持平"的有效值）
	MatchPending  MatchStatus = "待录入"
	MatchBalanced MatchStatus = "匹配"
	// 本系统记录的现金+刷卡总额高于外部系统
	MatchSurplus  MatchStatus = "盈余"
	MatchShortage MatchStatus = "短缺"
)

type Input struct {
	StartingCash  decimal.Decimal
	CashSales     decimal.Decimal
	CardSales     decimal.Decimal
	TransferSales decimal.Decimal
	Expenses      decimal.Decimal
	ActualCash    decimal.Decimal

	// 外部系统录入的销售总额，nil 表示未录入
	ExternalSystemData *decimal.Decimal
}

type Result struct {
	ExpectedCash decimal.Decimal
	// 正数为盈余，负数为短款，零为完全相符
	Discrepancy  decimal.Decimal
	TotalRevenue decimal.Decimal

	// 与外部系统核对的部分，只用于展示，不作为独立字段持久化
	SystemTotal decimal.Decimal
	MatchDiff   decimal.Decimal
	MatchStatus MatchStatus
}

func Calculate(in Input) Result {
	expected := in.StartingCash.Add(in.CashSales).Sub(in.Expenses)

	result := Result{
		ExpectedCash: expected,
		Discrepancy:  in.ActualCash.Sub(expected),
		TotalRevenue: in.CashSales.Add(in.CardSales).Add(in.TransferSales),
		SystemTotal:  in.CashSales.Add(in.CardSales),
	}

	if in.ExternalSystemData == nil || !in.ExternalSystemData.IsPositive() {
		result.MatchStatus = MatchPending
		return result
	}

	// 符号约定与 Discrepancy 相反：正数表示本系统记录多于外部参考值
	result.MatchDiff = result.SystemTotal.Sub(*in.ExternalSystemData)
	switch {
	case result.MatchDiff.IsZero():
		result.MatchStatus = MatchBalanced
	case result.MatchDiff.IsPositive():
		result.MatchStatus = MatchSurplus
	default:
		result.MatchStatus = MatchShortage
	}

	return result
}
