// Package analysis 在交班记录保存成功之后生成自然语言的班次小结。
// 任何失败都不允许影响已经完成的保存，调用方负责把失败降级为兜底文案。
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"google.golang.org/genai"
)

// Fallback 是分析失败或服务未配置时写入记录的兜底文案
const Fallback = "分析服务暂不可用。"

type Analyzer interface {
	Analyze(ctx context.Context, shift *domain.ShiftRecord) (string, error)
}

type GeminiAnalyzer struct {
	client *genai.Client
	model  string
}

func NewGeminiAnalyzer(ctx context.Context, cfg *config.Config) (*GeminiAnalyzer, error) {
	if cfg.Analysis.APIKey == "" {
		return nil, errors.New("缺少分析服务的 API 密钥")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: cfg.Analysis.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("无法创建分析服务客户端: %w", err)
	}

	return &GeminiAnalyzer{
		client: client,
		model:  cfg.Analysis.Model,
	}, nil
}

func (a *GeminiAnalyzer) Analyze(ctx context.Context, shift *domain.ShiftRecord) (string, error) {
	resp, err := a.client.Models.GenerateContent(ctx, a.model, genai.Text(buildPrompt(shift)), nil)
	if err != nil {
		return "", fmt.Errorf("分析请求失败: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "未能生成分析。", nil
	}
	return text, nil
}

func buildPrompt(shift *domain.ShiftRecord) string {
	notes := shift.Notes
	if notes == "" {
		notes = "无"
	}

	b := &strings.Builder{}
	fmt.Fprintln(b, "你是一名智能会计助手。请分析下面这次交班的数据，为店长写一份简短、专业的中文报告。")
	fmt.Fprintln(b)
	fmt.Fprintln(b, "数据：")
	fmt.Fprintf(b, "- 员工：%s\n", shift.UserName)
	fmt.Fprintf(b, "- 日期：%s\n", shift.Date.Format("2006-01-02"))
	fmt.Fprintf(b, "- 现金销售：%s\n", shift.CashSales.StringFixed(2))
	fmt.Fprintf(b, "- 刷卡销售：%s\n", shift.CardSales.StringFixed(2))
	fmt.Fprintf(b, "- 转账销售：%s\n", shift.TransferSales.StringFixed(2))
	fmt.Fprintf(b, "- 零星支出：%s\n", shift.Expenses.StringFixed(2))
	fmt.Fprintf(b, "- 钱箱差额（正为盈余，负为短款）：%s\n", shift.Discrepancy.StringFixed(2))
	fmt.Fprintf(b, "- 员工备注：%s\n", notes)
	fmt.Fprintln(b)
	fmt.Fprintln(b, "要求：")
	fmt.Fprintln(b, "1. 简要概括本班次的经营情况。")
	fmt.Fprintln(b, "2. 如果存在短款或盈余（差额不为零），用礼貌的语气给出提醒或建议。")
	fmt.Fprintln(b, "3. 用简短清晰的段落组织文字。")

	return b.String()
}
