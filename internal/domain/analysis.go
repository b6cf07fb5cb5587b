package domain

// AnalysisJob 是交班后投递到消息队列的分析任务
type AnalysisJob struct {
	ShiftID string `json:"shiftId"`
}

// ShiftReportMailData 是交班报告邮件模板的数据
type ShiftReportMailData struct {
	UserName     string
	Date         string
	ExpectedCash string
	ActualCash   string
	Discrepancy  string
	TotalRevenue string
	Analysis     string
}
