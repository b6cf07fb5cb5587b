package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/analysis"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/domain"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/storage"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/store"
	"github.com/wneessen/go-mail"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	/**********************************************
	 * 创建 logger
	 **********************************************/
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	decimal.MarshalJSONWithoutQuotes = true

	/**********************************************
	 * 读取配置文件
	 **********************************************/
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		return
	}

	/**********************************************
	 * 创建存储后端和 store
	 **********************************************/
	var provider storage.Provider

	switch cfg.Storage.Driver {
	case "postgres":
		dbpool, err := sql.Open("pgx", cfg.Database.DSN)
		if err != nil {
			logger.Error("无法创建数据库连接池", "error", err)
			return
		}
		defer dbpool.Close()

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
		defer cancel()

		if err := dbpool.PingContext(ctx); err != nil {
			logger.Error("无法连接到数据库", "error", err)
			return
		}

		provider, err = storage.NewPostgresProvider(cfg, dbpool)
		if err != nil {
			logger.Error("无法初始化 postgres 存储", "error", err)
			return
		}
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()

		provider = storage.NewRedisProvider(cfg, rdb)
	}

	st := store.NewStore(cfg, provider)

	/**********************************************
	 * 创建分析客户端
	 **********************************************/
	var analyzer analysis.Analyzer

	gemini, err := analysis.NewGeminiAnalyzer(context.Background(), cfg)
	if err != nil {
		// 分析服务不可用时 worker 照常运行，只写入兜底文案
		logger.Warn("分析服务未配置", slog.String("error", err.Error()))
	} else {
		analyzer = gemini
	}

	/**********************************************
	 * 创建邮件客户端（可选）
	 **********************************************/
	var mailClient *mail.Client
	var reportTemplate *template.Template

	if cfg.Report.SMTP.Host != "" && cfg.Report.AdminEmail != "" {
		mailClient, err = mail.NewClient(cfg.Report.SMTP.Host,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithSSL(),
			mail.WithPort(cfg.Report.SMTP.Port),
			mail.WithUsername(cfg.Report.SMTP.Username),
			mail.WithPassword(cfg.Report.SMTP.Password),
		)
		if err != nil {
			logger.Error("无法创建邮件客户端", slog.String("error", err.Error()))
			return
		}
		defer mailClient.Close()

		// 验证邮件客户端是否连接成功
		clientDialCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Report.SMTP.DialTimeout)*time.Second)
		defer cancel()
		if err := mailClient.DialWithContext(clientDialCtx); err != nil {
			logger.Error("无法连接到邮件服务器", slog.String("error", err.Error()))
			return
		}

		reportTemplate, err = template.ParseFiles("./templates/shift_report_email.html")
		if err != nil {
			logger.Error("无法解析邮件模板", slog.String("error", err.Error()))
			return
		}
	}

	/**********************************************
	 * 连接 RabbitMQ
	 **********************************************/
	conn, err := amqp.Dial(cfg.RabbitMQ.DSN)
	if err != nil {
		logger.Error("无法连接到 RabbitMQ", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	// 创建通道
	ch, err := conn.Channel()
	if err != nil {
		logger.Error("无法创建通道", slog.String("error", err.Error()))
		return
	}
	defer ch.Close()

	// 声明队列
	q, err := ch.QueueDeclare(
		"analysis_queue", // 队列名称
		true,             // 是否持久化
		false,            // 是否自动删除，设置为 false 可以避免没有消费者的时候自动删除队列
		false,            // 是否独占，即是否允许多个消费者访问这个队列
		false,            // 是否不等待，设置为 false，即等待 RabbitMQ 确认队列是否创建成功
		nil,              // 额外参数
	)
	if err != nil {
		logger.Error("无法声明队列", slog.String("error", err.Error()))
		return
	}

	// 监听 CTRL+C
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	// 消费消息
	msgs, err := ch.Consume(
		q.Name, // 队列
		"",     // 消费者标识，设置为空字符串，表示由 RabbitMQ 自动分配
		false,  // 是否自动确认消息
		false,  // 是否独占队列
		false,  // 是否禁止消费者接受自己发送的消息，必须设置为 false，因为 RabbitMQ 不支持这个参数
		false,  // 是否不等待，等待 RabbitMQ 响应
		nil,    // 额外参数
	)
	if err != nil {
		logger.Error("无法消费消息", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 用于关闭 goroutine 的上下文
	ctx, cancel := context.WithCancel(context.Background())
	wg := sync.WaitGroup{}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-msgs:
				logger.Info("收到分析任务", slog.String("message", string(msg.Body)))

				job := domain.AnalysisJob{}
				if err := json.Unmarshal(msg.Body, &job); err != nil {
					logger.Error("分析任务反序列化失败", slog.String("error", err.Error()))
					_ = msg.Nack(false, false)
					continue
				}

				shift, err := st.GetShift(job.ShiftID)
				if err != nil {
					if errors.Is(err, store.ErrShiftNotFound) {
						logger.Error("班次记录不存在", slog.String("shiftId", job.ShiftID))
						_ = msg.Nack(false, false)
					} else {
						logger.Error("无法读取班次记录", slog.String("error", err.Error()))
						_ = msg.Nack(false, true) // 将消息重新入队
					}
					continue
				}

				// 任何分析失败都降级为兜底文案，保存流程不受影响
				narrative := analysis.Fallback
				if analyzer != nil {
					analyzeCtx, analyzeCancel := context.WithTimeout(ctx, time.Duration(cfg.Analysis.Timeout)*time.Second)
					text, err := analyzer.Analyze(analyzeCtx, shift)
					analyzeCancel()
					if err != nil {
						logger.Error("分析失败", slog.String("shiftId", shift.ID), slog.String("error", err.Error()))
					} else {
						narrative = text
					}
				}

				if err := st.AttachAnalysis(shift.ID, narrative); err != nil {
					logger.Error("无法写入分析结果", slog.String("error", err.Error()))
					_ = msg.Nack(false, true)
					continue
				}

				// 交班报告邮件尽力而为，失败不影响任务完成
				if mailClient != nil {
					if err := sendShiftReport(cfg, mailClient, reportTemplate, shift, narrative); err != nil {
						logger.Error("交班报告邮件发送失败", slog.String("error", err.Error()))
					}
				}

				_ = msg.Ack(false)
			}
		}
	}()

	// 等待 CTRL+C 信号
	logger.Info("等待分析任务...（按 CTRL+C 退出）")
	<-sigChan

	// 优雅退出
	slog.Info("正在关闭 analysis worker...")
	cancel()
	wg.Wait() // 等待所有 goroutine 完成
	slog.Info("analysis worker 已成功关闭")
}

func sendShiftReport(cfg *config.Config, client *mail.Client, tmpl *template.Template, shift *domain.ShiftRecord, narrative string) error {
	msg := mail.NewMsg()
	if err := msg.From(cfg.Report.SMTP.Username); err != nil {
		return err
	}
	if err := msg.To(cfg.Report.AdminEmail); err != nil {
		return err
	}

	data := domain.ShiftReportMailData{
		UserName:     shift.UserName,
		Date:         shift.Date.Format("2006-01-02"),
		ExpectedCash: shift.ExpectedCash.StringFixed(2),
		ActualCash:   shift.ActualCash.StringFixed(2),
		Discrepancy:  shift.Discrepancy.StringFixed(2),
		TotalRevenue: shift.CashSales.Add(shift.CardSales).Add(shift.TransferSales).StringFixed(2),
		Analysis:     narrative,
	}
	if err := msg.SetBodyHTMLTemplate(tmpl, data); err != nil {
		return err
	}
	msg.Subject(fmt.Sprintf("交班报告 - %s %s", data.Date, shift.UserName))

	return client.DialAndSend(msg)
}
