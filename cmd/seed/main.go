package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/config"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/storage"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/store"
	"github.com/sysu-ecnc-dev/shift-ledger/backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机收银员, 2: 插入随机班次记录)")
	flag.IntVar(&n, "n", 5, "要插入的记录数量")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	decimal.MarshalJSONWithoutQuotes = true

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// 创建存储后端
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

	// 执行操作
	switch op {
	case 1:
		if n <= 0 {
			slog.Error("请输入合法的用户数量")
			return
		}
		for i := 0; i < n; i++ {
			user := utils.GenerateRandomCashier(cfg.Seed.User.Password)
			if err := st.AddUser(user); err != nil {
				slog.Error("插入用户失败", "username", user.Username, "error", err)
				continue
			}
			slog.Info("已插入用户", "username", user.Username, "name", user.Name)
		}
	case 2:
		if n <= 0 {
			slog.Error("请输入合法的记录数量")
			return
		}

		users, err := st.LoadUsers()
		if err != nil {
			slog.Error("无法加载用户集合", "error", err)
			return
		}

		for i := 0; i < n; i++ {
			user := &users[rand.Intn(len(users))]
			shift := utils.GenerateRandomShiftRecord(user, n-i)
			if err := st.SaveShift(shift); err != nil {
				slog.Error("插入班次记录失败", "error", err)
				continue
			}
			slog.Info("已插入班次记录", "id", shift.ID, "userName", shift.UserName)
		}
	default:
		slog.Error("未指定操作")
	}
}
