package config

import (
	"errors"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Storage struct {
		// 支持 postgres 和 redis 两种驱动
		Driver           string `env:"DRIVER" envDefault:"postgres"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"10"`
	} `envPrefix:"STORAGE_"`
	Database struct {
		DSN            string `env:"DSN"`
		ConnectTimeout int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		MaxOpenConns   int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns   int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime    int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Redis struct {
		Host     string `env:"HOST" envDefault:"localhost"`
		Port     int    `env:"PORT" envDefault:"6379"`
		Password string `env:"PASSWORD"`
	} `envPrefix:"REDIS_"`
	InitialAdmin struct {
		Username string `env:"USERNAME" envDefault:"admin"`
		Password string `env:"PASSWORD" envDefault:"123"`
		Name     string `env:"NAME" envDefault:"系统管理员"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"1209600"` // 14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Analysis struct {
		APIKey  string `env:"API_KEY"`
		Model   string `env:"MODEL" envDefault:"gemini-2.5-flash"`
		Timeout int    `env:"TIMEOUT" envDefault:"60"`
	} `envPrefix:"ANALYSIS_"`
	Report struct {
		AdminEmail string `env:"ADMIN_EMAIL"`
		SMTP       struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"REPORT_"`
	Seed struct {
		User struct {
			Password string `env:"PASSWORD" envDefault:"123456"`
		} `envPrefix:"USER_"`
	} `envPrefix:"SEED_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
	}

	if cfg.Storage.Driver != "postgres" && cfg.Storage.Driver != "redis" {
		return nil, errors.New("STORAGE_DRIVER 只支持 postgres 和 redis")
	}
	if cfg.Storage.Driver == "postgres" && cfg.Database.DSN == "" {
		return nil, errors.New("使用 postgres 驱动时必须设置 DATABASE_DSN")
	}

	return cfg, nil
}
