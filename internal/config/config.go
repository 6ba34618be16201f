package config

import (
	"errors"
	"fmt"

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
		PublicURL       string `env:"PUBLIC_URL" envDefault:"http://localhost:3000"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	Event struct {
		TTLDays       int `env:"TTL_DAYS" envDefault:"90"`
		SweepInterval int `env:"SWEEP_INTERVAL" envDefault:"3600"` // 秒
		HostKeyLength int `env:"HOST_KEY_LENGTH" envDefault:"21"`
	} `envPrefix:"EVENT_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"336"` // 小时，14 天
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Line struct {
		ChannelSecret string `env:"CHANNEL_SECRET,required"`
		ChannelToken  string `env:"CHANNEL_TOKEN,required"`
		LiffID        string `env:"LIFF_ID,required"`
		TimeZone      string `env:"TIME_ZONE" envDefault:"Asia/Taipei"` // 只用于回复消息中的时间显示
	} `envPrefix:"LINE_"`
	Seed struct {
		Participants int `env:"PARTICIPANTS" envDefault:"8"`
	} `envPrefix:"SEED_"`
	Email struct {
		SMTP struct {
			Username    string `env:"USERNAME,required"`
			Password    string `env:"PASSWORD,required"`
			Host        string `env:"HOST,required"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
		TemplateDir string `env:"TEMPLATE_DIR" envDefault:"./templates"`
		RetryDelay  int    `env:"RETRY_DELAY" envDefault:"5"` // 秒，发送失败后等待多久再重新入队
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		Queue          string `env:"QUEUE" envDefault:"notification_queue"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host             string `env:"HOST" envDefault:"localhost"`
		Port             int    `env:"PORT" envDefault:"6379"`
		Password         string `env:"PASSWORD,required"`
		ConnectTimeout   int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationTimeout int    `env:"OPERATION_TIMEOUT" envDefault:"3"`
	} `envPrefix:"REDIS_"`
	Cache struct {
		CandidateSlotsTTL int `env:"CANDIDATE_SLOTS_TTL" envDefault:"600"` // 秒
	} `envPrefix:"CACHE_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate 检查那些只有取正值才有意义的配置，避免启动后才在定时器或创建活动时出错
func (cfg *Config) validate() error {
	positives := []struct {
		name  string
		value int
	}{
		{"EVENT_TTL_DAYS", cfg.Event.TTLDays},
		{"EVENT_SWEEP_INTERVAL", cfg.Event.SweepInterval},
		{"EVENT_HOST_KEY_LENGTH", cfg.Event.HostKeyLength},
		{"JWT_EXPIRATION", cfg.JWT.Expiration},
		{"REDIS_OPERATION_TIMEOUT", cfg.Redis.OperationTimeout},
		{"CACHE_CANDIDATE_SLOTS_TTL", cfg.Cache.CandidateSlotsTTL},
	}
	for _, p := range positives {
		if p.value <= 0 {
			return fmt.Errorf("%s 必须大于 0，当前为 %d", p.name, p.value)
		}
	}

	if cfg.Email.RetryDelay < 0 {
		return fmt.Errorf("EMAIL_RETRY_DELAY 不能小于 0，当前为 %d", cfg.Email.RetryDelay)
	}

	return nil
}
