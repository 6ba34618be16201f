package main

import (
	"context"
	"database/sql"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/config"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/line"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/repository"
	"github.com/sysu-ecnc-dev/group-scheduler/backend/internal/seed"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int
	var participants int
	var file string
	var title string

	flag.IntVar(&op, "op", 0, "要执行的操作 (1: 插入随机活动, 2: 从 CSV 导入活动)")
	flag.IntVar(&n, "n", 5, "要插入的活动数量")
	flag.IntVar(&participants, "participants", 0, "每个随机活动的参与者数量，默认使用配置中的值")
	flag.StringVar(&file, "file", "", "要导入的 CSV 文件")
	flag.StringVar(&title, "title", "导入的活动", "导入活动的名称")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	// 读取配置文件
	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("无法读取配置文件", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if participants <= 0 {
		participants = cfg.Seed.Participants
	}

	// 创建数据库连接池
	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("无法创建数据库连接池", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open 只是创建数据库连接池对象，并不会立即连接到数据库，因此需要显式地 ping 一下
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("无法连接到数据库", "error", err)
		return
	}

	// 创建 repository
	repo := repository.NewRepository(cfg, dbpool)

	// 执行操作
	switch op {
	case 0:
		logger.Error("未指定操作")
	case 1:
		if n <= 0 {
			logger.Error("请输入合法的活动数量")
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			event, err := seed.SeedRandomEvent(context.Background(), repo, participants)
			if err != nil {
				logger.Error("无法插入随机活动", slog.String("error", err.Error()))
				continue
			}
			logger.Info("已插入活动", slog.String("id", event.ID), slog.String("invite_link", line.InviteLink(cfg.Line.LiffID, event.ID)))
			cnt++
		}

		logger.Info("插入活动成功", slog.Int("count", cnt), slog.String("host_key", seed.HostKey))
	case 2:
		if file == "" {
			logger.Error("请指定要导入的 CSV 文件")
			return
		}

		f, err := os.Open(file)
		if err != nil {
			logger.Error("打开文件失败", slog.String("error", err.Error()))
			return
		}
		defer f.Close()

		loc, err := time.LoadLocation(cfg.Line.TimeZone)
		if err != nil {
			logger.Error("无法加载时区", slog.String("error", err.Error()))
			return
		}

		event, err := seed.ImportCSV(context.Background(), repo, f, title, loc)
		if err != nil {
			logger.Error("导入失败", slog.String("error", err.Error()))
			return
		}

		logger.Info("导入活动成功", slog.String("id", event.ID), slog.String("host_key", seed.HostKey))
	default:
		logger.Error("不支持的操作", slog.Int("op", op))
	}
}
