package database

import (
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config 数据库连接配置
// 同步任务会在短时间内打开大量写连接（全店铺并发同步时尤其明显），
// 池参数按部署规模从环境变量注入，而不是写死
type Config struct {
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration

	// LogSQL 打印所有 SQL，排查同步写入问题时打开
	LogSQL bool
}

// withDefaults 补齐未设置的池参数
func (c Config) withDefaults() Config {
	if c.MaxIdleConns <= 0 {
		c.MaxIdleConns = 10
	}
	if c.MaxOpenConns <= 0 {
		c.MaxOpenConns = 50
	}
	if c.MaxOpenConns < c.MaxIdleConns {
		c.MaxOpenConns = c.MaxIdleConns
	}
	if c.ConnMaxLifetime <= 0 {
		c.ConnMaxLifetime = time.Hour
	}
	return c
}

// InitDB 初始化数据库连接并迁移表结构
// models: 需要自动建表/迁移的结构体指针
func InitDB(cfg Config, models ...interface{}) *gorm.DB {
	cfg = cfg.withDefaults()

	logMode := logger.Warn
	if cfg.LogSQL {
		logMode = logger.Info
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{
		Logger: logger.Default.LogMode(logMode),
	})
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("获取底层 SQL DB 失败: %v", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	log.Printf("数据库连接成功 (idle=%d open=%d)", cfg.MaxIdleConns, cfg.MaxOpenConns)

	if len(models) > 0 {
		if err := db.AutoMigrate(models...); err != nil {
			log.Fatalf("自动建表出错: %v", err)
		}
	}

	return db
}
