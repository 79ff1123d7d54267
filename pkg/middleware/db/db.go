package db

import (
	"context"
	"fmt"
	"time"

	"github.com/scienceol/molbank/pkg/middleware/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

type LogConf struct {
	Level string
}

type Config struct {
	Host    string
	Port    int
	User    string
	PW      string
	DBName  string
	LogConf LogConf
}

type Datastore struct {
	db *gorm.DB
}

var datastore *Datastore

func InitPostgres(ctx context.Context, conf *Config) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
		conf.Host, conf.Port, conf.User, conf.PW, conf.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLevel(conf.LogConf.Level)),
	})
	if err != nil {
		logger.Fatalf(ctx, "init postgres fail err: %+v", err)
		return
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		logger.Warnf(ctx, "postgres tracing plugin err: %+v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf(ctx, "get postgres sql db err: %+v", err)
		return
	}
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	datastore = &Datastore{db: db}
}

func gormLevel(level string) gormlogger.LogLevel {
	switch level {
	case "debug":
		return gormlogger.Info
	case "warn":
		return gormlogger.Warn
	case "error":
		return gormlogger.Error
	default:
		return gormlogger.Silent
	}
}

func ClosePostgres(ctx context.Context) {
	if datastore == nil {
		return
	}
	sqlDB, err := datastore.db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		logger.Errorf(ctx, "close postgres err: %+v", err)
	}
}

// DB 未初始化时返回 nil
func DB() *Datastore {
	return datastore
}

func (d *Datastore) DBIns() *gorm.DB {
	return d.db
}

func (d *Datastore) DBWithContext(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}
