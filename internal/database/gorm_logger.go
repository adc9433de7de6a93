package database

import (
	"context"
	"errors"
	"time"

	"consultlink_backend/internal/logger"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger пишет запросы GORM через logger.DBLog.
type gormLogger struct {
	slowThreshold time.Duration
	level         gormlogger.LogLevel
}

func newGormLogger(slow time.Duration) *gormLogger {
	return &gormLogger{slowThreshold: slow, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cp := *l
	cp.level = level
	return &cp
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Info {
		logger.CtxInfo(ctx, msg, "args", args)
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Warn {
		logger.CtxWarn(ctx, msg, "args", args)
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if l.level >= gormlogger.Error {
		logger.CtxError(ctx, msg, "args", args)
	}
}

func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	elapsed := time.Since(begin)

	// Не найдено - обычный исход, а не ошибка запроса
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = nil
	}
	if err == nil && elapsed < l.slowThreshold && l.level < gormlogger.Info {
		return
	}

	sql, _ := fc()
	logger.DBLog("query", sql, elapsed, err)
}
