package logger

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

type ServiceEnv struct {
	Platform string
	Service  string
	Env      string
}

type LogConfig struct {
	Path       string
	LogLevel   string
	ServiceEnv ServiceEnv
}

var (
	rawLogger *zap.Logger
	logger    *otelzap.SugaredLogger
	rotate    *lumberjack.Logger
)

func init() {
	rawLogger = zap.NewNop()
	logger = otelzap.New(rawLogger).Sugar()
}

func Init(conf *LogConfig) {
	level, err := zapcore.ParseLevel(conf.LogLevel)
	if err != nil {
		level = zapcore.InfoLevel
	}

	encConf := zap.NewProductionEncoderConfig()
	encConf.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encConf), zapcore.Lock(os.Stdout), level),
	}
	if conf.Path != "" {
		rotate = &lumberjack.Logger{
			Filename:   conf.Path,
			MaxSize:    100, // MB
			MaxBackups: 7,
			MaxAge:     30,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encConf), zapcore.AddSync(rotate), level))
	}

	rawLogger = zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddCallerSkip(2),
		zap.Fields(
			zap.String("platform", conf.ServiceEnv.Platform),
			zap.String("service", conf.ServiceEnv.Service),
			zap.String("env", conf.ServiceEnv.Env),
		))
	logger = otelzap.New(rawLogger, otelzap.WithMinLevel(level)).Sugar()
}

// traceFields 把当前 span 的 trace_id / span_id 带进日志
func traceFields(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return nil
	}
	return []any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}
}

func Close() {
	_ = rawLogger.Sync()
	if rotate != nil {
		_ = rotate.Close()
	}
}

func Debugf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Debugw(fmt.Sprintf(format, args...), traceFields(ctx)...)
}

func Infof(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Infow(fmt.Sprintf(format, args...), traceFields(ctx)...)
}

func Warnf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Warnw(fmt.Sprintf(format, args...), traceFields(ctx)...)
}

func Errorf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Errorw(fmt.Sprintf(format, args...), traceFields(ctx)...)
}

func Fatalf(ctx context.Context, format string, args ...any) {
	logger.Ctx(ctx).Fatalw(fmt.Sprintf(format, args...), traceFields(ctx)...)
}

// LogWithWriter 请求日志中间件
func LogWithWriter() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		start := time.Now()
		path := ctx.Request.URL.Path
		if raw := ctx.Request.URL.RawQuery; raw != "" {
			path = path + "?" + raw
		}

		ctx.Next()

		status := ctx.Writer.Status()
		latency := time.Since(start)
		if len(ctx.Errors) > 0 {
			Errorf(ctx, "%s %s status: %d latency: %s ip: %s errors: %s",
				ctx.Request.Method, path, status, latency, ctx.ClientIP(), ctx.Errors.String())
			return
		}
		Infof(ctx, "%s %s status: %d latency: %s ip: %s",
			ctx.Request.Method, path, status, latency, ctx.ClientIP())
	}
}
