package applog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Options 应用日志配置
type Options struct {
	// Path of the log file; empty logs to stderr only.
	Path   string
	Retain time.Duration
	Dev    bool
}

// Log is the process-wide logger plus the file it tees into.
type Log struct {
	*zap.Logger

	Path      string
	StartedAt time.Time

	file *os.File
}

// Open builds the application logger. A log file that cannot be prepared is reported on
// stderr and skipped; Open itself only fails on programmer error.
func Open(opts Options) (*Log, error) {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if opts.Dev {
		level.SetLevel(zapcore.DebugLevel)
	}

	encCfg := zap.NewDevelopmentEncoderConfig()
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.Lock(os.Stderr), level),
	}

	l := &Log{StartedAt: time.Now()}
	if opts.Path != "" {
		f, err := openLogFile(opts.Path, opts.Retain, l.StartedAt)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[AppLog] %v; logging to stderr only\n", err)
		} else {
			l.file = f
			l.Path = opts.Path
			cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(f), level))
		}
	}

	zapOpts := []zap.Option{zap.AddCaller()}
	if opts.Dev {
		zapOpts = append(zapOpts, zap.Development())
	}
	l.Logger = zap.New(zapcore.NewTee(cores...), zapOpts...)
	if l.Path != "" {
		l.Named("AppLog").Info("writing log file", zap.String("path", l.Path))
	}
	return l, nil
}

func openLogFile(path string, retain time.Duration, startedAt time.Time) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	if err := Rotate(path, retain); err != nil {
		fmt.Fprintf(os.Stderr, "[AppLog] rotate %s failed: %v\n", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file (%s): %w", path, err)
	}
	_, _ = fmt.Fprintf(f, "----- app start %s pid=%d -----\n", startedAt.Format(time.RFC3339Nano), os.Getpid())
	return f, nil
}

// Since returns the log text written after byte offset since.
func (l *Log) Since(since int64) Snapshot {
	return LogsSince(l.Path, since, os.Getpid(), l.StartedAt)
}

func (l *Log) Close() error {
	_ = l.Logger.Sync()
	if l.file == nil {
		return nil
	}
	return l.file.Close()
}
