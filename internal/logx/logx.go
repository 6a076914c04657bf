package logx

import (
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options 描述日志输出位置与级别。
type Options struct {
	// Path 为日志文件路径（追加写）；为空表示不写文件。
	Path string
	// Level 接受 DEBUG/INFO/WARNING/ERROR/CRITICAL（大小写不敏感）以及 logrus 自己的级别名。
	Level string
	// Console 是控制台输出（命令行传入 os.Stdout）；为空表示不写控制台。
	Console io.Writer
}

// New 创建同时写日志文件与控制台的 logger。
//
// 日志文件打不开时降级为只写控制台并输出一条 warning；只有在文件与控制台都不可用时才返回错误。
// 返回的 close 负责关闭日志文件，可重复调用。
func New(opts Options) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
		DisableColors:   true,
	})

	level, known := ParseLevel(opts.Level)
	log.SetLevel(level)

	var (
		writers []io.Writer
		file    *os.File
		openErr error
	)
	if opts.Path != "" {
		file, openErr = os.OpenFile(opts.Path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if openErr == nil {
			writers = append(writers, file)
		}
	}
	if opts.Console != nil {
		writers = append(writers, opts.Console)
	}
	if len(writers) == 0 {
		if openErr != nil {
			return nil, nil, errors.Wrapf(openErr, "无法打开日志文件 %q", opts.Path)
		}
		log.SetOutput(io.Discard)
	} else {
		log.SetOutput(io.MultiWriter(writers...))
	}

	if openErr != nil {
		log.WithError(openErr).Warnf("cannot open log file %s, logging to console only", opts.Path)
	}
	if !known {
		log.Warnf("unknown logging level %q, using INFO", opts.Level)
	}

	closed := false
	closeFn := func() error {
		if file == nil || closed {
			return nil
		}
		closed = true
		return file.Close()
	}
	return log, closeFn, nil
}

// ParseLevel 把级别名映射为 logrus.Level。空串视为 INFO；无法识别时返回 InfoLevel 与 false。
func ParseLevel(s string) (logrus.Level, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "", "INFO":
		return logrus.InfoLevel, true
	case "DEBUG":
		return logrus.DebugLevel, true
	case "WARNING", "WARN":
		return logrus.WarnLevel, true
	case "ERROR":
		return logrus.ErrorLevel, true
	case "CRITICAL", "FATAL":
		return logrus.FatalLevel, true
	}
	if l, err := logrus.ParseLevel(s); err == nil {
		return l, true
	}
	return logrus.InfoLevel, false
}
