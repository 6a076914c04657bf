package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/John-Robertt/movieset/internal/app/run"
	"github.com/John-Robertt/movieset/internal/config"
	"github.com/John-Robertt/movieset/internal/domain"
	"github.com/John-Robertt/movieset/internal/logx"
)

func runAction(c *cli.Context) error {
	if c.NArg() > 0 {
		return usageError(c, fmt.Errorf("未知参数 %q", strings.Join(c.Args(), " ")), false)
	}

	cwd, err := os.Getwd()
	if err != nil {
		fmt.Fprintf(os.Stderr, "读取当前目录失败：%v\n", err)
		return cli.NewExitError("", exitUsage)
	}

	ca := cliArgs(c)
	eff, err := config.LoadEffective(cwd, ca)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		if ca.ReportSet && strings.TrimSpace(ca.Report) != "" {
			rr := run.ReportForConfigError(config.Code(err), err)
			p := ca.Report
			if !filepath.IsAbs(p) {
				p = filepath.Join(cwd, p)
			}
			if werr := run.WriteReportFile(p, rr); werr != nil {
				fmt.Fprintf(os.Stderr, "写入 run report 失败：%v\n", werr)
			}
		}
		return cli.NewExitError("", exitUsage)
	}

	log, closeLog, err := logx.New(logx.Options{
		Path:    eff.LoggingLocation,
		Level:   eff.LoggingLevel,
		Console: os.Stdout,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败：%v\n", err)
		return cli.NewExitError("", exitUsage)
	}
	defer closeLog()
	log.Infof("Started logging with file %s and default level %s", eff.LoggingLocation, eff.LoggingLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rr := run.ExecuteWithObserver(ctx, eff, log, newLogObserver(log))

	code := exitCode(rr)
	if eff.Report != "" {
		if err := run.WriteReportFile(eff.Report, rr); err != nil {
			log.WithError(err).Errorf("Failed to write run report to %s", eff.Report)
			if code == exitOK {
				code = exitExportFailed
			}
		}
	}

	entry := log.WithFields(logrus.Fields{
		"run_id":  rr.RunID,
		"status":  rr.Status,
		"kept":    rr.Cleaning.Kept,
		"dropped": rr.Cleaning.Dropped,
	})
	if rr.ErrorCode != "" {
		entry = entry.WithField("error_code", rr.ErrorCode)
	}
	entry.Info("Finished")

	if code != exitOK {
		_ = closeLog()
		return cli.NewExitError("", code)
	}
	return nil
}

func exitCode(rr domain.RunReport) int {
	switch rr.Status {
	case domain.StatusOK:
		return exitOK
	case domain.StatusPartial:
		return exitExportFailed
	default:
		return exitLoadFailed
	}
}
