package main

import (
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/John-Robertt/movieset/internal/domain"
)

func TestExitCode(t *testing.T) {
	cases := map[string]int{
		domain.StatusOK:      exitOK,
		domain.StatusPartial: exitExportFailed,
		domain.StatusFailed:  exitLoadFailed,
	}
	for status, want := range cases {
		if got := exitCode(domain.RunReport{Status: status}); got != want {
			t.Fatalf("status=%q 期望退出码 %d，实际 %d", status, want, got)
		}
	}
}

func TestFormatShortDuration(t *testing.T) {
	if got := formatShortDuration(1234567 * time.Nanosecond); got != "1ms" {
		t.Fatalf("期望 1ms，实际 %q", got)
	}
	if got := formatShortDuration(1500 * time.Millisecond); got != "1.5s" {
		t.Fatalf("期望 1.5s，实际 %q", got)
	}
}

func TestLogObserver_ExportLevels(t *testing.T) {
	log, hook := test.NewNullLogger()
	o := newLogObserver(log)

	o.OnExportDone(domain.ExportResult{Kind: "jsonl", Path: "/nonexistent/out.json", Status: domain.ExportStatusWritten}, time.Millisecond)
	if e := hook.LastEntry(); e == nil || e.Level != logrus.InfoLevel {
		t.Fatalf("写入成功应输出 info：%+v", e)
	}

	o.OnExportDone(domain.ExportResult{Kind: "sqlite", Path: "/x.db", Status: domain.ExportStatusFailed, ErrorCode: domain.ErrCodeExportNotFound}, time.Millisecond)
	e := hook.LastEntry()
	if e == nil || e.Level != logrus.WarnLevel {
		t.Fatalf("写入失败应输出 warning：%+v", e)
	}
	if e.Data["error_code"] != domain.ErrCodeExportNotFound {
		t.Fatalf("缺少 error_code 字段：%+v", e.Data)
	}
}
