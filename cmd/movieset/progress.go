package main

import (
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/movieset/internal/app/run"
	"github.com/John-Robertt/movieset/internal/config"
	"github.com/John-Robertt/movieset/internal/domain"
)

var _ run.Observer = (*logObserver)(nil)

// logObserver 把阶段事件写进日志：阶段耗时走 debug，导出结果走 info。
type logObserver struct {
	log logrus.FieldLogger
}

func newLogObserver(log logrus.FieldLogger) *logObserver {
	return &logObserver{log: log}
}

func (o *logObserver) OnStart(runID string, eff config.EffectiveConfig) {
	fields := logrus.Fields{
		"run_id":            runID,
		"data_set_location": eff.DataSetLocation,
		"save_to":           eff.SaveTo,
		"top_n":             eff.TopN,
		"strict":            eff.Strict,
	}
	if eff.ConfigFile != "" {
		fields["config"] = eff.ConfigFile
	}
	if eff.SQLite != "" {
		fields["sqlite"] = eff.SQLite
	}
	if eff.HTMLReport != "" {
		fields["html_report"] = eff.HTMLReport
	}
	o.log.WithFields(fields).Debug("Effective configuration")
}

func (o *logObserver) OnPhaseDone(name string, fields map[string]any, dur time.Duration) {
	o.log.WithFields(logrus.Fields(fields)).
		WithField("took", formatShortDuration(dur)).
		Debugf("Phase %s done", name)
}

func (o *logObserver) OnExportDone(res domain.ExportResult, dur time.Duration) {
	entry := o.log.WithFields(logrus.Fields{
		"kind": res.Kind,
		"took": formatShortDuration(dur),
	})
	if res.Status != domain.ExportStatusWritten {
		entry.WithField("error_code", res.ErrorCode).Warnf("Export %s not written", res.Path)
		return
	}
	if fi, err := os.Stat(res.Path); err == nil {
		entry = entry.WithField("size", humanize.Bytes(uint64(fi.Size())))
	}
	entry.Infof("Saved %s", res.Path)
}

func formatShortDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return d.Round(time.Microsecond).String()
	case d < time.Second:
		return d.Round(time.Millisecond).String()
	default:
		return d.Round(10 * time.Millisecond).String()
	}
}
