package run

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/movieset/internal/config"
	"github.com/John-Robertt/movieset/internal/dataset"
	"github.com/John-Robertt/movieset/internal/domain"
	"github.com/John-Robertt/movieset/internal/export"
	"github.com/John-Robertt/movieset/internal/infra/fsx"
	"github.com/John-Robertt/movieset/internal/report"
	"github.com/John-Robertt/movieset/internal/stats"
)

// Execute 执行一次 run：加载 -> 统计 -> 日志报告 -> 导出，并返回对外稳定的 RunReport。
// 加载失败时不做统计与导出；单个导出失败不影响其他导出。
func Execute(ctx context.Context, eff config.EffectiveConfig, log logrus.FieldLogger) domain.RunReport {
	return ExecuteWithObserver(ctx, eff, log, nil)
}

// ExecuteWithObserver 与 Execute 相同，但允许传入 Observer 以输出阶段信息（由上层决定是否启用）。
func ExecuteWithObserver(ctx context.Context, eff config.EffectiveConfig, log logrus.FieldLogger, obs Observer) domain.RunReport {
	if log == nil {
		d := logrus.New()
		d.SetOutput(io.Discard)
		log = d
	}

	rr := domain.RunReport{
		RunID:     uuid.New().String(),
		Input:     eff.DataSetLocation,
		Output:    eff.SaveTo,
		StartedAt: time.Now().UTC(),
		Exports:   make([]domain.ExportResult, 0, 3),
	}
	log = log.WithField("run_id", rr.RunID)

	if obs != nil {
		obs.OnStart(rr.RunID, eff)
	}

	if err := ctx.Err(); err != nil {
		return failed(rr, domain.ErrCodeCanceled, err)
	}

	loadStarted := time.Now()
	table, res, err := dataset.Load(eff.DataSetLocation, dataset.Options{Strict: eff.Strict, Log: log})
	if err != nil {
		log.WithError(err).Errorf("Data set file %s could not be loaded", eff.DataSetLocation)
		code := dataset.Code(err)
		if code == "" {
			code = domain.ErrCodeSourceParse
		}
		return failed(rr, code, err)
	}
	rr.Cleaning = domain.CleaningSummary{Read: res.Read, Kept: res.Kept, Dropped: res.Dropped}
	if obs != nil {
		obs.OnPhaseDone("load", map[string]any{
			"read":    res.Read,
			"kept":    res.Kept,
			"dropped": res.Dropped,
		}, time.Since(loadStarted))
	}

	sumStarted := time.Now()
	summary := stats.Summarize(table, eff.TopN)
	rr.Summary = &summary
	withYears := stats.WithYears(table)
	if obs != nil {
		obs.OnPhaseDone("summarize", map[string]any{
			"movies": summary.Movies,
			"years":  len(summary.ByYear),
			"genres": len(summary.ByGenre),
		}, time.Since(sumStarted))
	}

	repStarted := time.Now()
	report.Log(log, summary)
	if obs != nil {
		obs.OnPhaseDone("report", map[string]any{"top_n": summary.TopN}, time.Since(repStarted))
	}

	exports := []struct {
		kind  string
		path  string
		write func() error
	}{
		{export.KindJSONL, eff.SaveTo, func() error { return export.JSONLines(withYears, eff.SaveTo) }},
		{export.KindSQLite, eff.SQLite, func() error { return export.SQLite(ctx, withYears, eff.SQLite) }},
		{export.KindHTML, eff.HTMLReport, func() error {
			return export.Classify(eff.HTMLReport, report.WriteHTML(eff.HTMLReport, summary))
		}},
	}
	for _, e := range exports {
		if e.path == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			rr.Exports = append(rr.Exports, domain.ExportResult{
				Kind: e.kind, Path: e.path, Status: domain.ExportStatusFailed,
				ErrorCode: domain.ErrCodeCanceled, ErrorMsg: err.Error(),
			})
			continue
		}

		started := time.Now()
		log.Infof("Saving data to %s", e.path)
		r := domain.ExportResult{Kind: e.kind, Path: e.path, Status: domain.ExportStatusWritten}
		if err := e.write(); err != nil {
			r.Status = domain.ExportStatusFailed
			r.ErrorCode = export.Code(err)
			r.ErrorMsg = err.Error()
			log.WithError(err).WithField("kind", e.kind).Errorf("Failed to save data to %s", e.path)
		}
		rr.Exports = append(rr.Exports, r)
		if obs != nil {
			obs.OnExportDone(r, time.Since(started))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

func failed(rr domain.RunReport, code string, err error) domain.RunReport {
	rr.ErrorCode = code
	rr.ErrorMsg = err.Error()
	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	return rr
}

// ReportForConfigError 为配置阶段就失败的运行构造一个 RunReport（没有加载与导出）。
func ReportForConfigError(code string, err error) domain.RunReport {
	now := time.Now().UTC()
	rr := domain.RunReport{
		RunID:      uuid.New().String(),
		StartedAt:  now,
		FinishedAt: now,
		ErrorCode:  code,
		ErrorMsg:   err.Error(),
	}
	rr.Finalize()
	return rr
}

// WriteReportFile 把 RunReport 以缩进 JSON 原子写入 path（父目录必须存在）。
func WriteReportFile(path string, rr domain.RunReport) error {
	b, err := json.MarshalIndent(rr, "", "  ")
	if err != nil {
		return errors.Wrap(err, "序列化 RunReport 失败")
	}
	b = append(b, '\n')
	return fsx.WriteFileAtomic(path, b)
}
