package domain

import (
	"encoding/json"
	"sort"
	"time"
)

const (
	StatusOK      = "ok"
	StatusPartial = "partial"
	StatusFailed  = "failed"
)

const (
	ExportStatusWritten = "written"
	ExportStatusFailed  = "failed"
)

const (
	ErrCodeSourceNotFound      = "source_not_found"
	ErrCodeSourcePermission    = "source_permission_denied"
	ErrCodeSourceEmpty         = "source_empty"
	ErrCodeSourceParse         = "source_parse_error"
	ErrCodeMissingColumn       = "missing_column"
	ErrCodeGenreFormat         = "genre_format"
	ErrCodeExportNotFound      = "export_not_found"
	ErrCodeExportPermission    = "export_permission_denied"
	ErrCodeExportSerialization = "export_serialization"
	ErrCodeConfigNotFound      = "config_not_found"
	ErrCodeConfigInvalid       = "config_invalid"
	ErrCodeCanceled            = "canceled"
)

// RunReport 是对外稳定输出（--report 指定的 JSON 文件）的结构。
type RunReport struct {
	RunID  string `json:"run_id"`
	Input  string `json:"input"`
	Output string `json:"output"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`

	Cleaning CleaningSummary `json:"cleaning"`
	Summary  *Summary        `json:"summary"`
	Exports  []ExportResult  `json:"exports"`
}

type CleaningSummary struct {
	Read    int `json:"read"`
	Kept    int `json:"kept"`
	Dropped int `json:"dropped"`
}

type ExportResult struct {
	Kind      string `json:"kind"` // "jsonl" | "sqlite" | "html"
	Path      string `json:"path"`
	Status    string `json:"status"`
	ErrorCode string `json:"error_code"`
	ErrorMsg  string `json:"error_msg"`
}

// Finalize 做三件事：
// 1) 时间统一为 UTC（确保 JSON 为 RFC3339 且后缀 Z）
// 2) exports 稳定排序：按 kind 字典序
// 3) status 由错误与导出结果推导：加载失败 => failed；任一导出失败 => partial
func (r *RunReport) Finalize() {
	r.StartedAt = r.StartedAt.UTC()
	r.FinishedAt = r.FinishedAt.UTC()

	sort.SliceStable(r.Exports, func(i, j int) bool {
		return r.Exports[i].Kind < r.Exports[j].Kind
	})
	if r.Exports == nil {
		r.Exports = []ExportResult{}
	}

	switch {
	case r.ErrorCode != "":
		r.Status = StatusFailed
	case r.exportFailed():
		r.Status = StatusPartial
	default:
		r.Status = StatusOK
	}
}

func (r *RunReport) exportFailed() bool {
	for _, e := range r.Exports {
		if e.Status == ExportStatusFailed {
			return true
		}
	}
	return false
}

// MarshalJSON 仅用于集中约束输出的稳定性（避免未来不小心引入非确定字段）。
// 当前只是透传 encoding/json 的默认行为。
func (r RunReport) MarshalJSON() ([]byte, error) {
	type Alias RunReport
	return json.Marshal(Alias(r))
}
