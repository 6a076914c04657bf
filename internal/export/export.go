package export

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"

	"github.com/pkg/errors"

	"github.com/John-Robertt/movieset/internal/domain"
	"github.com/John-Robertt/movieset/internal/infra/fsx"
)

const (
	KindJSONL  = "jsonl"
	KindSQLite = "sqlite"
	KindHTML   = "html"
)

// Error 是导出阶段的结构化错误。Kind 取值见 domain.ErrCodeExport*。
type Error struct {
	Kind string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Kind {
	case domain.ErrCodeExportNotFound:
		return fmt.Sprintf("%s：输出目录不存在：%q", e.Kind, e.Path)
	case domain.ErrCodeExportPermission:
		return fmt.Sprintf("%s：没有权限写入 %q：%v", e.Kind, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s：写入 %q 失败：%v", e.Kind, e.Path, e.Err)
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取导出错误的 kind；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// Classify 把写文件时的底层错误归类为导出错误。已经是 *Error 的只补全 Path。
func Classify(path string, err error) error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		if e.Path == "" {
			e.Path = path
		}
		return e
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &Error{Kind: domain.ErrCodeExportNotFound, Path: path, Err: err}
	case errors.Is(err, fs.ErrPermission), fsx.IsPathTypeConflict(err):
		return &Error{Kind: domain.ErrCodeExportPermission, Path: path, Err: err}
	default:
		return &Error{Kind: domain.ErrCodeExportSerialization, Path: path, Err: err}
	}
}

// JSONLines 把表按顺序写成换行分隔的 JSON（每行一个对象，末尾有换行）。
// 父目录必须已存在；写入是原子的，失败时不会留下半个文件。
func JSONLines(t domain.Table, path string) error {
	err := fsx.WriteAtomic(path, func(w io.Writer) error {
		return EncodeJSONLines(w, t)
	})
	return Classify(path, err)
}

// EncodeJSONLines 把 t 编码到 w。非 ASCII 字符原样输出，不做 HTML 转义；
// 非有限评分写为 null（见 domain.Movie.MarshalJSON）。
func EncodeJSONLines(w io.Writer, t domain.Table) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for i := range t {
		if err := enc.Encode(t[i]); err != nil {
			return &Error{Kind: domain.ErrCodeExportSerialization, Err: errors.Wrapf(err, "第 %d 条记录（id=%s）", i, t[i].ID)}
		}
	}
	return nil
}
