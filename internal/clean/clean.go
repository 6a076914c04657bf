package clean

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/John-Robertt/movieset/internal/domain"
	"github.com/John-Robertt/movieset/internal/validate"
)

// Options 控制行清洗的宽严程度。
type Options struct {
	// StrictFieldCount 为 true 时，任何字段数与表头不一致的记录都视为 source_parse_error，
	// 未加引号字段里的裸引号也不再容忍。
	// 默认宽松：短行缺失列为 absent，长行多余字段忽略。
	StrictFieldCount bool
}

// Result 是一次清洗的结果。只统计总数，不逐行记录丢弃原因。
// Lines[i] 是 Rows[i] 在源文件中的起始行号（用于下游报错定位）。
type Result struct {
	Header  []string
	Rows    []domain.RawRow
	Lines   []int
	Read    int
	Kept    int
	Dropped int
}

// Error 是清洗阶段的结构化错误（带 error_code）。
type Error struct {
	Code   string
	Line   int    // CSV 行号（1-based，包含表头）；0 表示未知
	Column string // missing_column 时为缺失的列名
	Err    error
}

func (e *Error) Error() string {
	switch e.Code {
	case domain.ErrCodeMissingColumn:
		return fmt.Sprintf("%s：表头缺少列 %q", e.Code, e.Column)
	case domain.ErrCodeSourceEmpty:
		return fmt.Sprintf("%s：数据源为空（没有表头）", e.Code)
	default:
		if e.Line > 0 && e.Err != nil {
			return fmt.Sprintf("%s：第 %d 行：%v", e.Code, e.Line, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：%v", e.Code, e.Err)
		}
		return e.Code
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Code 从 error 中提取 error_code；若不是 *Error 则返回空串。
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Clean 按文件顺序读取 r 中的 CSV，保留满足类型检查的行。
//
// 规则：
//   - intCols 中每一列都必须存在且 validate.CanParseInt 为真
//   - floatCols 中每一列都必须存在且 validate.CanParseFloat 为真
//   - 其他列不检查；不合格的行静默丢弃，只计数
//   - intCols/floatCols 中的列不在表头里 => missing_column（不会静默吞掉）
func Clean(r io.Reader, intCols, floatCols []string, opts Options) (Result, error) {
	cr := csv.NewReader(stripBOM(r))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = !opts.StrictFieldCount
	cr.ReuseRecord = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return Result{}, &Error{Code: domain.ErrCodeSourceEmpty}
		}
		return Result{}, parseError(err)
	}
	header = append([]string(nil), header...)

	if err := RequireColumns(header, intCols...); err != nil {
		return Result{}, err
	}
	if err := RequireColumns(header, floatCols...); err != nil {
		return Result{}, err
	}

	res := Result{Header: header, Rows: make([]domain.RawRow, 0, 1024)}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Result{}, parseError(err)
		}
		res.Read++

		if opts.StrictFieldCount && len(rec) != len(header) {
			line, _ := cr.FieldPos(0)
			return Result{}, &Error{
				Code: domain.ErrCodeSourceParse,
				Line: line,
				Err:  errors.Errorf("字段数 %d 与表头 %d 不一致", len(rec), len(header)),
			}
		}

		row := toRow(header, rec)
		if !valid(row, intCols, floatCols) {
			res.Dropped++
			continue
		}
		line, _ := cr.FieldPos(0)
		res.Rows = append(res.Rows, row)
		res.Lines = append(res.Lines, line)
		res.Kept++
	}
	return res, nil
}

// RequireColumns 检查 header 是否包含全部 cols；缺失时返回第一个缺失列的 missing_column 错误。
func RequireColumns(header []string, cols ...string) error {
	have := make(map[string]struct{}, len(header))
	for _, h := range header {
		have[h] = struct{}{}
	}
	for _, c := range cols {
		if _, ok := have[c]; !ok {
			return &Error{Code: domain.ErrCodeMissingColumn, Column: c}
		}
	}
	return nil
}

func toRow(header, rec []string) domain.RawRow {
	row := make(domain.RawRow, len(header))
	for i, h := range header {
		if i >= len(rec) {
			break // 短行：剩余列保持 absent
		}
		row[h] = rec[i]
	}
	return row
}

func valid(row domain.RawRow, intCols, floatCols []string) bool {
	for _, c := range intCols {
		v, ok := row[c]
		if !ok || !validate.CanParseInt(v) {
			return false
		}
	}
	for _, c := range floatCols {
		v, ok := row[c]
		if !ok || !validate.CanParseFloat(v) {
			return false
		}
	}
	return true
}

func parseError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &Error{Code: domain.ErrCodeSourceParse, Line: pe.Line, Err: pe.Err}
	}
	return &Error{Code: domain.ErrCodeSourceParse, Err: errors.Wrap(err, "读取 CSV 失败")}
}

var bom = []byte{0xEF, 0xBB, 0xBF}

// stripBOM 去掉 UTF-8 BOM（部分导出工具会在文件头写入）。
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, _ := br.Peek(len(bom)); bytes.Equal(head, bom) {
		_, _ = br.Discard(len(bom))
	}
	return br
}
