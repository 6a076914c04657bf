package dataset

import (
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/movieset/internal/clean"
	"github.com/John-Robertt/movieset/internal/domain"
	"github.com/John-Robertt/movieset/internal/validate"
)

// sampleRows 是加载完成后在 debug 级别打印的示例行数。
const sampleRows = 5

// Options 控制加载行为。
type Options struct {
	// Strict 透传给 clean.Options.StrictFieldCount。
	Strict bool
	// Log 为空时不输出日志。
	Log logrus.FieldLogger
}

// Error 是加载阶段的结构化错误（带 error_code）。加载失败时不会返回部分表。
type Error struct {
	Code  string
	Path  string
	Line   int    // 出错记录的起始行号（genre_format / source_parse_error）
	Column string // missing_column 时为缺少的列名
	RowID  string // genre_format 时为该行 id
	Value  string // genre_format 时为原始 genres 值
	Err    error
}

func (e *Error) Error() string {
	switch e.Code {
	case domain.ErrCodeSourceNotFound:
		return fmt.Sprintf("%s：数据集文件 %q 不存在", e.Code, e.Path)
	case domain.ErrCodeSourcePermission:
		return fmt.Sprintf("%s：没有权限读取数据集文件 %q", e.Code, e.Path)
	case domain.ErrCodeSourceEmpty:
		return fmt.Sprintf("%s：数据集文件 %q 为空", e.Code, e.Path)
	case domain.ErrCodeMissingColumn:
		return fmt.Sprintf("%s：数据集文件 %q 表头缺少列 %q", e.Code, e.Path, e.Column)
	case domain.ErrCodeGenreFormat:
		return fmt.Sprintf("%s：%q 第 %d 行（id=%s）genres 不是合法 JSON：%v", e.Code, e.Path, e.Line, e.RowID, e.Err)
	default:
		if e.Line > 0 && e.Err != nil {
			return fmt.Sprintf("%s：数据集文件 %q 第 %d 行：%v", e.Code, e.Path, e.Line, e.Err)
		}
		if e.Err != nil {
			return fmt.Sprintf("%s：数据集文件 %q：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：数据集文件 %q", e.Code, e.Path)
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

// Load 打开 path 并加载为 Movie 表。
//
// 文件句柄在所有返回路径上都会关闭（包括解析失败）。
// 没有任何行通过清洗时返回空表而不是错误。
func Load(path string, opts Options) (domain.Table, clean.Result, error) {
	log := logger(opts.Log)
	log.Infof("Loading data from %s", path)

	f, err := os.Open(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, clean.Result{}, &Error{Code: domain.ErrCodeSourceNotFound, Path: path, Err: err}
		case errors.Is(err, fs.ErrPermission):
			return nil, clean.Result{}, &Error{Code: domain.ErrCodeSourcePermission, Path: path, Err: err}
		default:
			return nil, clean.Result{}, &Error{Code: domain.ErrCodeSourceParse, Path: path, Err: errors.Wrap(err, "打开失败")}
		}
	}
	defer f.Close()

	return LoadReader(f, path, opts)
}

// LoadReader 与 Load 相同，但从已打开的 r 读取；source 仅用于错误信息与日志。
func LoadReader(r io.Reader, source string, opts Options) (domain.Table, clean.Result, error) {
	log := logger(opts.Log)

	res, err := clean.Clean(r,
		[]string{domain.ColumnID},
		[]string{domain.ColumnVoteAverage},
		clean.Options{StrictFieldCount: opts.Strict},
	)
	if err != nil {
		return nil, clean.Result{}, fromClean(source, err)
	}
	if err := clean.RequireColumns(res.Header, domain.Columns...); err != nil {
		return nil, clean.Result{}, fromClean(source, err)
	}
	log.WithFields(logrus.Fields{
		"read":    res.Read,
		"dropped": res.Dropped,
	}).Infof("After cleaning we have %d entries", res.Kept)

	table := make(domain.Table, 0, len(res.Rows))
	for i, row := range res.Rows {
		m, err := project(row)
		if err != nil {
			var ge *genreError
			if errors.As(err, &ge) {
				return nil, clean.Result{}, &Error{
					Code:  domain.ErrCodeGenreFormat,
					Path:  source,
					Line:  res.Lines[i],
					RowID: row[domain.ColumnID],
					Value: ge.value,
					Err:   ge.err,
				}
			}
			return nil, clean.Result{}, &Error{Code: domain.ErrCodeSourceParse, Path: source, Line: res.Lines[i], Err: err}
		}
		table = append(table, m)
	}

	log.Info("Finished loading data")
	for i := 0; i < len(table) && i < sampleRows; i++ {
		m := table[i]
		log.WithFields(logrus.Fields{
			"id":           m.ID,
			"release_date": m.ReleaseDate,
			"vote_average": m.VoteAverage,
			"genres":       len(m.Genres),
		}).Debugf("Example entry: %s", m.OriginalTitle)
	}
	return table, res, nil
}

type genreError struct {
	value string
	err   error
}

func (e *genreError) Error() string { return e.err.Error() }

// project 把清洗后的行投影到固定五列并完成类型转换。
// vote_average 已经由清洗保证可解析；genres 在这里解码。
func project(row domain.RawRow) (domain.Movie, error) {
	vote, ok := validate.ParseFloat(row[domain.ColumnVoteAverage])
	if !ok {
		return domain.Movie{}, errors.Errorf("vote_average 无法解析：%q", row[domain.ColumnVoteAverage])
	}

	raw, present := row[domain.ColumnGenres]
	if !present {
		return domain.Movie{}, &genreError{err: errors.New("缺少 genres 字段")}
	}
	genres, err := DecodeGenres(raw)
	if err != nil {
		return domain.Movie{}, &genreError{value: raw, err: err}
	}

	return domain.Movie{
		ID:            row[domain.ColumnID],
		OriginalTitle: row[domain.ColumnOriginalTitle],
		ReleaseDate:   row[domain.ColumnReleaseDate],
		VoteAverage:   vote,
		Genres:        genres,
	}, nil
}

// DecodeGenres 把单引号风格的 genres 字符串（例如 [{'id': 16, 'name': 'Animation'}]）
// 规范化为双引号后按 JSON 数组解码。
//
// 注意：名称里自带的撇号也会被替换，导致解码失败；这属于数据质量问题，调用方应报错而不是跳过。
func DecodeGenres(raw string) ([]domain.Genre, error) {
	norm := strings.TrimSpace(strings.ReplaceAll(raw, "'", `"`))
	if !strings.HasPrefix(norm, "[") {
		return nil, errors.Errorf("期望 JSON 数组，实际 %q", truncate(raw, 80))
	}
	genres := []domain.Genre{}
	if err := json.Unmarshal([]byte(norm), &genres); err != nil {
		return nil, errors.Wrap(err, "JSON 解码失败")
	}
	return genres, nil
}

func fromClean(source string, err error) error {
	var ce *clean.Error
	if errors.As(err, &ce) {
		return &Error{Code: ce.Code, Path: source, Line: ce.Line, Column: ce.Column, Err: ce.Err}
	}
	return &Error{Code: domain.ErrCodeSourceParse, Path: source, Err: err}
}

func logger(l logrus.FieldLogger) logrus.FieldLogger {
	if l != nil {
		return l
	}
	d := logrus.New()
	d.SetOutput(io.Discard)
	return d
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
