package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

const (
	// ErrCodeNotFound 表示显式指定的 --config 文件不存在。
	ErrCodeNotFound = "config_not_found"
	// ErrCodeInvalid 表示配置文件无法读取/解析，或字段不合法。
	ErrCodeInvalid = "config_invalid"
)

// FileName 是 cwd 下默认查找的配置文件名（可选）。
const FileName = "movieset.json"

const (
	DefaultDataSetLocation = "./data-sets/movies_metadata.csv"
	DefaultSaveTo          = "data_set_json.json"
	DefaultLoggingLocation = "logs.log"
	DefaultLoggingLevel    = "INFO"
	DefaultTopN            = 5

	// top_n 超出 [MinTopN, MaxTopN] 时截断。
	MinTopN = 1
	MaxTopN = 1000
)

// CLIArgs 保留每个参数“是否显式指定”的信息（来自命令行或环境变量）。
// 这能保证覆盖优先级可实现：例如 --strict=false 必须能覆盖 config.strict=true。
type CLIArgs struct {
	DataSetLocation    string
	DataSetLocationSet bool

	SaveTo    string
	SaveToSet bool

	LoggingLocation    string
	LoggingLocationSet bool

	LoggingLevel    string
	LoggingLevelSet bool

	TopN    int
	TopNSet bool

	SQLite    string
	SQLiteSet bool

	HTMLReport    string
	HTMLReportSet bool

	Report    string
	ReportSet bool

	Strict    bool
	StrictSet bool

	// Config 为空时尝试 <cwd>/movieset.json（可选）；显式指定时文件必须存在。
	Config    string
	ConfigSet bool
}

// FileConfig 对应 movieset.json 的解析结构。未出现的字段不覆盖默认值。
type FileConfig struct {
	DataSetLocation string `json:"data_set_location"`
	SaveTo          string `json:"save_to"`
	LoggingLocation string `json:"logging_location"`
	LoggingLevel    string `json:"logging_level"`
	TopN            *int   `json:"top_n"`
	SQLite          string `json:"sqlite"`
	HTMLReport      string `json:"html_report"`
	Report          string `json:"report"`
	Strict          *bool  `json:"strict"`
}

// EffectiveConfig 是合并并做最小规范化后的最终配置。路径都是 clean + absolute；
// 可选输出为空串表示关闭。
type EffectiveConfig struct {
	DataSetLocation string
	SaveTo          string
	LoggingLocation string
	LoggingLevel    string
	TopN            int

	SQLite     string
	HTMLReport string
	Report     string

	Strict bool

	// ConfigFile 是实际读取到的配置文件；没有读取时为空。
	ConfigFile string
}

// Error 是配置阶段的结构化错误（带 error_code）。
type Error struct {
	Code string
	Path string
	Err  error
}

func (e *Error) Error() string {
	switch e.Code {
	case ErrCodeNotFound:
		return fmt.Sprintf("%s：未找到配置文件 %q", e.Code, e.Path)
	case ErrCodeInvalid:
		if e.Err != nil {
			return fmt.Sprintf("%s：配置文件 %q 无效：%v", e.Code, e.Path, e.Err)
		}
		return fmt.Sprintf("%s：配置文件 %q 无效", e.Code, e.Path)
	default:
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

// LoadEffective 发现并读取配置文件，然后与 CLI 参数合并为最终配置。
//
// 发现规则：
// 1) CLI 指定 --config：必须存在，相对路径以 cwd 为基准
// 2) 否则尝试 <cwd>/movieset.json，不存在不报错
//
// 覆盖优先级：CLI（含环境变量）> 配置文件 > 内置默认值。
// CLI 中的相对路径以 cwd 为基准，配置文件中的相对路径以配置文件所在目录为基准。
func LoadEffective(cwd string, cli CLIArgs) (EffectiveConfig, error) {
	cwdAbs, err := filepath.Abs(cwd)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cwd, Err: err}
	}

	cfgPath := filepath.Join(cwdAbs, FileName)
	if cli.ConfigSet && strings.TrimSpace(cli.Config) != "" {
		cfgPath = absCleanFrom(cwdAbs, cli.Config)
	}

	fc, exists, err := readFileConfig(cfgPath)
	if err != nil {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: err}
	}
	if !exists && cli.ConfigSet {
		return EffectiveConfig{}, &Error{Code: ErrCodeNotFound, Path: cfgPath, Err: os.ErrNotExist}
	}
	if !exists {
		cfgPath = ""
	}

	return merge(cwdAbs, cli, fc, cfgPath)
}

func merge(cwd string, cli CLIArgs, fc FileConfig, cfgPath string) (EffectiveConfig, error) {
	fileBase := cwd
	if cfgPath != "" {
		fileBase = filepath.Dir(cfgPath)
	}

	// path 类字段：CLI > config > 默认；空串的可选输出表示关闭。
	pick := func(cliVal string, cliSet bool, fileVal, def string) string {
		switch {
		case cliSet:
			return absCleanFrom(cwd, cliVal)
		case strings.TrimSpace(fileVal) != "":
			return absCleanFrom(fileBase, fileVal)
		default:
			return absCleanFrom(cwd, def)
		}
	}

	eff := EffectiveConfig{
		DataSetLocation: pick(cli.DataSetLocation, cli.DataSetLocationSet, fc.DataSetLocation, DefaultDataSetLocation),
		SaveTo:          pick(cli.SaveTo, cli.SaveToSet, fc.SaveTo, DefaultSaveTo),
		LoggingLocation: pick(cli.LoggingLocation, cli.LoggingLocationSet, fc.LoggingLocation, DefaultLoggingLocation),
		SQLite:          pick(cli.SQLite, cli.SQLiteSet, fc.SQLite, ""),
		HTMLReport:      pick(cli.HTMLReport, cli.HTMLReportSet, fc.HTMLReport, ""),
		Report:          pick(cli.Report, cli.ReportSet, fc.Report, ""),
		ConfigFile:      cfgPath,
	}
	if eff.DataSetLocation == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: errors.New("data_set_location 不能为空")}
	}
	if eff.SaveTo == "" {
		return EffectiveConfig{}, &Error{Code: ErrCodeInvalid, Path: cfgPath, Err: errors.New("save_to 不能为空")}
	}

	// logging_level：级别名由 logx 解释，这里只做合并。
	eff.LoggingLevel = DefaultLoggingLevel
	if cli.LoggingLevelSet {
		eff.LoggingLevel = strings.TrimSpace(cli.LoggingLevel)
	} else if strings.TrimSpace(fc.LoggingLevel) != "" {
		eff.LoggingLevel = strings.TrimSpace(fc.LoggingLevel)
	}

	eff.TopN = DefaultTopN
	if cli.TopNSet {
		eff.TopN = cli.TopN
	} else if fc.TopN != nil {
		eff.TopN = *fc.TopN
	}
	if eff.TopN < MinTopN {
		eff.TopN = MinTopN
	}
	if eff.TopN > MaxTopN {
		eff.TopN = MaxTopN
	}

	if cli.StrictSet {
		eff.Strict = cli.Strict
	} else if fc.Strict != nil {
		eff.Strict = *fc.Strict
	}

	return eff, nil
}

// absCleanFrom 以 base 为基准，把 p 变为 clean + absolute。
// - p 为空：返回空串
// - p 若已是绝对路径：直接 Clean
// - p 若是相对路径：Join(base, p) 后 Clean
func absCleanFrom(base, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = filepath.Clean(p)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Clean(filepath.Join(base, p))
}

// readFileConfig 读取并解析 JSON 配置文件。
// 返回值 exists 表示该文件是否存在（不存在不算错误）。
func readFileConfig(path string) (fc FileConfig, exists bool, err error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return FileConfig{}, false, nil
		}
		return FileConfig{}, false, err
	}
	if err := json.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, true, errors.Wrap(err, "JSON 解析失败")
	}
	return fc, true, nil
}
