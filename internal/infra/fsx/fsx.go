package fsx

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/pkg/errors"
)

// 通过可替换的函数指针，让测试能稳定模拟 rename 失败。
var renameFunc = os.Rename

// PathTypeConflictError 表示目标路径类型冲突（例如期望文件但实际是目录）。
type PathTypeConflictError struct {
	Path string
	Want string
	Got  string
}

func (e *PathTypeConflictError) Error() string {
	return fmt.Sprintf("目标路径类型冲突：%q（期望 %s，实际 %s）", e.Path, e.Want, e.Got)
}

func IsPathTypeConflict(err error) bool {
	var e *PathTypeConflictError
	return errors.As(err, &e)
}

// WriteFileAtomic 原子写入 path（同目录临时文件 + rename），已存在则覆盖。
//
// 不会创建父目录：目录不存在时返回的错误满足 errors.Is(err, fs.ErrNotExist)。
func WriteFileAtomic(path string, data []byte) error {
	return WriteAtomic(path, func(w io.Writer) error {
		_, err := w.Write(data)
		return err
	})
}

// WriteAtomic 与 WriteFileAtomic 相同，但内容由 write 流式写入（带缓冲）。
// write 返回错误时目标文件保持原样。
func WriteAtomic(path string, write func(w io.Writer) error) error {
	return replace(path, func(tmp *os.File) error {
		bw := bufio.NewWriterSize(tmp, 64*1024)
		if err := write(bw); err != nil {
			return err
		}
		return bw.Flush()
	})
}

// BuildAtomic 先创建同目录的空临时文件，交给 build 按路径填充（例如 SQLite 数据库），
// 成功后再 rename 到 path。build 必须在返回前关闭它自己打开的句柄。
func BuildAtomic(path string, build func(tmpPath string) error) error {
	return replace(path, func(tmp *os.File) error {
		return build(tmp.Name())
	})
}

func replace(path string, fill func(tmp *os.File) error) error {
	path = filepath.Clean(path)
	dir, name := filepath.Split(path)
	if dir == "" {
		dir = "."
	}

	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		return &PathTypeConflictError{Path: path, Want: "file", Got: "dir"}
	}

	// 临时文件必须与目标同目录，以保证 rename 的原子性。
	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	if err := fill(tmp); err != nil {
		return err
	}
	if err := tmp.Sync(); err != nil {
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	if err := renameFunc(tmpName, path); err != nil {
		return errors.Wrapf(err, "重命名 %q 失败", path)
	}

	// 目录 fsync：best-effort（不同平台/文件系统的语义差异很大）。
	_ = syncDirBestEffort(dir)
	return nil
}

func syncDirBestEffort(dir string) error {
	// Windows 上目录 Sync 的语义与支持情况不稳定，这里直接跳过。
	if runtime.GOOS == "windows" {
		return nil
	}
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	return f.Sync()
}
