package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"
)

// 退出码：0 成功；1 加载失败；2 参数/配置错误；3 导出失败。
const (
	exitOK           = 0
	exitLoadFailed   = 1
	exitUsage        = 2
	exitExportFailed = 3
)

func main() {
	app := cli.NewApp()
	app.Name = "movieset"
	app.Usage = "Clean a movie metadata CSV, log descriptive statistics and export it as JSON lines"
	app.Version = "0.1.0"
	configure(app)

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "参数错误：%v\n", err)
		os.Exit(exitUsage)
	}
}
