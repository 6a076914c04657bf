package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli"

	"github.com/John-Robertt/movieset/internal/config"
)

const (
	dataSetLocationFlag = "data_set_location"
	saveToFlag          = "save_to"
	loggingLocationFlag = "logging_location"
	loggingLevelFlag    = "logging_level"
	topNFlag            = "top_n"
	sqliteFlag          = "sqlite"
	htmlReportFlag      = "html_report"
	reportFlag          = "report"
	strictFlag          = "strict"
	configFlag          = "config"
)

func configure(app *cli.App) {
	app.Flags = registerRunFlags(app.Flags)
	app.Action = runAction
	app.OnUsageError = usageError
	app.Commands = []cli.Command{makeRunCMD()}
}

func makeRunCMD() cli.Command {
	runCMD := cli.Command{
		Name:         "run",
		Aliases:      []string{"r"},
		Usage:        "Load, clean, summarize and export the data set (default action)",
		Action:       runAction,
		OnUsageError: usageError,
	}
	runCMD.Flags = registerRunFlags(runCMD.Flags)
	return runCMD
}

func registerRunFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   dataSetLocationFlag,
			Usage:  "location of the movie data set (CSV)",
			EnvVar: "MOVIESET_DATA_SET_LOCATION",
			Value:  config.DefaultDataSetLocation,
		},
		cli.StringFlag{
			Name:   saveToFlag,
			Usage:  "where to save the cleaned data set as JSON lines",
			EnvVar: "MOVIESET_SAVE_TO",
			Value:  config.DefaultSaveTo,
		},
		cli.StringFlag{
			Name:   loggingLocationFlag,
			Usage:  "location of the logging file",
			EnvVar: "MOVIESET_LOGGING_LOCATION",
			Value:  config.DefaultLoggingLocation,
		},
		cli.StringFlag{
			Name:   loggingLevelFlag,
			Usage:  "logging level (DEBUG, INFO, WARNING, ERROR, CRITICAL)",
			EnvVar: "MOVIESET_LOGGING_LEVEL",
			Value:  config.DefaultLoggingLevel,
		},
		cli.IntFlag{
			Name:   topNFlag,
			Usage:  fmt.Sprintf("how many top rated movies to report (%d-%d)", config.MinTopN, config.MaxTopN),
			EnvVar: "MOVIESET_TOP_N",
			Value:  config.DefaultTopN,
		},
		cli.StringFlag{
			Name:   sqliteFlag,
			Usage:  "also export the cleaned data set to this SQLite database",
			EnvVar: "MOVIESET_SQLITE",
		},
		cli.StringFlag{
			Name:   htmlReportFlag,
			Usage:  "also write an HTML summary page to this path",
			EnvVar: "MOVIESET_HTML_REPORT",
		},
		cli.StringFlag{
			Name:   reportFlag,
			Usage:  "write the JSON run report to this path",
			EnvVar: "MOVIESET_REPORT",
		},
		cli.BoolFlag{
			Name:   strictFlag,
			Usage:  "treat malformed CSV records (field count, bare quotes) as a load failure",
			EnvVar: "MOVIESET_STRICT",
		},
		cli.StringFlag{
			Name:   configFlag,
			Usage:  "configuration file (default: movieset.json in the working directory, if present)",
			EnvVar: "MOVIESET_CONFIG",
		},
	)
}

// cliArgs 读取 flag 值，并保留“是否显式指定”（命令行或环境变量）的信息。
// run 子命令自己的 flag 优先；未指定时回退到写在 run 之前的全局 flag。
func cliArgs(c *cli.Context) config.CLIArgs {
	var a config.CLIArgs
	a.DataSetLocation, a.DataSetLocationSet = stringFlag(c, dataSetLocationFlag)
	a.SaveTo, a.SaveToSet = stringFlag(c, saveToFlag)
	a.LoggingLocation, a.LoggingLocationSet = stringFlag(c, loggingLocationFlag)
	a.LoggingLevel, a.LoggingLevelSet = stringFlag(c, loggingLevelFlag)
	a.TopN, a.TopNSet = intFlag(c, topNFlag)
	a.SQLite, a.SQLiteSet = stringFlag(c, sqliteFlag)
	a.HTMLReport, a.HTMLReportSet = stringFlag(c, htmlReportFlag)
	a.Report, a.ReportSet = stringFlag(c, reportFlag)
	a.Strict, a.StrictSet = boolFlag(c, strictFlag)
	a.Config, a.ConfigSet = stringFlag(c, configFlag)
	return a
}

func stringFlag(c *cli.Context, name string) (string, bool) {
	if c.IsSet(name) {
		return c.String(name), true
	}
	if c.GlobalIsSet(name) {
		return c.GlobalString(name), true
	}
	return c.String(name), false
}

func intFlag(c *cli.Context, name string) (int, bool) {
	if c.IsSet(name) {
		return c.Int(name), true
	}
	if c.GlobalIsSet(name) {
		return c.GlobalInt(name), true
	}
	return c.Int(name), false
}

func boolFlag(c *cli.Context, name string) (bool, bool) {
	if c.IsSet(name) {
		return c.Bool(name), true
	}
	if c.GlobalIsSet(name) {
		return c.GlobalBool(name), true
	}
	return c.Bool(name), false
}

func usageError(c *cli.Context, err error, isSubcommand bool) error {
	fmt.Fprintf(os.Stderr, "参数错误：%v\n\n", err)
	_ = cli.ShowAppHelp(c)
	return cli.NewExitError("", exitUsage)
}
