package main

import (
	"testing"

	"github.com/urfave/cli"

	"github.com/John-Robertt/movieset/internal/config"
)

// parseArgs 走一遍完整的 urfave/cli 解析，返回 action 看到的 CLIArgs。
func parseArgs(t *testing.T, args ...string) config.CLIArgs {
	t.Helper()
	app := cli.NewApp()
	configure(app)

	var got config.CLIArgs
	capture := func(c *cli.Context) error {
		got = cliArgs(c)
		return nil
	}
	app.Action = capture
	for i := range app.Commands {
		app.Commands[i].Action = capture
	}
	if err := app.Run(append([]string{"movieset"}, args...)); err != nil {
		t.Fatalf("解析参数失败：%v", err)
	}
	return got
}

func TestCLIArgs_GlobalFlagsBeforeRun(t *testing.T) {
	got := parseArgs(t, "--data_set_location", "in.csv", "--save_to", "g.json", "--top_n", "7", "--strict", "run")
	if !got.DataSetLocationSet || got.DataSetLocation != "in.csv" {
		t.Fatalf("data_set_location 未从全局 flag 继承：%+v", got)
	}
	if !got.SaveToSet || got.SaveTo != "g.json" {
		t.Fatalf("save_to 未从全局 flag 继承：%+v", got)
	}
	if !got.TopNSet || got.TopN != 7 {
		t.Fatalf("top_n 未从全局 flag 继承：%+v", got)
	}
	if !got.StrictSet || !got.Strict {
		t.Fatalf("strict 未从全局 flag 继承：%+v", got)
	}
	if got.LoggingLocationSet || got.LoggingLocation != config.DefaultLoggingLocation {
		t.Fatalf("未指定的 flag 应保持默认值：%+v", got)
	}
}

func TestCLIArgs_RunFlagWinsOverGlobal(t *testing.T) {
	got := parseArgs(t, "--save_to", "g.json", "run", "--save_to", "r.json")
	if !got.SaveToSet || got.SaveTo != "r.json" {
		t.Fatalf("期望 run 自己的 save_to 优先，实际 %+v", got)
	}
}

func TestCLIArgs_DefaultAction(t *testing.T) {
	got := parseArgs(t, "--save_to", "x.json")
	if !got.SaveToSet || got.SaveTo != "x.json" {
		t.Fatalf("默认 action 读取 flag 失败：%+v", got)
	}

	got = parseArgs(t)
	if got.SaveToSet || got.SaveTo != config.DefaultSaveTo {
		t.Fatalf("未指定时应为默认值且 Set=false：%+v", got)
	}
}
