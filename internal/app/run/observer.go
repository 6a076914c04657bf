package run

import (
	"time"

	"github.com/John-Robertt/movieset/internal/config"
	"github.com/John-Robertt/movieset/internal/domain"
)

// Observer 把阶段耗时与导出结果从执行流程中解耦出来，由上层决定如何展示。
//
// run 包只负责发事件；执行是单 goroutine 的，事件按发生顺序到达。
type Observer interface {
	// OnStart 在 ExecuteWithObserver 开始时调用。
	OnStart(runID string, eff config.EffectiveConfig)
	// OnPhaseDone 在 load/summarize/report 阶段结束时调用。
	OnPhaseDone(name string, fields map[string]any, dur time.Duration)
	// OnExportDone 在每个导出目标写完（成功或失败）后调用。
	OnExportDone(res domain.ExportResult, dur time.Duration)
}
