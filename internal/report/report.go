package report

import (
	"io"
	"math"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/John-Robertt/movieset/internal/domain"
)

// Log 以 info 级别输出统计结果，每个条目一行。
// log 为 nil 时不输出；日志写入失败由 logrus 自行处理，不会中断调用方。
func Log(log logrus.FieldLogger, s domain.Summary) {
	if log == nil {
		d := logrus.New()
		d.SetOutput(io.Discard)
		log = d
	}

	log.Infof("Number of unique movies: %s", humanize.Comma(int64(s.UniqueTitles)))
	if s.MeanVote != nil {
		log.Infof("The average vote for a movie is : %s", formatVote(*s.MeanVote))
	} else {
		log.Info("The average vote for a movie is : no data")
	}

	log.Infof("Top %d movies are :", s.TopN)
	for i, m := range s.Top {
		log.WithFields(logrus.Fields{
			"id":           m.ID,
			"release_date": m.ReleaseDate,
		}).Infof("  %d. %s %s", i+1, m.OriginalTitle, formatVote(m.VoteAverage))
	}

	log.Infof("Movies released by year : %s years", humanize.Comma(int64(len(s.ByYear))))
	for _, y := range s.ByYear {
		log.Infof("  %s %s", yearLabel(y.Year), humanize.Comma(int64(y.Count)))
	}

	log.Infof("Movies count by genre : %s genres", humanize.Comma(int64(len(s.ByGenre))))
	for _, g := range s.ByGenre {
		log.Infof("  %s %s", g.Name, humanize.Comma(int64(g.Count)))
	}
}

// formatVote 用最短表示输出评分（7.7 而不是 7.700000），整数值保留一位小数（5.0）。
func formatVote(v float64) string {
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// yearLabel 给空日期桶一个可读的名字。
func yearLabel(y string) string {
	if y == "" {
		return "(unknown)"
	}
	return y
}
