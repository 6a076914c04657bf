package domain

import (
	"encoding/json"
	"math"
)

// YearCount 是某个年份（release_date 前 4 个字符）的上映数量。
type YearCount struct {
	Year  string `json:"year"`
	Count int    `json:"count"`
}

// GenreCount 是某个类型名下的电影数量（一部电影可计入多个类型）。
type GenreCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Summary 汇总一次运行的五个统计视图。
//
// MeanVote 为 nil 表示“无数据”（空表），不要用 NaN 代替。
type Summary struct {
	Movies       int          `json:"movies"`
	UniqueTitles int          `json:"unique_titles"`
	MeanVote     *float64     `json:"mean_vote"`
	TopN         int          `json:"top_n"`
	Top          []Movie      `json:"top"`
	ByYear       []YearCount  `json:"by_year"`
	ByGenre      []GenreCount `json:"by_genre"`
}

// MarshalJSON 把非有限的平均分写为 null（encoding/json 无法编码 Inf）。
func (s Summary) MarshalJSON() ([]byte, error) {
	type Alias Summary
	if s.MeanVote != nil && (math.IsNaN(*s.MeanVote) || math.IsInf(*s.MeanVote, 0)) {
		s.MeanVote = nil
	}
	return json.Marshal(Alias(s))
}
