package stats

import (
	"math"
	"sort"

	"github.com/John-Robertt/movieset/internal/domain"
)

// yearWidth 是从 release_date 截取年份的字符数。
const yearWidth = 4

// UniqueTitleCount 返回不同 original_title 的数量（区分大小写）。
func UniqueTitleCount(t domain.Table) int {
	seen := make(map[string]struct{}, len(t))
	for i := range t {
		seen[t[i].OriginalTitle] = struct{}{}
	}
	return len(seen)
}

// MeanVote 返回 vote_average 的算术平均值；NaN 跳过。
// 没有可用评分（空表或全为 NaN）时 ok=false。
func MeanVote(t domain.Table) (mean float64, ok bool) {
	var sum float64
	var n int
	for i := range t {
		v := t[i].VoteAverage
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

// TopNByVote 返回评分最高的 n 条记录，按评分降序；同分保持加载顺序。
// NaN 评分不参与排名；n<=0 返回空切片。返回的是副本，不与 t 共享 Genres。
func TopNByVote(t domain.Table, n int) []domain.Movie {
	if n <= 0 {
		return []domain.Movie{}
	}
	ranked := make(domain.Table, 0, len(t))
	for i := range t {
		if math.IsNaN(t[i].VoteAverage) {
			continue
		}
		ranked = append(ranked, t[i])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].VoteAverage > ranked[j].VoteAverage
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked.Clone()
}

// Year 返回 release_date 的前 4 个字符；不足 4 个字符时原样返回。
func Year(releaseDate string) string {
	n := 0
	for i := range releaseDate {
		if n == yearWidth {
			return releaseDate[:i]
		}
		n++
	}
	return releaseDate
}

// CountByYear 按年份分组计数，结果按年份升序；空日期归入 "" 桶（排在最前）。
func CountByYear(t domain.Table) []domain.YearCount {
	counts := make(map[string]int)
	for i := range t {
		counts[Year(t[i].ReleaseDate)]++
	}
	out := make([]domain.YearCount, 0, len(counts))
	for y, c := range counts {
		out = append(out, domain.YearCount{Year: y, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// WithYears 返回填充了 Years 的副本；t 本身不被修改。
func WithYears(t domain.Table) domain.Table {
	out := t.Clone()
	for i := range out {
		y := Year(out[i].ReleaseDate)
		out[i].Years = &y
	}
	return out
}

// CountByGenre 统计每个类型名下的电影数（一部电影可计入多个类型），按名称升序。
// 同一部电影里重复出现的类型会被重复计数。
func CountByGenre(t domain.Table) []domain.GenreCount {
	counts := make(map[string]int)
	for i := range t {
		for _, g := range t[i].Genres {
			counts[g.Name]++
		}
	}
	out := make([]domain.GenreCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, domain.GenreCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Summarize 一次性计算全部统计视图。
func Summarize(t domain.Table, n int) domain.Summary {
	s := domain.Summary{
		Movies:       len(t),
		UniqueTitles: UniqueTitleCount(t),
		TopN:         n,
		Top:          TopNByVote(t, n),
		ByYear:       CountByYear(t),
		ByGenre:      CountByGenre(t),
	}
	if m, ok := MeanVote(t); ok {
		s.MeanVote = &m
	}
	return s
}
