package domain

import (
	"bytes"
	"encoding/json"
	"math"
)

// Columns 是加载后保留的固定列，顺序即投影/导出顺序。
var Columns = []string{
	ColumnID,
	ColumnOriginalTitle,
	ColumnReleaseDate,
	ColumnVoteAverage,
	ColumnGenres,
}

const (
	ColumnID            = "id"
	ColumnOriginalTitle = "original_title"
	ColumnReleaseDate   = "release_date"
	ColumnVoteAverage   = "vote_average"
	ColumnGenres        = "genres"
)

// RawRow 是 CSV 的一行（列名 -> 原始字符串）。
//
// 约束：短行缺失的尾部列在 map 中不存在（absent），而不是空串。
type RawRow map[string]string

// Genre 对应 genres 列中 JSON 数组的一个元素。字段顺序与源数据一致（id 在前）。
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Movie 是清洗并完成类型转换后的一条记录。
//
// 不变量：
// - VoteAverage 在加载时可被解析为浮点数
// - Genres 在引号规范化后是合法 JSON
// - Years 只由 stats.WithYears 在副本上填充；Loader 不设置
type Movie struct {
	ID            string  `json:"id"`
	OriginalTitle string  `json:"original_title"`
	ReleaseDate   string  `json:"release_date"`
	VoteAverage   float64 `json:"vote_average"`
	Genres        []Genre `json:"genres"`
	Years         *string `json:"years,omitempty"`
}

// MarshalJSON 把非有限评分（NaN/±Inf）写为 null，nil Genres 写为 []。
// 这里不做 HTML 转义，是否转义由外层 Encoder 决定。
func (m Movie) MarshalJSON() ([]byte, error) {
	type Alias Movie
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(struct {
		Alias
		VoteAverage *float64 `json:"vote_average"`
		Genres      []Genre  `json:"genres"`
		Years       *string  `json:"years,omitempty"`
	}{
		Alias:       Alias(m),
		VoteAverage: Finite(m.VoteAverage),
		Genres:      nonNilGenres(m.Genres),
		Years:       m.Years,
	})
	if err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// Finite 对 NaN/±Inf 返回 nil，否则返回 v 的指针。
func Finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func nonNilGenres(g []Genre) []Genre {
	if g == nil {
		return []Genre{}
	}
	return g
}

// Table 按 CSV 行序保存 Movie（过滤之后）；不对 id/title 做唯一性约束。
type Table []Movie

// Clone 深拷贝（Genres 切片与 Years 指针都不与原表共享）。
func (t Table) Clone() Table {
	if t == nil {
		return nil
	}
	out := make(Table, len(t))
	for i, m := range t {
		c := m
		if m.Genres != nil {
			c.Genres = append([]Genre(nil), m.Genres...)
		}
		if m.Years != nil {
			y := *m.Years
			c.Years = &y
		}
		out[i] = c
	}
	return out
}
