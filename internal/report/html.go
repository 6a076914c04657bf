package report

import (
	"bytes"
	"html/template"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"

	"github.com/John-Robertt/movieset/internal/domain"
	"github.com/John-Robertt/movieset/internal/infra/fsx"
)

var page = template.Must(template.New("summary").Funcs(template.FuncMap{
	"comma": func(n int) string { return humanize.Comma(int64(n)) },
	"vote":  formatVote,
	"year":  yearLabel,
	"inc":   func(i int) int { return i + 1 },
	"deref": func(p *float64) float64 { return *p },
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Movie data set summary</title>
</head>
<body>
<h1>Movie data set summary</h1>
<table id="overview">
<tr><th>Movies</th><td class="movies">{{comma .Movies}}</td></tr>
<tr><th>Unique titles</th><td class="unique">{{comma .UniqueTitles}}</td></tr>
<tr><th>Average vote</th><td class="mean">{{if .MeanVote}}{{vote (deref .MeanVote)}}{{else}}no data{{end}}</td></tr>
</table>
<h2>Top {{.TopN}} movies</h2>
<table id="top">
<tr><th>#</th><th>Title</th><th>Id</th><th>Release date</th><th>Vote</th></tr>
{{range $i, $m := .Top}}<tr><td>{{inc $i}}</td><td class="title">{{$m.OriginalTitle}}</td><td>{{$m.ID}}</td><td>{{$m.ReleaseDate}}</td><td class="vote">{{vote $m.VoteAverage}}</td></tr>
{{end}}</table>
<h2>Movies released by year</h2>
<table id="years">
<tr><th>Year</th><th>Count</th></tr>
{{range .ByYear}}<tr><td class="key">{{year .Year}}</td><td class="count">{{comma .Count}}</td></tr>
{{end}}</table>
<h2>Movies count by genre</h2>
<table id="genres">
<tr><th>Genre</th><th>Count</th></tr>
{{range .ByGenre}}<tr><td class="key">{{.Name}}</td><td class="count">{{comma .Count}}</td></tr>
{{end}}</table>
</body>
</html>
`))

// RenderHTML 把统计结果渲染成一页静态 HTML（只有表格）。
func RenderHTML(s domain.Summary) ([]byte, error) {
	var buf bytes.Buffer
	if err := page.Execute(&buf, s); err != nil {
		return nil, errors.Wrap(err, "渲染 HTML 失败")
	}
	return buf.Bytes(), nil
}

// WriteHTML 渲染并原子写入 path；父目录必须已存在。
func WriteHTML(path string, s domain.Summary) error {
	b, err := RenderHTML(s)
	if err != nil {
		return err
	}
	return fsx.WriteFileAtomic(path, b)
}
