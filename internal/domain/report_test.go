package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunReport_Finalize_SortStatusAndUTC(t *testing.T) {
	r := RunReport{
		Input:      "/abs/movies.csv",
		StartedAt:  time.Date(2026, 2, 9, 10, 0, 0, 0, time.FixedZone("X", 8*3600)),
		FinishedAt: time.Date(2026, 2, 9, 10, 0, 1, 0, time.FixedZone("X", 8*3600)),
		Exports: []ExportResult{
			{Kind: "sqlite", Status: ExportStatusFailed, ErrorCode: ErrCodeExportNotFound},
			{Kind: "jsonl", Status: ExportStatusWritten},
		},
	}

	r.Finalize()

	assert.Equal(t, "jsonl", r.Exports[0].Kind)
	assert.Equal(t, "sqlite", r.Exports[1].Kind)
	assert.Equal(t, StatusPartial, r.Status)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	// time.Time 在 UTC 下应输出 'Z' 后缀。
	assert.Contains(t, string(b), `"started_at":"2026-02-09T02:00:00Z"`)
}

func TestRunReport_Finalize_FailedWinsAndNilExports(t *testing.T) {
	r := RunReport{ErrorCode: ErrCodeSourceNotFound}
	r.Finalize()

	assert.Equal(t, StatusFailed, r.Status)
	require.NotNil(t, r.Exports)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"exports":[]`)
}

func TestRunReport_Finalize_OK(t *testing.T) {
	r := RunReport{Exports: []ExportResult{{Kind: "jsonl", Status: ExportStatusWritten}}}
	r.Finalize()
	assert.Equal(t, StatusOK, r.Status)
}

func TestTable_CloneIsDeep(t *testing.T) {
	y := "1999"
	orig := Table{{ID: "1", Genres: []Genre{{ID: 16, Name: "Animation"}}, Years: &y}}

	c := orig.Clone()
	c[0].Genres[0].Name = "Drama"
	*c[0].Years = "2000"

	assert.Equal(t, "Animation", orig[0].Genres[0].Name)
	assert.Equal(t, "1999", *orig[0].Years)
	assert.Nil(t, Table(nil).Clone())
}

func TestMovie_JSONKeyOrder(t *testing.T) {
	b, err := json.Marshal(Movie{ID: "862", OriginalTitle: "Toy Story", ReleaseDate: "1995-10-30", VoteAverage: 7.7, Genres: []Genre{{ID: 16, Name: "Animation"}}})
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":"862","original_title":"Toy Story","release_date":"1995-10-30","vote_average":7.7,"genres":[{"id":16,"name":"Animation"}]}`,
		string(b),
	)
}

func TestMovie_JSONNonFiniteVoteIsNull(t *testing.T) {
	y := "1995"
	b, err := json.Marshal(Movie{ID: "1", VoteAverage: math.Inf(1), Years: &y})
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":"1","original_title":"","release_date":"","vote_average":null,"genres":[],"years":"1995"}`,
		string(b),
	)
}

func TestSummary_JSONNonFiniteMeanIsNull(t *testing.T) {
	inf := math.Inf(-1)
	s := Summary{MeanVote: &inf}
	b, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"mean_vote":null`)
	assert.True(t, math.IsInf(*s.MeanVote, -1), "MarshalJSON 不应修改原值")
}
