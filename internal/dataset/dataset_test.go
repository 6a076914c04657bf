package dataset

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/John-Robertt/movieset/internal/domain"
)

const moviesCSV = `id,original_title,overview,release_date,vote_average,genres
862,Toy Story,"A cowboy doll, profoundly threatened",1995-10-30,7.7,"[{'id': 16, 'name': 'Animation'}, {'id': 35, 'name': 'Comedy'}]"
8844,Jumanji,x,1995-12-15,6.9,"[{'id': 12, 'name': 'Adventure'}]"
1997-08-20,Broken,x,1997-08-20,6.0,[]
15602,Grumpier Old Men,x,1995-12-22,N/A,[]
31357,Waiting to Exhale,x,,6.1,[]
`

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "movies.csv")
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func TestLoad_ProjectsAndDecodes(t *testing.T) {
	table, res, err := Load(writeCSV(t, moviesCSV), Options{})
	require.NoError(t, err)

	assert.Equal(t, 5, res.Read)
	assert.Equal(t, 3, res.Kept)
	assert.Equal(t, 2, res.Dropped)
	require.Len(t, table, 3)

	toy := table[0]
	assert.Equal(t, "862", toy.ID)
	assert.Equal(t, "Toy Story", toy.OriginalTitle)
	assert.Equal(t, "1995-10-30", toy.ReleaseDate)
	assert.Equal(t, 7.7, toy.VoteAverage)
	assert.Equal(t, []domain.Genre{{ID: 16, Name: "Animation"}, {ID: 35, Name: "Comedy"}}, toy.Genres)
	assert.Nil(t, toy.Years)

	assert.Equal(t, "31357", table[2].ID)
	assert.Equal(t, "", table[2].ReleaseDate)
	assert.NotNil(t, table[2].Genres)
	assert.Empty(t, table[2].Genres)
}

func TestLoad_NotFound(t *testing.T) {
	_, _, err := Load(filepath.Join(t.TempDir(), "nope.csv"), Options{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeSourceNotFound, Code(err))
}

func TestLoad_PermissionDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("root 或 windows 下无法构造不可读文件")
	}
	p := writeCSV(t, moviesCSV)
	require.NoError(t, os.Chmod(p, 0o000))
	_, _, err := Load(p, Options{})
	assert.Equal(t, domain.ErrCodeSourcePermission, Code(err))
}

func TestLoad_EmptyFile(t *testing.T) {
	_, _, err := Load(writeCSV(t, ""), Options{})
	assert.Equal(t, domain.ErrCodeSourceEmpty, Code(err))
}

func TestLoad_HeaderOnlyIsEmptyTable(t *testing.T) {
	table, res, err := Load(writeCSV(t, "id,original_title,release_date,vote_average,genres\n"), Options{})
	require.NoError(t, err)
	assert.Empty(t, table)
	assert.Equal(t, 0, res.Kept)
}

func TestLoad_MissingProjectedColumn(t *testing.T) {
	_, _, err := LoadReader(strings.NewReader("id,original_title,vote_average,genres\n1,A,5,[]\n"), "mem", Options{})
	require.Error(t, err)
	assert.Equal(t, domain.ErrCodeMissingColumn, Code(err))
	assert.Contains(t, err.Error(), "release_date")
	assert.Equal(t, 1, strings.Count(err.Error(), domain.ErrCodeMissingColumn), err.Error())
}

func TestLoad_GenreFormatIsFatal(t *testing.T) {
	in := "id,original_title,release_date,vote_average,genres\n" +
		"1,A,2000-01-01,5,[]\n" +
		"2,B,2000-01-01,6,\"[{'id': 1, 'name': 'Children's'}]\"\n"
	table, _, err := LoadReader(strings.NewReader(in), "mem", Options{})
	require.Error(t, err)
	assert.Nil(t, table)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, domain.ErrCodeGenreFormat, e.Code)
	assert.Equal(t, 3, e.Line)
	assert.Equal(t, "2", e.RowID)
	assert.Contains(t, e.Value, "Children's")
}

func TestLoad_AbsentGenresIsGenreFormat(t *testing.T) {
	in := "id,original_title,release_date,vote_average,genres\n1,A,2000,5\n"
	_, _, err := LoadReader(strings.NewReader(in), "mem", Options{})
	assert.Equal(t, domain.ErrCodeGenreFormat, Code(err))
}

func TestLoad_StrictPropagatesParseError(t *testing.T) {
	in := "id,original_title,release_date,vote_average,genres\n1,A,2000,5,[],extra\n"
	_, _, err := LoadReader(strings.NewReader(in), "mem", Options{Strict: true})
	assert.Equal(t, domain.ErrCodeSourceParse, Code(err))

	_, _, err = LoadReader(strings.NewReader(in), "mem", Options{})
	assert.NoError(t, err)
}

func TestLoad_ParseErrorMessageNamesCodeOnce(t *testing.T) {
	in := "id,original_title,release_date,vote_average,genres\n1,A,2000,5,[],extra\n"
	_, _, err := LoadReader(strings.NewReader(in), "mem", Options{Strict: true})
	require.Error(t, err)

	var e *Error
	require.ErrorAs(t, err, &e)
	assert.Equal(t, 2, e.Line)
	assert.Equal(t, 1, strings.Count(err.Error(), domain.ErrCodeSourceParse), err.Error())
	assert.Contains(t, err.Error(), "第 2 行")
}

func TestLoad_LogsProgress(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	_, _, err := LoadReader(strings.NewReader(moviesCSV), "mem", Options{Log: log})
	require.NoError(t, err)

	var msgs []string
	for _, e := range hook.AllEntries() {
		msgs = append(msgs, e.Message)
	}
	assert.Contains(t, msgs, "After cleaning we have 3 entries")
	assert.Contains(t, msgs, "Finished loading data")
	assert.Contains(t, msgs, "Example entry: Toy Story")
}

func TestDecodeGenres(t *testing.T) {
	g, err := DecodeGenres("[]")
	require.NoError(t, err)
	assert.NotNil(t, g)
	assert.Empty(t, g)

	g, err = DecodeGenres(`  [{'id': 18, 'name': 'Drama'}] `)
	require.NoError(t, err)
	assert.Equal(t, []domain.Genre{{ID: 18, Name: "Drama"}}, g)

	for _, bad := range []string{"", "null", "{'id': 1}", "[{'id': 1", "[] trailing"} {
		_, err := DecodeGenres(bad)
		assert.Error(t, err, "期望 %q 解码失败", bad)
	}
}
