package export

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/John-Robertt/movieset/internal/domain"
	"github.com/John-Robertt/movieset/internal/infra/fsx"
)

var schema = []string{
	`CREATE TABLE movies (
		row_id INTEGER PRIMARY KEY,
		id TEXT NOT NULL,
		original_title TEXT NOT NULL,
		release_date TEXT NOT NULL,
		vote_average REAL,
		years TEXT
	)`,
	`CREATE TABLE movie_genres (
		movie_row INTEGER NOT NULL REFERENCES movies(row_id),
		genre_id INTEGER NOT NULL,
		name TEXT NOT NULL
	)`,
}

var indexes = []string{
	`CREATE INDEX idx_movies_id ON movies(id)`,
	`CREATE INDEX idx_movies_years ON movies(years)`,
	`CREATE INDEX idx_movie_genres_name ON movie_genres(name)`,
	`CREATE INDEX idx_movie_genres_movie_row ON movie_genres(movie_row)`,
}

// SQLite 把表写成一个新的 SQLite 数据库（movies + movie_genres），整体替换 path。
// row_id 从 1 开始，等于记录在表中的顺序。
func SQLite(ctx context.Context, t domain.Table, path string) error {
	err := fsx.BuildAtomic(path, func(tmpPath string) error {
		return writeSQLite(ctx, t, tmpPath)
	})
	return Classify(path, err)
}

func writeSQLite(ctx context.Context, t domain.Table, path string) (err error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return serialization(err)
	}
	defer func() {
		if cerr := db.Close(); cerr != nil && err == nil {
			err = serialization(cerr)
		}
	}()

	for _, q := range schema {
		if _, err := db.ExecContext(ctx, q); err != nil {
			return serialization(errors.Wrap(err, "建表失败"))
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return serialization(err)
	}
	defer func() { _ = tx.Rollback() }()

	movieStmt, err := tx.PrepareContext(ctx, `INSERT INTO movies (row_id, id, original_title, release_date, vote_average, years) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return serialization(err)
	}
	defer movieStmt.Close()
	genreStmt, err := tx.PrepareContext(ctx, `INSERT INTO movie_genres (movie_row, genre_id, name) VALUES (?, ?, ?)`)
	if err != nil {
		return serialization(err)
	}
	defer genreStmt.Close()

	for i := range t {
		m := t[i]
		row := int64(i + 1)
		if _, err := movieStmt.ExecContext(ctx, row, m.ID, m.OriginalTitle, m.ReleaseDate, nullFloat(m.VoteAverage), nullString(m.Years)); err != nil {
			return serialization(errors.Wrapf(err, "写入 movies（id=%s）", m.ID))
		}
		for _, g := range m.Genres {
			if _, err := genreStmt.ExecContext(ctx, row, g.ID, g.Name); err != nil {
				return serialization(errors.Wrapf(err, "写入 movie_genres（id=%s）", m.ID))
			}
		}
	}

	for _, q := range indexes {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			return serialization(errors.Wrap(err, "建索引失败"))
		}
	}
	if err := tx.Commit(); err != nil {
		return serialization(err)
	}
	return nil
}

func serialization(err error) error {
	return &Error{Kind: domain.ErrCodeExportSerialization, Err: err}
}

func nullFloat(v float64) sql.NullFloat64 {
	if p := domain.Finite(v); p != nil {
		return sql.NullFloat64{Float64: *p, Valid: true}
	}
	return sql.NullFloat64{}
}

func nullString(p *string) sql.NullString {
	if p == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *p, Valid: true}
}
