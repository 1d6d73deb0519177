package archive

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore {
	return &SQLStore{db: db}
}

func (s *SQLStore) Put(ctx context.Context, c Conversion) error {
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO conversions
		(id,format,filename,blob_key,input_sha256,questions,bytes,created_by,created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		ON CONFLICT (id) DO UPDATE SET format=EXCLUDED.format, filename=EXCLUDED.filename,
		blob_key=EXCLUDED.blob_key, input_sha256=EXCLUDED.input_sha256, questions=EXCLUDED.questions,
		bytes=EXCLUDED.bytes, created_by=EXCLUDED.created_by`,
		c.ID, c.Format, c.Filename, c.BlobKey, c.InputSHA256, c.Questions, c.Bytes, c.CreatedBy, c.CreatedAt)
	return err
}

const selectCols = `id,format,filename,blob_key,input_sha256,questions,bytes,created_by,created_at`

type scanner interface{ Scan(dest ...any) error }

func scanConversion(row scanner) (Conversion, error) {
	var c Conversion
	err := row.Scan(&c.ID, &c.Format, &c.Filename, &c.BlobKey, &c.InputSHA256,
		&c.Questions, &c.Bytes, &c.CreatedBy, &c.CreatedAt)
	return c, err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Conversion, error) {
	c, err := scanConversion(s.db.QueryRowContext(ctx,
		`SELECT `+selectCols+` FROM conversions WHERE id=$1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Conversion{}, ErrNotFound
		}
		return Conversion{}, err
	}
	return c, nil
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Conversion, error) {
	opts = opts.normalized()
	var (
		rows *sql.Rows
		err  error
	)
	if opts.Format == "" {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+selectCols+` FROM conversions ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
			opts.Limit, opts.Offset)
	} else {
		rows, err = s.db.QueryContext(ctx,
			`SELECT `+selectCols+` FROM conversions WHERE format=$1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
			opts.Format, opts.Limit, opts.Offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Conversion{}
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
