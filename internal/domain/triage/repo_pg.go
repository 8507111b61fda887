package triage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/medkit/medkit/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

func conn(ctx context.Context, pool *pgxpool.Pool) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return pool
}

type docRepoPG struct{ pool *pgxpool.Pool }

func NewDocRepoPG(pool *pgxpool.Pool) DocRepository { return &docRepoPG{pool: pool} }

func (r *docRepoPG) Upsert(ctx context.Context, d *Doc) error {
	return conn(ctx, r.pool).QueryRow(ctx, `
		INSERT INTO kb_docs (title, url, snippet, tags)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (title) DO UPDATE SET
			url = EXCLUDED.url,
			snippet = EXCLUDED.snippet,
			tags = EXCLUDED.tags
		RETURNING id`,
		d.Title, d.URL, d.Snippet, d.Tags,
	).Scan(&d.ID)
}

func (r *docRepoPG) ListAll(ctx context.Context) ([]*Doc, error) {
	rows, err := conn(ctx, r.pool).Query(ctx,
		`SELECT id, title, url, snippet, tags, created_at FROM kb_docs ORDER BY title`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var docs []*Doc
	for rows.Next() {
		var d Doc
		if err := rows.Scan(&d.ID, &d.Title, &d.URL, &d.Snippet, &d.Tags, &d.CreatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, &d)
	}
	return docs, rows.Err()
}
