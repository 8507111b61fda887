package triage

import "context"

// DocRepository persists knowledge base documents keyed by unique title.
type DocRepository interface {
	Upsert(ctx context.Context, d *Doc) error
	ListAll(ctx context.Context) ([]*Doc, error)
}
