package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/fwojciec/webindex"
)

// Compile-time interface verification.
var _ webindex.IndexStore = (*IndexStore)(nil)

// IndexStore implements webindex.IndexStore using SQLite. Documents are
// keyed by ID, so upserting the same URL twice keeps a single row.
type IndexStore struct {
	db *DB
}

// NewIndexStore creates a new IndexStore.
func NewIndexStore(db *DB) *IndexStore {
	return &IndexStore{db: db}
}

// Upsert inserts or replaces one batch of documents atomically.
func (s *IndexStore) Upsert(ctx context.Context, docs []webindex.IndexDocument) error {
	if len(docs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, doc := range docs {
		metaTags, err := json.Marshal(doc.MetaTags)
		if err != nil {
			return webindex.Errorf(webindex.EINTERNAL, "encoding meta tags for %s: %v", doc.URL, err)
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (id, url, title, content, content_markdown, source, meta_tags, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				url = excluded.url,
				title = excluded.title,
				content = excluded.content,
				content_markdown = excluded.content_markdown,
				source = excluded.source,
				meta_tags = excluded.meta_tags,
				fetched_at = excluded.fetched_at
		`, doc.ID, doc.URL, doc.Title, doc.Content, doc.ContentMarkdown, doc.Source,
			string(metaTags), doc.FetchedAt.UTC().Format(time.RFC3339)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// FindDocumentByID retrieves a single indexed document.
func (s *IndexStore) FindDocumentByID(ctx context.Context, id string) (*webindex.IndexDocument, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, url, title, content, content_markdown, source, meta_tags, fetched_at
		FROM documents
		WHERE id = ?
	`, id)

	doc, err := scanDocument(row.Scan)
	if err == sql.ErrNoRows {
		return nil, webindex.Errorf(webindex.ENOTFOUND, "document not found")
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// DocumentFilter restricts FindDocuments results.
type DocumentFilter struct {
	Source *string
	URL    *string

	Limit  int
	Offset int
}

// FindDocuments retrieves indexed documents matching the filter, newest
// fetch first.
func (s *IndexStore) FindDocuments(ctx context.Context, filter DocumentFilter) ([]*webindex.IndexDocument, error) {
	var query strings.Builder
	var args []any

	query.WriteString("SELECT id, url, title, content, content_markdown, source, meta_tags, fetched_at FROM documents WHERE 1=1")

	if filter.Source != nil {
		query.WriteString(" AND source = ?")
		args = append(args, *filter.Source)
	}
	if filter.URL != nil {
		query.WriteString(" AND url = ?")
		args = append(args, *filter.URL)
	}

	query.WriteString(" ORDER BY fetched_at DESC")
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*webindex.IndexDocument
	for rows.Next() {
		doc, err := scanDocument(rows.Scan)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// DeleteDocumentsBySource removes all documents for a source label and
// returns how many were deleted.
func (s *IndexStore) DeleteDocumentsBySource(ctx context.Context, source string) (int, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM documents WHERE source = ?", source)
	if err != nil {
		return 0, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	return int(rows), nil
}

// CountDocuments returns the number of documents for a source label.
// An empty source counts all documents.
func (s *IndexStore) CountDocuments(ctx context.Context, source string) (int, error) {
	var query string
	var args []any
	if source == "" {
		query = "SELECT COUNT(*) FROM documents"
	} else {
		query = "SELECT COUNT(*) FROM documents WHERE source = ?"
		args = append(args, source)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// scanDocument scans one documents row via the given Scan function.
func scanDocument(scan func(dest ...any) error) (*webindex.IndexDocument, error) {
	var doc webindex.IndexDocument
	var metaTags, fetchedAt string

	if err := scan(&doc.ID, &doc.URL, &doc.Title, &doc.Content, &doc.ContentMarkdown,
		&doc.Source, &metaTags, &fetchedAt); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(metaTags), &doc.MetaTags); err != nil {
		return nil, webindex.Errorf(webindex.EINTERNAL, "decoding meta tags for %s: %v", doc.URL, err)
	}

	var err error
	doc.FetchedAt, err = time.Parse(time.RFC3339, fetchedAt)
	if err != nil {
		return nil, webindex.Errorf(webindex.EINTERNAL, "decoding fetched_at for %s: %v", doc.URL, err)
	}

	return &doc, nil
}
