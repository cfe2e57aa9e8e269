package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"modernc.org/sqlite"

	"github.com/mfenderov/pdfvault/internal/apperr"
	"github.com/mfenderov/pdfvault/internal/store"
	"github.com/mfenderov/pdfvault/pkg/models"
)

// Dialect selects the SQL flavour.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Config holds database configuration.
type Config struct {
	Dialect         Dialect
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// Store is a store.Store over database/sql.
type Store struct {
	db      *sql.DB
	pool    *pgxpool.Pool // nil for SQLite
	dialect Dialect
	now     func() time.Time
}

var _ store.Store = (*Store)(nil)

// foldFunc is registered with the SQLite driver because its built-in LOWER only folds ASCII.
const foldFunc = "pdfvault_lower"

func init() {
	sqlite.MustRegisterDeterministicScalarFunction(foldFunc, 1, foldLower)
}

func foldLower(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

// Times are stored as int64 nanoseconds since the epoch.
var (
	minStoredTime = time.Unix(0, math.MinInt64).UTC()
	maxStoredTime = time.Unix(0, math.MaxInt64).UTC()
)

// unixNanos clamps t into the stored range so far-off filter bounds stay ordered.
func unixNanos(t time.Time) int64 {
	switch {
	case t.Before(minStoredTime):
		return math.MinInt64
	case t.After(maxStoredTime):
		return math.MaxInt64
	}
	return t.UnixNano()
}

const schema = `
CREATE TABLE IF NOT EXISTS documents (
	id                  TEXT PRIMARY KEY,
	filename            TEXT NOT NULL,
	title               TEXT,
	author              TEXT,
	pdf_created_at      BIGINT,
	page_count          INTEGER NOT NULL DEFAULT 0,
	word_count          INTEGER NOT NULL DEFAULT 0,
	char_count          INTEGER NOT NULL DEFAULT 0,
	file_size           BIGINT NOT NULL DEFAULT 0,
	extracted_text      TEXT NOT NULL DEFAULT '',
	emails_found        TEXT NOT NULL DEFAULT '[]',
	phone_numbers_found TEXT NOT NULL DEFAULT '[]',
	urls_found          TEXT NOT NULL DEFAULT '[]',
	dates_found         TEXT NOT NULL DEFAULT '[]',
	pii_found           BOOLEAN NOT NULL DEFAULT FALSE,
	created_at          BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at DESC, id DESC);
`

const columns = `id, filename, title, author, pdf_created_at, page_count, word_count, char_count,
	file_size, extracted_text, emails_found, phone_numbers_found, urls_found, dates_found,
	pii_found, created_at`

// Open connects to the database and creates the schema if needed.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	s := &Store{dialect: cfg.Dialect, now: func() time.Time { return time.Now().UTC() }}

	switch cfg.Dialect {
	case SQLite, "":
		s.dialect = SQLite
		db, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to open sqlite: %w", err)
		}
		// SQLite allows a single writer at a time.
		db.SetMaxOpenConns(1)
		s.db = db
	case Postgres:
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("failed to parse postgres dsn: %w", err)
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "pdfvault"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to postgres: %w", err)
		}
		s.pool = pool
		s.db = stdlib.OpenDBFromPool(pool)
	default:
		return nil, fmt.Errorf("unsupported dialect %q", cfg.Dialect)
	}

	if err := s.migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	slog.Debug("sql store ready", "dialect", s.dialect)
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range strings.Split(schema, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close releases the connection pool.
func (s *Store) Close() error {
	err := s.db.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Create inserts doc with a fresh ID and creation time and returns the stored record.
func (s *Store) Create(ctx context.Context, doc models.Document) (models.Document, error) {
	doc.ID = store.NewID()
	doc.CreatedAt = s.now()
	doc.Normalize()

	emails, phones, urls, dates, err := encodeSets(doc)
	if err != nil {
		return models.Document{}, err
	}

	var pdfCreated any
	if ts := doc.PDFCreatedAt; ts != nil {
		if ts.Before(minStoredTime) || ts.After(maxStoredTime) {
			return models.Document{}, apperr.Invalid("pdf_created_at",
				fmt.Sprintf("must be between %d and %d", minStoredTime.Year(), maxStoredTime.Year()))
		}
		pdfCreated = ts.UnixNano()
	}

	query := s.rebind(`INSERT INTO documents (` + columns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err = s.db.ExecContext(ctx, query,
		doc.ID, doc.Filename, nullString(doc.Title), nullString(doc.Author), pdfCreated,
		doc.PageCount, doc.WordCount, doc.CharCount, doc.FileSize, doc.ExtractedText,
		emails, phones, urls, dates, doc.PIIFound, unixNanos(doc.CreatedAt),
	)
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to insert document: %w", err)
	}
	return doc, nil
}

// Get returns the document with the given id.
func (s *Store) Get(ctx context.Context, id string) (models.Document, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+columns+` FROM documents WHERE id = ?`), id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Document{}, apperr.NotFound(id)
	}
	if err != nil {
		return models.Document{}, fmt.Errorf("failed to get document: %w", err)
	}
	return doc, nil
}

// Delete removes the document with the given id.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM documents WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if n == 0 {
		return apperr.NotFound(id)
	}
	return nil
}

// Query returns one page of matching documents and the total match count.
func (s *Store) Query(ctx context.Context, q store.Query) ([]models.Document, int, error) {
	where, args := buildWhere(q, s.fold())

	var total int
	countSQL := s.rebind(`SELECT COUNT(*) FROM documents` + where)
	if err := s.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count documents: %w", err)
	}

	pageSQL := s.rebind(`SELECT ` + columns + ` FROM documents` + where +
		` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`)
	docs, err := s.queryDocuments(ctx, pageSQL, append(args, q.Limit, q.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	return docs, total, nil
}

// ListAll returns every stored document.
func (s *Store) ListAll(ctx context.Context) ([]models.Document, error) {
	return s.queryDocuments(ctx, `SELECT `+columns+` FROM documents ORDER BY created_at DESC, id DESC`)
}

func (s *Store) queryDocuments(ctx context.Context, query string, args ...any) ([]models.Document, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer rows.Close()

	docs := []models.Document{}
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}
	return docs, nil
}

// fold returns the SQL function that lowercases text for substring matching.
// Column and pattern both go through it so the two sides fold identically.
func (s *Store) fold() string {
	if s.dialect == Postgres {
		return "LOWER"
	}
	return foldFunc
}

func buildWhere(q store.Query, fold string) (string, []any) {
	var conds []string
	var args []any

	f := q.Filter
	if f.PIIFound != nil {
		conds = append(conds, "pii_found = ?")
		args = append(args, *f.PIIFound)
	}
	if f.CreatedFrom != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, unixNanos(*f.CreatedFrom))
	}
	if f.CreatedTo != nil {
		conds = append(conds, "created_at <= ?")
		args = append(args, unixNanos(*f.CreatedTo))
	}
	match := func(column string) string {
		return fold + "(" + column + ") LIKE " + fold + `(?) ESCAPE '\'`
	}
	if f.Author != "" {
		conds = append(conds, match("COALESCE(author, '')"))
		args = append(args, likePattern(f.Author))
	}
	if q.Text != "" {
		pattern := likePattern(q.Text)
		conds = append(conds, "("+match("extracted_text")+
			" OR "+match("filename")+
			" OR "+match("COALESCE(title, '')")+
			" OR "+match("COALESCE(author, '')")+")")
		args = append(args, pattern, pattern, pattern, pattern)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// likePattern turns s into a substring pattern with LIKE wildcards escaped.
// Case folding happens in SQL.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(s) + "%"
}

// rebind rewrites ? placeholders as $n for Postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != Postgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (models.Document, error) {
	var (
		doc                         models.Document
		title, author               sql.NullString
		pdfCreated                  sql.NullInt64
		emails, phones, urls, dates string
		createdAt                   int64
	)
	err := row.Scan(
		&doc.ID, &doc.Filename, &title, &author, &pdfCreated,
		&doc.PageCount, &doc.WordCount, &doc.CharCount, &doc.FileSize, &doc.ExtractedText,
		&emails, &phones, &urls, &dates, &doc.PIIFound, &createdAt,
	)
	if err != nil {
		return models.Document{}, err
	}

	if title.Valid {
		doc.Title = &title.String
	}
	if author.Valid {
		doc.Author = &author.String
	}
	if pdfCreated.Valid {
		ts := time.Unix(0, pdfCreated.Int64).UTC()
		doc.PDFCreatedAt = &ts
	}
	doc.CreatedAt = time.Unix(0, createdAt).UTC()

	for _, f := range []struct {
		raw string
		dst *[]string
	}{
		{emails, &doc.Emails},
		{phones, &doc.PhoneNumbers},
		{urls, &doc.URLs},
		{dates, &doc.Dates},
	} {
		if err := json.Unmarshal([]byte(f.raw), f.dst); err != nil {
			return models.Document{}, fmt.Errorf("corrupt entity column: %w", err)
		}
	}
	doc.Normalize()
	return doc, nil
}

func encodeSets(doc models.Document) (emails, phones, urls, dates string, err error) {
	out := make([]string, 4)
	for i, set := range [][]string{doc.Emails, doc.PhoneNumbers, doc.URLs, doc.Dates} {
		b, err := json.Marshal(set)
		if err != nil {
			return "", "", "", "", fmt.Errorf("failed to encode entity set: %w", err)
		}
		out[i] = string(b)
	}
	return out[0], out[1], out[2], out[3], nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
