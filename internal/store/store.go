// Package store provides SQLite persistence for gazette posts.
package store

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)
)

// Store handles SQLite persistence. NOT an interface - concrete type.
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Store struct {
	db *sql.DB
	mu sync.RWMutex // Protects all database operations
}

// Post is one stored content record. Body holds markdown; Snippet is the
// plain-text excerpt that feeds the search index.
type Post struct {
	Slug        string
	Title       string
	Body        string
	Snippet     string
	Lang        string
	Tags        []string
	Pinned      bool
	SourceName  string
	PublishedAt time.Time
	FetchedAt   time.Time
}

// Open creates a new Store with the given database path.
// Creates tables if they don't exist.
// Uses WAL mode for better concurrent read performance (file-based DBs only).
func Open(dbPath string) (*Store, error) {
	// Build connection string based on database type
	connStr := dbPath
	if dbPath == ":memory:" {
		// For in-memory databases, use shared cache mode so all connections
		// in the pool see the same database
		connStr = "file::memory:?cache=shared"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// For in-memory databases, limit to 1 connection to avoid issues
	// with multiple connections getting different databases
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Enable WAL mode for file-based databases (not :memory:)
	if dbPath != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &Store{db: db}

	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return s, nil
}

// createTables creates the required tables and indexes if they don't exist.
func (s *Store) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS posts (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT,
		snippet TEXT,
		lang TEXT NOT NULL,
		tags TEXT,
		pinned INTEGER DEFAULT 0,
		source_name TEXT,
		published_at DATETIME NOT NULL,
		fetched_at DATETIME NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_posts_published ON posts(published_at DESC);
	CREATE INDEX IF NOT EXISTS idx_posts_lang ON posts(lang);
	CREATE INDEX IF NOT EXISTS idx_posts_pinned ON posts(pinned);

	CREATE TABLE IF NOT EXISTS sources (
		name TEXT PRIMARY KEY,
		last_fetched_at DATETIME,
		item_count INTEGER DEFAULT 0,
		error_count INTEGER DEFAULT 0,
		last_error TEXT
	);
	`

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
// Thread-safe: acquires write lock to prevent closing during in-flight operations.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SavePosts upserts posts in a single transaction, returning the count of
// newly inserted slugs. Existing slugs are refreshed in place so re-running
// an import never duplicates content.
func (s *Store) SavePosts(posts []Post) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(posts) == 0 {
		return 0, nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	// Rollback is safe to call even after commit - it's a no-op
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO posts (slug, title, body, snippet, lang, tags, pinned, source_name, published_at, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title,
			body = excluded.body,
			snippet = excluded.snippet,
			lang = excluded.lang,
			tags = excluded.tags,
			fetched_at = excluded.fetched_at
	`)
	if err != nil {
		return 0, fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	var before int
	if err := tx.QueryRow("SELECT COUNT(*) FROM posts").Scan(&before); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}

	for _, p := range posts {
		_, err := stmt.Exec(
			p.Slug,
			p.Title,
			p.Body,
			p.Snippet,
			p.Lang,
			joinTags(p.Tags),
			boolToInt(p.Pinned),
			p.SourceName,
			p.PublishedAt,
			p.FetchedAt,
		)
		if err != nil {
			return 0, fmt.Errorf("save post %s: %w", p.Slug, err)
		}
	}

	var after int
	if err := tx.QueryRow("SELECT COUNT(*) FROM posts").Scan(&after); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}

	return after - before, nil
}

// Published retrieves posts in document order: newest first, slug as the
// tiebreak so the order is stable across runs. The pinned post (if any)
// sorts first so exports place it in the highlight slot.
func (s *Store) Published() ([]Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT slug, title, body, snippet, lang, tags, pinned, source_name, published_at, fetched_at
		FROM posts
		ORDER BY pinned DESC, published_at DESC, slug ASC
	`
	return s.queryPosts(query)
}

// BySlug retrieves a single post.
func (s *Store) BySlug(slug string) (Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT slug, title, body, snippet, lang, tags, pinned, source_name, published_at, fetched_at
		FROM posts
		WHERE slug = ?
	`
	posts, err := s.queryPosts(query, slug)
	if err != nil {
		return Post{}, err
	}
	if len(posts) == 0 {
		return Post{}, fmt.Errorf("post not found: %s", slug)
	}
	return posts[0], nil
}

// SetPinned pins one post, clearing any previous pin in the same
// transaction so at most one post is ever pinned.
func (s *Store) SetPinned(slug string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("UPDATE posts SET pinned = 0 WHERE pinned = 1"); err != nil {
		return fmt.Errorf("clear pin: %w", err)
	}
	result, err := tx.Exec("UPDATE posts SET pinned = 1 WHERE slug = ?", slug)
	if err != nil {
		return fmt.Errorf("set pin: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("post not found: %s", slug)
	}

	return tx.Commit()
}

// ClearPinned removes the pin, if any.
func (s *Store) ClearPinned() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE posts SET pinned = 0 WHERE pinned = 1")
	return err
}

// Tags returns the tag taxonomy: each distinct tag with its post count,
// sorted by count descending then name.
func (s *Store) Tags() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT tags FROM posts")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var raw sql.NullString
		if err := rows.Scan(&raw); err != nil {
			return nil, err
		}
		for _, tag := range splitTags(raw.String) {
			counts[tag]++
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

// Count returns total post count.
func (s *Store) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM posts").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return count, nil
}

// UpdateSourceStatus updates the last fetch time for a source.
func (s *Store) UpdateSourceStatus(name string, itemCount int, lastError string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO sources (name, last_fetched_at, item_count, last_error, error_count)
		VALUES (?, ?, ?, ?, CASE WHEN ? != '' THEN 1 ELSE 0 END)
		ON CONFLICT(name) DO UPDATE SET
			last_fetched_at = excluded.last_fetched_at,
			item_count = excluded.item_count,
			last_error = excluded.last_error,
			error_count = CASE WHEN excluded.last_error != '' THEN error_count + 1 ELSE 0 END
	`, name, time.Now(), itemCount, lastError, lastError)
	if err != nil {
		return fmt.Errorf("update source status: %w", err)
	}
	return nil
}

// SourceStatus gets the last fetch time for a source.
func (s *Store) SourceStatus(name string) (time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var lastFetched sql.NullTime
	err := s.db.QueryRow("SELECT last_fetched_at FROM sources WHERE name = ?", name).Scan(&lastFetched)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get source status: %w", err)
	}
	return lastFetched.Time, nil
}

// queryPosts is a helper that executes a query and scans results into Posts.
// Caller must hold s.mu (read lock is sufficient).
func (s *Store) queryPosts(query string, args ...any) ([]Post, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []Post
	for rows.Next() {
		var p Post
		var tags, body, snippet, sourceName sql.NullString
		var pinnedInt int
		err := rows.Scan(
			&p.Slug,
			&p.Title,
			&body,
			&snippet,
			&p.Lang,
			&tags,
			&pinnedInt,
			&sourceName,
			&p.PublishedAt,
			&p.FetchedAt,
		)
		if err != nil {
			return nil, err
		}
		p.Body = body.String
		p.Snippet = snippet.String
		p.SourceName = sourceName.String
		p.Tags = splitTags(tags.String)
		p.Pinned = pinnedInt != 0
		posts = append(posts, p)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return posts, nil
}

// joinTags flattens a tag set for storage as a space-joined column, which
// is also the shape the exporter writes into data-tags.
func joinTags(tags []string) string {
	return strings.Join(tags, " ")
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Fields(raw)
}

// boolToInt converts a bool to an int for SQLite storage.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
