package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"ytcs/internal/config"
)

// Entry is one processed video.
type Entry struct {
	ID              int64
	VideoID         string
	URL             string
	Title           string
	Artist          string
	Album           string
	OutputDir       string
	ChapterSource   string
	TrackCount      int
	Refined         bool
	MovedBoundaries int
	RequestID       string
	ProcessedAt     time.Time
}

// timeLayout is fixed-width so processed_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Store persists processed-video history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open initializes or connects to the history database configured in cfg.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil {
		return nil, errors.New("history: config required")
	}
	return OpenPath(cfg.History.Path)
}

// OpenPath opens the database at path, creating the schema on first use.
func OpenPath(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("history: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts an entry. A zero ProcessedAt is stamped with the current time.
func (s *Store) Record(ctx context.Context, e Entry) (Entry, error) {
	if strings.TrimSpace(e.VideoID) == "" {
		return Entry{}, errors.New("history: video id required")
	}
	if e.ProcessedAt.IsZero() {
		e.ProcessedAt = time.Now()
	}
	e.ProcessedAt = e.ProcessedAt.UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO processed_videos (
            video_id, url, title, artist, album, output_dir, chapter_source,
            track_count, refined, moved_boundaries, request_id, processed_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.VideoID,
		e.URL,
		e.Title,
		e.Artist,
		e.Album,
		e.OutputDir,
		e.ChapterSource,
		e.TrackCount,
		boolToInt(e.Refined),
		e.MovedBoundaries,
		nullableString(e.RequestID),
		e.ProcessedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	return e, nil
}

const selectColumns = `id, video_id, url, title, artist, album, output_dir, chapter_source,
    track_count, refined, moved_boundaries, request_id, processed_at`

// List returns up to limit entries, newest first. A limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := "SELECT " + selectColumns + " FROM processed_videos ORDER BY processed_at DESC, id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Lookup returns the most recent entry for videoID, or nil when none exists.
func (s *Store) Lookup(ctx context.Context, videoID string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT "+selectColumns+" FROM processed_videos WHERE video_id = ? ORDER BY processed_at DESC, id DESC LIMIT 1",
		videoID,
	)
	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Clear deletes every entry and returns the number removed.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM processed_videos")
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(row scanner) (Entry, error) {
	var (
		e         Entry
		refined   int
		requestID sql.NullString
		processed string
	)
	err := row.Scan(
		&e.ID,
		&e.VideoID,
		&e.URL,
		&e.Title,
		&e.Artist,
		&e.Album,
		&e.OutputDir,
		&e.ChapterSource,
		&e.TrackCount,
		&refined,
		&e.MovedBoundaries,
		&requestID,
		&processed,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan history entry: %w", err)
	}
	e.Refined = refined != 0
	e.RequestID = requestID.String
	if ts, parseErr := time.Parse(timeLayout, processed); parseErr == nil {
		e.ProcessedAt = ts
	}
	return e, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
