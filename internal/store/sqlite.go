package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/NousResearch/nousflash-agents/internal/embedding"
	"github.com/NousResearch/nousflash-agents/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS agents (
		handle     TEXT PRIMARY KEY,
		email      TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS agent_posts (
		id          TEXT PRIMARY KEY,
		content     TEXT NOT NULL,
		author      TEXT NOT NULL REFERENCES agents(handle),
		kind        TEXT NOT NULL,
		external_id TEXT,
		created_at  TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_agent_posts_created ON agent_posts(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_agent_posts_kind ON agent_posts(kind);

	CREATE TABLE IF NOT EXISTS processed_tweets (
		tweet_id   TEXT PRIMARY KEY,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS memories (
		id           TEXT PRIMARY KEY,
		content      TEXT NOT NULL,
		embedding    TEXT NOT NULL,
		significance REAL NOT NULL,
		created_at   TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) EnsureAgentIdentity(ctx context.Context, handle, email string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO agents (handle, email, created_at) VALUES (?, ?, ?)`,
		handle, email, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("ensure agent identity: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RecentPosts(ctx context.Context, limit int) ([]model.AgentPost, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, author, kind, external_id, created_at
		 FROM agent_posts ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var posts []model.AgentPost
	for rows.Next() {
		var p model.AgentPost
		var externalID sql.NullString
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Content, &p.Author, &p.Kind, &externalID, &createdAt); err != nil {
			return nil, err
		}
		if externalID.Valid {
			p.ExternalID = externalID.String
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

func (s *SQLiteStore) SavePost(ctx context.Context, p SavePostParams) (*model.AgentPost, error) {
	now := time.Now().UTC()
	post := &model.AgentPost{
		ID:         s.newID(),
		Content:    p.Content,
		Author:     p.Author,
		Kind:       p.Kind,
		ExternalID: p.ExternalID,
		CreatedAt:  now,
	}

	var externalID *string
	if p.ExternalID != "" {
		externalID = &p.ExternalID
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO agent_posts (id, content, author, kind, external_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.ID, post.Content, post.Author, post.Kind, externalID, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert post: %w", err)
	}
	return post, nil
}

func (s *SQLiteStore) ProcessedTweetIDs(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT tweet_id FROM processed_tweets`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}

func (s *SQLiteStore) MarkProcessed(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	now := time.Now().UTC().Format(time.RFC3339)
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO processed_tweets (tweet_id, created_at) VALUES (?, ?)`,
			id, now); err != nil {
			return fmt.Errorf("mark processed %s: %w", id, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) StoreMemory(ctx context.Context, content string, vec embedding.Vector, significance float64) (*model.Memory, error) {
	now := time.Now().UTC()
	vecJSON, err := json.Marshal(vec)
	if err != nil {
		return nil, fmt.Errorf("encode embedding: %w", err)
	}

	mem := &model.Memory{
		ID:           s.newID(),
		Content:      content,
		Embedding:    vec,
		Significance: significance,
		CreatedAt:    now,
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO memories (id, content, embedding, significance, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		mem.ID, content, string(vecJSON), significance, now.Format(time.RFC3339))
	if err != nil {
		return nil, fmt.Errorf("insert memory: %w", err)
	}
	return mem, nil
}

func (s *SQLiteStore) SimilarMemories(ctx context.Context, query embedding.Vector, limit int) ([]model.Memory, error) {
	if limit <= 0 {
		limit = 5
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, content, embedding, significance, created_at FROM memories`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		memory model.Memory
		score  float64
	}
	var candidates []scored

	for rows.Next() {
		var m model.Memory
		var vecJSON, createdAt string
		if err := rows.Scan(&m.ID, &m.Content, &vecJSON, &m.Significance, &createdAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(vecJSON), &m.Embedding); err != nil {
			return nil, fmt.Errorf("decode embedding %s: %w", m.ID, err)
		}
		m.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		candidates = append(candidates, scored{
			memory: m,
			score:  embedding.CosineSimilarity(query, m.Embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	memories := make([]model.Memory, 0, len(candidates))
	for _, c := range candidates {
		memories = append(memories, c.memory)
	}
	return memories, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
