package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string `json:"db_path"`
	DBSizeBytes     int64  `json:"db_size_bytes"`
	TotalPosts      int    `json:"total_posts"`
	Replies         int    `json:"replies"`
	ProcessedTweets int    `json:"processed_tweets"`
	Memories        int    `json:"memories"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agent_posts`).Scan(&st.TotalPosts)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM agent_posts WHERE kind = 'reply'`).Scan(&st.Replies)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM processed_tweets`).Scan(&st.ProcessedTweets)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&st.Memories)

	return st, nil
}
