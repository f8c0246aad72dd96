// Package store provides the agent persistence interface and SQLite
// implementation.
package store

import (
	"context"

	"github.com/NousResearch/nousflash-agents/internal/embedding"
	"github.com/NousResearch/nousflash-agents/internal/model"
)

// SavePostParams holds parameters for recording a post the agent made.
type SavePostParams struct {
	Content    string
	Author     string
	Kind       string // model.KindOriginal or model.KindReply
	ExternalID string
}

// Store defines agent persistence. The orchestrator is the sole writer
// within a run; commits happen per logical phase so a crash leaves state the
// next run's dedup rules tolerate.
type Store interface {
	// EnsureAgentIdentity creates the agent's own identity row if missing.
	EnsureAgentIdentity(ctx context.Context, handle, email string) error

	// RecentPosts returns the agent's latest posts, newest first.
	RecentPosts(ctx context.Context, limit int) ([]model.AgentPost, error)

	// SavePost records content the agent successfully published.
	SavePost(ctx context.Context, p SavePostParams) (*model.AgentPost, error)

	// ProcessedTweetIDs returns the full set of already-processed ids.
	ProcessedTweetIDs(ctx context.Context) (map[string]bool, error)

	// MarkProcessed commits every given id in one transaction. Ids already
	// present are ignored; the set only grows.
	MarkProcessed(ctx context.Context, ids []string) error

	// StoreMemory persists a long-term memory record.
	StoreMemory(ctx context.Context, content string, vec embedding.Vector, significance float64) (*model.Memory, error)

	// SimilarMemories returns stored memories ranked by cosine similarity
	// to the query vector, most similar first.
	SimilarMemories(ctx context.Context, query embedding.Vector, limit int) ([]model.Memory, error)

	// Close closes the store.
	Close() error
}
