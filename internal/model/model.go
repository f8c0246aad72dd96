// Package model defines the core agent data types.
package model

import "time"

// Post kinds.
const (
	KindOriginal = "original"
	KindReply    = "reply"
)

// AgentPost is a record of content the agent itself produced. It is created
// only after the external post or reply call succeeded and is immutable
// afterwards.
type AgentPost struct {
	ID         string    `json:"id"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	Kind       string    `json:"kind"`
	ExternalID string    `json:"external_id,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProcessedTweet marks an external post identifier as already considered by
// the pipeline. Append-only; once present the id is never re-evaluated.
type ProcessedTweet struct {
	TweetID   string    `json:"tweet_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Memory is a long-term memory record, retrievable by vector similarity.
type Memory struct {
	ID           string    `json:"id"`
	Content      string    `json:"content"`
	Embedding    []float32 `json:"embedding"`
	Significance float64   `json:"significance"`
	CreatedAt    time.Time `json:"created_at"`
}

// Mention is one fetched notification: the raw content paired with the
// external post identifier it came from. Author may be empty when the
// platform response carried no user expansion.
type Mention struct {
	Content string `json:"content"`
	TweetID string `json:"tweet_id"`
	Author  string `json:"author,omitempty"`
}

// Transfer is one (destination, amount) pair extracted from notification
// context by the wallet decision step.
type Transfer struct {
	Address string  `json:"address"`
	Amount  float64 `json:"amount"`
}

// FollowDecision is one (username, score) pair produced by the follow
// decision step.
type FollowDecision struct {
	Username string  `json:"username"`
	Score    float64 `json:"score"`
}
