package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/NousResearch/nousflash-agents/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestEnsureAgentIdentity_Idempotent(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.EnsureAgentIdentity(ctx, "bot", "bot@example.com"); err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	if err := s.EnsureAgentIdentity(ctx, "bot", "bot@example.com"); err != nil {
		t.Fatalf("second ensure: %v", err)
	}
}

func TestSavePostAndRecentPosts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.EnsureAgentIdentity(ctx, "bot", "")

	post, err := s.SavePost(ctx, SavePostParams{
		Content: "hello world", Author: "bot", Kind: model.KindOriginal, ExternalID: "ext-1",
	})
	if err != nil {
		t.Fatalf("save post: %v", err)
	}
	if post.ID == "" {
		t.Error("expected non-empty ID")
	}
	if post.ExternalID != "ext-1" {
		t.Errorf("expected external id ext-1, got %q", post.ExternalID)
	}

	reply, err := s.SavePost(ctx, SavePostParams{
		Content: "a reply", Author: "bot", Kind: model.KindReply, ExternalID: "ext-2",
	})
	if err != nil {
		t.Fatalf("save reply: %v", err)
	}
	if reply.Kind != model.KindReply {
		t.Errorf("expected kind reply, got %q", reply.Kind)
	}

	posts, err := s.RecentPosts(ctx, 10)
	if err != nil {
		t.Fatalf("recent posts: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("expected 2 posts, got %d", len(posts))
	}
}

func TestRecentPosts_Limit(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.EnsureAgentIdentity(ctx, "bot", "")

	for i := 0; i < 5; i++ {
		if _, err := s.SavePost(ctx, SavePostParams{Content: "p", Author: "bot", Kind: model.KindOriginal}); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	posts, err := s.RecentPosts(ctx, 3)
	if err != nil {
		t.Fatalf("recent posts: %v", err)
	}
	if len(posts) != 3 {
		t.Errorf("expected 3 posts, got %d", len(posts))
	}
}

func TestSavePost_NullExternalID(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	s.EnsureAgentIdentity(ctx, "bot", "")

	if _, err := s.SavePost(ctx, SavePostParams{Content: "p", Author: "bot", Kind: model.KindOriginal}); err != nil {
		t.Fatalf("save: %v", err)
	}
	posts, err := s.RecentPosts(ctx, 1)
	if err != nil {
		t.Fatalf("recent posts: %v", err)
	}
	if posts[0].ExternalID != "" {
		t.Errorf("expected empty external id, got %q", posts[0].ExternalID)
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	path := filepath.Join(dir, "stats.db")
	s, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	defer s.Close()

	s.EnsureAgentIdentity(ctx, "bot", "")
	s.SavePost(ctx, SavePostParams{Content: "p", Author: "bot", Kind: model.KindOriginal})
	s.SavePost(ctx, SavePostParams{Content: "r", Author: "bot", Kind: model.KindReply})
	s.MarkProcessed(ctx, []string{"t1", "t2"})

	st, err := s.Stats(ctx, path)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalPosts != 2 || st.Replies != 1 || st.ProcessedTweets != 2 {
		t.Errorf("unexpected stats: %+v", st)
	}
}
