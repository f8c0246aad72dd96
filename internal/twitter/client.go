// Package twitter is the social platform client. The pipeline treats it as
// an opaque capability: fetch notifications, post, reply, follow.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NousResearch/nousflash-agents/internal/model"
)

// Client is the platform capability the pipeline depends on.
type Client interface {
	// Notifications fetches recent mentions of the agent's account.
	Notifications(ctx context.Context) ([]model.Mention, error)

	// Post publishes an original post and returns its external id.
	Post(ctx context.Context, text string) (string, error)

	// Reply publishes a reply to the given external post id.
	Reply(ctx context.Context, text, inReplyTo string) (string, error)

	// Follow follows the named user.
	Follow(ctx context.Context, username string) error
}

// HTTPClient talks to the platform's HTTP API. Posting tries the primary v2
// endpoint first and falls back to the legacy endpoint when the primary
// fails or returns no id.
type HTTPClient struct {
	baseURL     string
	fallbackURL string
	bearer      string
	client      *http.Client
}

// NewHTTPClient creates a platform client.
func NewHTTPClient(baseURL, fallbackURL, bearer string) *HTTPClient {
	return &HTTPClient{
		baseURL:     strings.TrimRight(baseURL, "/"),
		fallbackURL: strings.TrimRight(fallbackURL, "/"),
		bearer:      bearer,
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type mentionsResponse struct {
	Data []struct {
		ID       string `json:"id"`
		Text     string `json:"text"`
		AuthorID string `json:"author_id"`
	} `json:"data"`
	Includes struct {
		Users []struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"users"`
	} `json:"includes"`
}

func (c *HTTPClient) Notifications(ctx context.Context) ([]model.Mention, error) {
	var resp mentionsResponse
	if err := c.do(ctx, http.MethodGet,
		c.baseURL+"/users/me/mentions?expansions=author_id", nil, &resp); err != nil {
		return nil, fmt.Errorf("fetch mentions: %w", err)
	}

	usernames := make(map[string]string, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		usernames[u.ID] = u.Username
	}

	mentions := make([]model.Mention, 0, len(resp.Data))
	for _, d := range resp.Data {
		mentions = append(mentions, model.Mention{
			Content: d.Text,
			TweetID: d.ID,
			Author:  usernames[d.AuthorID],
		})
	}
	return mentions, nil
}

type tweetRequest struct {
	Text  string `json:"text"`
	Reply *struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	} `json:"reply,omitempty"`
}

type tweetResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

func (c *HTTPClient) Post(ctx context.Context, text string) (string, error) {
	id, err := c.createTweet(ctx, tweetRequest{Text: text})
	if err == nil && id != "" {
		return id, nil
	}

	// Fallback path: legacy status update.
	form := url.Values{"status": {text}}
	var legacy struct {
		IDStr string `json:"id_str"`
	}
	if ferr := c.do(ctx, http.MethodPost,
		c.fallbackURL+"/statuses/update.json?"+form.Encode(), nil, &legacy); ferr != nil {
		if err != nil {
			return "", fmt.Errorf("post failed on both paths: %w", err)
		}
		return "", fmt.Errorf("post fallback: %w", ferr)
	}
	if legacy.IDStr == "" {
		return "", fmt.Errorf("post fallback returned no id")
	}
	return legacy.IDStr, nil
}

func (c *HTTPClient) Reply(ctx context.Context, text, inReplyTo string) (string, error) {
	req := tweetRequest{Text: text}
	req.Reply = &struct {
		InReplyToTweetID string `json:"in_reply_to_tweet_id"`
	}{InReplyToTweetID: inReplyTo}
	return c.createTweet(ctx, req)
}

func (c *HTTPClient) createTweet(ctx context.Context, req tweetRequest) (string, error) {
	var resp tweetResponse
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/tweets", req, &resp); err != nil {
		return "", fmt.Errorf("create tweet: %w", err)
	}
	if resp.Data.ID == "" {
		return "", fmt.Errorf("create tweet returned no id")
	}
	return resp.Data.ID, nil
}

func (c *HTTPClient) Follow(ctx context.Context, username string) error {
	// Resolve the username to a user id first; v2 follows by id.
	var user struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := c.do(ctx, http.MethodGet, c.baseURL+"/users/by/username/"+url.PathEscape(username), nil, &user); err != nil {
		return fmt.Errorf("resolve user %s: %w", username, err)
	}
	if user.Data.ID == "" {
		return fmt.Errorf("user %s not found", username)
	}

	body := map[string]string{"target_user_id": user.Data.ID}
	if err := c.do(ctx, http.MethodPost, c.baseURL+"/users/me/following", body, nil); err != nil {
		return fmt.Errorf("follow %s: %w", username, err)
	}
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, rawURL string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("unexpected status %s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
