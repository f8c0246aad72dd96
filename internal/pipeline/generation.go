package pipeline

import (
	"context"
	"strings"

	"github.com/NousResearch/nousflash-agents/internal/model"
	"github.com/NousResearch/nousflash-agents/internal/prompts"
)

// generatePost runs the two-stage generation flow: a raw base-model
// completion over the assembled context, a pause, then a chat-model
// formatting pass over the raw output. Either stage failing yields "".
func (p *Pipeline) generatePost(ctx context.Context, shortTerm string, longTerm []model.Memory, recentPosts, externalContext, query string) string {
	prompt := prompts.Tweet(externalContext, shortTerm, longTerm, recentPosts, query)

	raw, err := p.llm.Complete(ctx, prompt)
	if err != nil {
		p.log.WithField("error", err).Warn("base generation failed")
		return ""
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}

	p.sleep(p.cfg.PhaseDelay)

	formatted, err := p.llm.Chat(ctx, prompts.FormatterSystem(prompt), raw)
	if err != nil {
		p.log.WithField("error", err).Warn("formatting pass failed")
		return ""
	}
	return trimQuotes(strings.TrimSpace(formatted))
}

// shortTermMemory summarizes recent activity into a transient working
// memory. Failure degrades to an empty memory.
func (p *Pipeline) shortTermMemory(ctx context.Context, recentPosts string, notifContext []string) string {
	system, user := prompts.ShortTermMemory(recentPosts, notifContext)
	out, err := p.llm.Chat(ctx, system, user)
	if err != nil {
		p.log.WithField("error", err).Warn("short-term memory generation failed")
		return ""
	}
	return strings.TrimSpace(out)
}

func (p *Pipeline) scoreSignificance(ctx context.Context, text string) (float64, error) {
	system, user := prompts.Significance(text)
	return p.score(ctx, system, user)
}

func (p *Pipeline) scoreReplySignificance(ctx context.Context, text string) (float64, error) {
	system, user := prompts.ReplySignificance(text)
	return p.score(ctx, system, user)
}

func (p *Pipeline) score(ctx context.Context, system, user string) (float64, error) {
	out, err := p.llm.Chat(ctx, system, user)
	if err != nil {
		return 0, err
	}
	return parseScore(out)
}

// trimQuotes strips one layer of wrapping quotes the formatter sometimes
// adds around the final tweet.
func trimQuotes(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
