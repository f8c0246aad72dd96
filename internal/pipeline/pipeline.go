// Package pipeline implements the agent's decision and orchestration core:
// one pass over fresh notifications through the reply, wallet, follow, and
// posting gates, with memory updates in between.
package pipeline

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"github.com/NousResearch/nousflash-agents/internal/config"
	"github.com/NousResearch/nousflash-agents/internal/embedding"
	"github.com/NousResearch/nousflash-agents/internal/logging"
	"github.com/NousResearch/nousflash-agents/internal/model"
	"github.com/NousResearch/nousflash-agents/internal/prompts"
	"github.com/NousResearch/nousflash-agents/internal/spam"
	"github.com/NousResearch/nousflash-agents/internal/store"
	"github.com/NousResearch/nousflash-agents/internal/twitter"
	"github.com/NousResearch/nousflash-agents/internal/wallet"
)

// LLM is the text-generation capability the pipeline depends on.
type LLM interface {
	Complete(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, system, user string) (string, error)
}

// Deps bundles the pipeline's collaborators. Embedder and Wallet may be nil,
// which disables long-term memory retrieval and the wallet flow
// respectively. Rand and Sleep default to real sources; tests inject
// deterministic ones.
type Deps struct {
	Store    store.Store
	LLM      LLM
	Embedder embedding.Embedder
	Platform twitter.Client
	Wallet   wallet.Wallet
	Rand     *rand.Rand
	Sleep    func(time.Duration)
	Logger   logging.Logger
}

// Pipeline is the orchestrator. A single Run executes one full pass;
// everything inside is sequential.
type Pipeline struct {
	cfg      config.Config
	store    store.Store
	llm      LLM
	embedder embedding.Embedder
	platform twitter.Client
	wallet   wallet.Wallet
	rng      *rand.Rand
	sleep    func(time.Duration)
	log      logging.Logger
}

// New creates a pipeline.
func New(cfg config.Config, deps Deps) *Pipeline {
	if deps.Rand == nil {
		deps.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if deps.Sleep == nil {
		deps.Sleep = time.Sleep
	}
	if deps.Logger == nil {
		deps.Logger = logging.New()
	}
	return &Pipeline{
		cfg:      cfg,
		store:    deps.Store,
		llm:      deps.LLM,
		embedder: deps.Embedder,
		platform: deps.Platform,
		wallet:   deps.Wallet,
		rng:      deps.Rand,
		sleep:    deps.Sleep,
		log:      deps.Logger,
	}
}

// Run executes one pipeline pass. External capability failures degrade to
// skipped steps; only persistence errors abort the run.
func (p *Pipeline) Run(ctx context.Context) error {
	if err := p.store.EnsureAgentIdentity(ctx, p.cfg.AgentHandle, p.cfg.AgentEmail); err != nil {
		return err
	}

	recent, err := p.store.RecentPosts(ctx, 10)
	if err != nil {
		return err
	}
	formatted := prompts.FormatPostList(recent)

	mentions, err := p.platform.Notifications(ctx)
	if err != nil {
		p.log.WithField("error", err).Warn("failed to fetch notifications")
		mentions = nil
	}

	fresh, err := p.dedup(ctx, mentions)
	if err != nil {
		return err
	}
	p.log.WithFields(logging.Fields{
		"fetched": len(mentions),
		"fresh":   len(fresh),
	}).Info("notifications deduplicated")

	notifContext := make([]string, 0, len(fresh))
	for _, m := range fresh {
		notifContext = append(notifContext, m.Content)
	}

	if len(fresh) > 0 {
		if err := p.handleReplies(ctx, fresh); err != nil {
			return err
		}
		p.sleep(p.cfg.PhaseDelay)

		p.handleWallet(ctx, notifContext)
		p.sleep(p.cfg.PhaseDelay)

		p.handleFollows(ctx, notifContext)
		p.sleep(p.cfg.PhaseDelay)
	}

	shortTerm := p.shortTermMemory(ctx, formatted, notifContext)

	longTerm, err := p.relevantMemories(ctx, shortTerm)
	if err != nil {
		return err
	}

	candidate := p.generatePost(ctx, shortTerm, longTerm, formatted, strings.Join(notifContext, "\n"), prompts.PostQuery)
	if candidate == "" {
		p.log.Info("no candidate post generated, run complete")
		return nil
	}

	score, err := p.scoreSignificance(ctx, candidate)
	if err != nil {
		p.log.WithField("error", err).Warn("significance scoring failed, skipping post")
		return nil
	}
	p.log.WithFields(logging.Fields{"score": score, "content": candidate}).Info("candidate post scored")

	if postingGate(score, p.cfg.MinStoringSignificance) {
		if err := p.storeMemory(ctx, candidate, score); err != nil {
			return err
		}
	}

	if postingGate(score, p.cfg.MinPostingSignificance) {
		externalID, err := p.platform.Post(ctx, candidate)
		if err != nil {
			p.log.WithField("error", err).Warn("post submission failed")
			return nil
		}
		if _, err := p.store.SavePost(ctx, store.SavePostParams{
			Content:    candidate,
			Author:     p.cfg.AgentHandle,
			Kind:       model.KindOriginal,
			ExternalID: externalID,
		}); err != nil {
			return err
		}
		p.log.WithField("external_id", externalID).Info("posted")
	}

	return nil
}

// dedup partitions mentions into those not yet processed, then commits every
// fetched id (new and seen alike) in one transaction. Partitioning reads the
// prior state before the write, so an id fetched twice in one batch still
// surfaces exactly once, and an interrupted run never re-surfaces ids it
// already committed.
func (p *Pipeline) dedup(ctx context.Context, mentions []model.Mention) ([]model.Mention, error) {
	prior, err := p.store.ProcessedTweetIDs(ctx)
	if err != nil {
		return nil, err
	}

	var fresh []model.Mention
	seen := make(map[string]bool, len(mentions))
	allIDs := make([]string, 0, len(mentions))
	for _, m := range mentions {
		if m.TweetID == "" {
			continue
		}
		allIDs = append(allIDs, m.TweetID)
		if !prior[m.TweetID] && !seen[m.TweetID] {
			seen[m.TweetID] = true
			fresh = append(fresh, m)
		}
	}

	if err := p.store.MarkProcessed(ctx, allIDs); err != nil {
		return nil, err
	}
	return fresh, nil
}

// handleReplies runs the reply gate over each fresh mention and submits
// replies for those that pass. Platform and scorer failures skip the
// mention; store failures abort.
func (p *Pipeline) handleReplies(ctx context.Context, fresh []model.Mention) error {
	for _, m := range fresh {
		author := mentionAuthor(m)
		if author == "" {
			continue
		}
		if !replyPrecheck(author, p.cfg.AgentHandle, p.rng.Float64(), p.cfg.MaxReplyRate) {
			continue
		}

		score, err := p.scoreReplySignificance(ctx, m.Content)
		if err != nil {
			p.log.WithFields(logging.Fields{"tweet_id": m.TweetID, "error": err}).Warn("reply scoring failed")
			continue
		}
		if !replyGate(score, spam.IsSpam(m.Content), p.cfg.MinReplyWorthiness) {
			p.log.WithFields(logging.Fields{"tweet_id": m.TweetID, "score": score}).Debug("reply gate rejected")
			continue
		}

		reply := p.generatePost(ctx, "", nil, "", m.Content, prompts.ReplyQuery)
		if reply == "" {
			continue
		}

		externalID, err := p.platform.Reply(ctx, reply, m.TweetID)
		if err != nil {
			p.log.WithFields(logging.Fields{"tweet_id": m.TweetID, "error": err}).Warn("reply submission failed")
			continue
		}
		if _, err := p.store.SavePost(ctx, store.SavePostParams{
			Content:    reply,
			Author:     p.cfg.AgentHandle,
			Kind:       model.KindReply,
			ExternalID: externalID,
		}); err != nil {
			return err
		}
		p.log.WithFields(logging.Fields{"to": author, "tweet_id": m.TweetID}).Info("replied")
	}
	return nil
}

// handleWallet runs the wallet-transfer flow: balance precondition, then up
// to two attempts at extracting a valid transfer list from the context.
// Every failure here degrades to "no transfers".
func (p *Pipeline) handleWallet(ctx context.Context, notifContext []string) {
	if p.wallet == nil {
		return
	}

	balance, err := p.wallet.Balance(ctx)
	if err != nil {
		p.log.WithField("error", err).Warn("balance query failed")
		return
	}
	p.log.WithField("balance_eth", balance).Info("wallet balance")

	if !walletGate(balance, p.cfg.MinEthBalance) {
		return
	}

	addresses := wallet.ExtractAddresses(notifContext)
	system, user := prompts.WalletDecision(notifContext, addresses, balance)

	for attempt := 0; attempt < 2; attempt++ {
		raw, err := p.llm.Chat(ctx, system, user)
		if err != nil {
			p.log.WithField("error", err).Warn("wallet decision failed")
			return
		}

		transfers, err := parseTransfers(raw)
		if err != nil {
			p.log.WithField("error", err).Warn("wallet decision unparseable")
			continue
		}
		if len(transfers) == 0 {
			p.log.Info("no transfers to make")
			return
		}

		for _, tr := range transfers {
			txHash, err := p.wallet.Transfer(ctx, tr.Address, tr.Amount)
			if err != nil {
				p.log.WithFields(logging.Fields{"to": tr.Address, "error": err}).Warn("transfer failed")
				continue
			}
			p.log.WithFields(logging.Fields{
				"to":         tr.Address,
				"amount_eth": tr.Amount,
				"tx_hash":    txHash,
			}).Info("transferred")
		}
		return
	}
}

// handleFollows runs the follow flow: up to two attempts at extracting
// follow decisions, then follows every candidate above the threshold.
func (p *Pipeline) handleFollows(ctx context.Context, notifContext []string) {
	system, user := prompts.FollowDecision(notifContext)

	for attempt := 0; attempt < 2; attempt++ {
		raw, err := p.llm.Chat(ctx, system, user)
		if err != nil {
			p.log.WithField("error", err).Warn("follow decision failed")
			return
		}

		decisions, err := parseFollowDecisions(raw)
		if err != nil {
			p.log.WithField("error", err).Warn("follow decision unparseable")
			continue
		}
		if len(decisions) == 0 {
			p.log.Info("no users to follow")
			return
		}

		for _, d := range decisions {
			if !followGate(d.Score, p.cfg.MinFollowScore) {
				p.log.WithFields(logging.Fields{"username": d.Username, "score": d.Score}).Debug("follow gate rejected")
				continue
			}
			if err := p.platform.Follow(ctx, d.Username); err != nil {
				p.log.WithFields(logging.Fields{"username": d.Username, "error": err}).Warn("follow failed")
				continue
			}
			p.log.WithFields(logging.Fields{"username": d.Username, "score": d.Score}).Info("followed")
		}
		return
	}
}

// relevantMemories embeds the short-term memory and retrieves similar
// long-term memories. A missing embedder or failed embedding yields no
// memories; store failures abort.
func (p *Pipeline) relevantMemories(ctx context.Context, shortTerm string) ([]model.Memory, error) {
	if p.embedder == nil || shortTerm == "" {
		return nil, nil
	}

	vec, err := p.embedder.Embed(ctx, shortTerm)
	if err != nil {
		p.log.WithField("error", err).Warn("short-term memory embedding failed")
		return nil, nil
	}

	memories, err := p.store.SimilarMemories(ctx, vec, 5)
	if err != nil {
		return nil, err
	}
	return memories, nil
}

// storeMemory embeds and persists the candidate as a long-term memory. A
// failed embedding skips storage; a failed commit aborts.
func (p *Pipeline) storeMemory(ctx context.Context, content string, score float64) error {
	var vec embedding.Vector
	if p.embedder != nil {
		v, err := p.embedder.Embed(ctx, content)
		if err != nil {
			p.log.WithField("error", err).Warn("memory embedding failed, skipping storage")
			return nil
		}
		vec = v
	}

	if _, err := p.store.StoreMemory(ctx, content, vec, score); err != nil {
		return err
	}
	p.log.WithField("score", score).Info("memory stored")
	return nil
}
