package pipeline

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/NousResearch/nousflash-agents/internal/model"
)

// spamPenalty is subtracted from a mention's reply-worthiness score when the
// spam filter flags it.
const spamPenalty = 3.0

// authorPattern extracts the first @handle from mention text, used when the
// platform response carried no author expansion.
var authorPattern = regexp.MustCompile(`@(\w+)`)

// mentionAuthor returns the mention's author handle, or "" when none can be
// determined.
func mentionAuthor(m model.Mention) string {
	if m.Author != "" {
		return m.Author
	}
	if match := authorPattern.FindStringSubmatch(m.Content); match != nil {
		return match[1]
	}
	return ""
}

// replyPrecheck applies the cheap reply-gate conditions that run before the
// scorer is consulted: never reply to self, and sample against the
// configured max reply rate. draw is a uniform value in [0,1).
func replyPrecheck(author, agentHandle string, draw, maxReplyRate float64) bool {
	if strings.EqualFold(author, agentHandle) {
		return false
	}
	return draw <= maxReplyRate
}

// replyGate is the scored half of the reply gate: the significance score,
// minus the spam penalty when flagged, must reach the worthiness threshold.
func replyGate(score float64, isSpam bool, minWorthiness float64) bool {
	if isSpam {
		score -= spamPenalty
	}
	return score >= minWorthiness
}

// followGate accepts a candidate whose score strictly exceeds the threshold.
func followGate(score, minFollowScore float64) bool {
	return score > minFollowScore
}

// postingGate accepts content whose significance reaches the threshold. The
// same predicate serves the posting and memory-storage decisions, evaluated
// independently against their own thresholds.
func postingGate(score, min float64) bool {
	return score >= min
}

// walletGate reports whether the wallet flow should run at all.
func walletGate(balanceEth, minBalance float64) bool {
	return balanceEth > minBalance
}

// jsonFence strips a markdown code fence if the model wrapped its JSON in
// one.
var jsonFence = regexp.MustCompile("(?s)^```(?:json)?\\s*(.*?)\\s*```$")

func stripFence(raw string) string {
	raw = strings.TrimSpace(raw)
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return raw
}

// parseTransfers strictly parses the wallet decision output. Anything that
// is not a JSON array of valid address/amount records is a parse error;
// callers treat that as "no transfers", never as a fatal condition.
func parseTransfers(raw string) ([]model.Transfer, error) {
	var transfers []model.Transfer
	if err := json.Unmarshal([]byte(stripFence(raw)), &transfers); err != nil {
		return nil, fmt.Errorf("parse transfers: %w", err)
	}
	for _, tr := range transfers {
		if tr.Address == "" {
			return nil, fmt.Errorf("parse transfers: empty address")
		}
		if tr.Amount <= 0 {
			return nil, fmt.Errorf("parse transfers: non-positive amount for %s", tr.Address)
		}
	}
	return transfers, nil
}

// parseFollowDecisions strictly parses the follow decision output.
func parseFollowDecisions(raw string) ([]model.FollowDecision, error) {
	var decisions []model.FollowDecision
	if err := json.Unmarshal([]byte(stripFence(raw)), &decisions); err != nil {
		return nil, fmt.Errorf("parse follow decisions: %w", err)
	}
	for _, d := range decisions {
		if d.Username == "" {
			return nil, fmt.Errorf("parse follow decisions: empty username")
		}
	}
	return decisions, nil
}

// scorePattern pulls the leading numeric score out of a scorer response.
var scorePattern = regexp.MustCompile(`[-+]?\d+(?:\.\d+)?`)

// parseScore extracts the numeric score from the scorer's free-text answer.
func parseScore(raw string) (float64, error) {
	m := scorePattern.FindString(raw)
	if m == "" {
		return 0, fmt.Errorf("no score in %q", raw)
	}
	var score float64
	if _, err := fmt.Sscanf(m, "%f", &score); err != nil {
		return 0, fmt.Errorf("parse score %q: %w", m, err)
	}
	return score, nil
}
