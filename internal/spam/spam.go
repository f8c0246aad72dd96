// Package spam implements a heuristic classifier for promotional and
// scam-like text. It is a scoring adjustment, not a hard block: false
// positives and negatives are acceptable.
package spam

import (
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// cleanup strips whitespace, separators, and zero-width characters so that
// obfuscated spellings ("p u m p", "t.o.t.h.e.m.o.o.n") collapse before the
// signatures run.
var cleanup = regexp.MustCompile(`[\s.\-_|\\/()\[\]\x{200b}-\x{200f}\x{2060}\x{feff}]+`)

// signatures are independent promotional markers. The result is a logical OR
// over all of them, so order has no effect.
var signatures = []*regexp.Regexp{
	// currency and stablecoin symbols
	regexp.MustCompile(`[$€¢£¥]|(?:usd[t]?|usdc|busd)`),
	// contract address / market cap jargon, including Cyrillic lookalikes
	regexp.MustCompile(`(?:ca|с[aа]|market.?cap)[:|/]?(?:\d|soon)`),
	// ticker talk with digit/Cyrillic substitutions
	regexp.MustCompile(`t[i1І]ck[e3Е]r|symb[o0]l|(?:trading|list).?pairs?`),
	regexp.MustCompile(`p[uüūи][mм]p|рuмр|ⓟⓤⓜⓟ|accumulate`),
	// urgency-to-buy phrasing
	regexp.MustCompile(`(?:buy|sel[l1]|gr[a4]b|hurry|last.?chance|dont.?miss|act.?fast|limited|exclusive)[^.]{0,15}(?:now|fast|quick|soon|today)`),
	// multiplier and percentage gain claims
	regexp.MustCompile(`(?:\d+x|\d+[k%]|\d+x?(?:gains?|profit|roi|apy|returns?))`),
	regexp.MustCompile(`(?:moon|rocket|profit|lambo|wealth|rich).{0,15}(?:soon|guaranteed|incoming|imminent)`),
	regexp.MustCompile(`[🚀💎🌙⬆️📈💰💵💸🤑🔥⭐️🌟✨]+`),
	regexp.MustCompile(`(?:diamond|gem|moon).?(?:hands?|hold|hodl)|hold?.?strong`),
	// "to the moon" variants with lookalike substitutions
	regexp.MustCompile(`(?:to|2|two|II).?(?:the|da|d[4a]).?(?:moon|m[o0]n|m[о0]{2}n)`),
	regexp.MustCompile(`\b(?:hodl|dyor|fomo|fud|wagmi|gm|ngmi|ath|altcoin|shitcoin|memecoin)\b`),
	regexp.MustCompile(`(?:1000|k|thousand).?x`),
	regexp.MustCompile(`(?:presale|private.?sale|ico|ido)`),
	regexp.MustCompile(`(?:whitel[i1]st|guaranteed.?spots?)`),
	regexp.MustCompile(`(?:low|small).?(?:cap|market.?cap)`),
	regexp.MustCompile(`(?:nft|mint).?(?:drop|launch|sale)`),
	regexp.MustCompile(`(?:early|earlybird|early.?access)`),
	// invite links to chat platforms and dex tooling
	regexp.MustCompile(`(?:t\.me|discord\.gg|dex\.tools)`),
}

// IsSpam reports whether the text matches any promotional signature. Pure
// and deterministic.
func IsSpam(text string) bool {
	clean := cleanup.ReplaceAllString(norm.NFKC.String(strings.ToLower(text)), "")
	for _, sig := range signatures {
		if sig.MatchString(clean) {
			return true
		}
	}
	return false
}
