package spam

import "testing"

func TestIsSpam_PromotionalText(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"currency with market cap", "$PEPE market cap: 100k soon", true},
		{"dollar symbol", "send me $50 and I'll double it", true},
		{"stablecoin mention", "accepting usdt only", true},
		{"pump phrasing", "massive pump incoming, accumulate", true},
		{"urgency to buy", "buy now before it's too late", true},
		{"multiplier claim", "easy 100x gains", true},
		{"moon promise", "moon soon, trust me", true},
		{"rocket emoji", "new token 🚀🚀🚀", true},
		{"to the moon", "we are going to the moon", true},
		{"crypto slang", "wagmi", true},
		{"presale jargon", "presale opens tomorrow", true},
		{"whitelist spots", "whitelist guaranteed spots available", true},
		{"nft drop", "nft drop at midnight", true},
		{"spaced obfuscation", "p u m p it", true},

		{"plain question", "hey what do you think about this?", false},
		{"ordinary chat", "I walked the dog and it rained all day", false},
		{"tech talk", "the scheduler preempts goroutines at function calls", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsSpam(tt.text); got != tt.want {
				t.Errorf("IsSpam(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestIsSpam_ZeroWidthObfuscation(t *testing.T) {
	// Zero-width joiners between letters must not defeat the signatures.
	if !IsSpam("pu​mp and dump") {
		t.Error("expected zero-width obfuscated pump to match")
	}
}

func TestIsSpam_Deterministic(t *testing.T) {
	text := "limited offer, grab now"
	first := IsSpam(text)
	for i := 0; i < 10; i++ {
		if IsSpam(text) != first {
			t.Fatal("IsSpam is not deterministic")
		}
	}
}
