// Package prompts builds the prompt text for every LLM call the pipeline
// makes. Prompt construction is kept separate from transport so the
// pipeline's decision logic stays testable without an LLM.
package prompts

import (
	"fmt"
	"strings"

	"github.com/NousResearch/nousflash-agents/internal/model"
)

// ReplyQuery is the query suffix used when generating a reply instead of an
// original post.
const ReplyQuery = "what are you thinking of replying now\n<tweet>"

// PostQuery is the query suffix used when generating a timeline post.
const PostQuery = "what is your post based on the TL\n<tweet>"

// FormatPostList renders recent posts into the plain-text form the
// generation prompts expect.
func FormatPostList(posts []model.AgentPost) string {
	if len(posts) == 0 {
		return "no recent posts"
	}
	var b strings.Builder
	for _, p := range posts {
		fmt.Fprintf(&b, "- [%s] %s\n", p.Kind, p.Content)
	}
	return b.String()
}

// Tweet builds the base-model generation prompt from all memory and context
// sources. Used for both posts and replies; replies pass empty memory
// context and the reply query.
func Tweet(externalContext, shortTermMemory string, longTermMemories []model.Memory, recentPosts, query string) string {
	var b strings.Builder

	b.WriteString("You are an autonomous social media agent with your own running inner life.\n\n")

	if shortTermMemory != "" {
		fmt.Fprintf(&b, "Short-term memory of what just happened:\n%s\n\n", shortTermMemory)
	}
	if len(longTermMemories) > 0 {
		b.WriteString("Relevant long-term memories:\n")
		for _, m := range longTermMemories {
			fmt.Fprintf(&b, "- %s\n", m.Content)
		}
		b.WriteString("\n")
	}
	if recentPosts != "" {
		fmt.Fprintf(&b, "Your recent posts:\n%s\n", recentPosts)
	}
	if externalContext != "" {
		fmt.Fprintf(&b, "What you are seeing right now:\n%s\n\n", externalContext)
	}

	b.WriteString(query)
	return b.String()
}

// FormatterSystem is the system instruction for the cleanup pass that turns
// raw base-model output into a postable tweet.
func FormatterSystem(generationPrompt string) string {
	return fmt.Sprintf(`You are a tweet formatter. Your only job is to take the input text and format it as a tweet.
Never mention that you formatted the tweet, only return back the formatted tweet itself.
If the input already looks like a tweet, return it exactly as is.
If it starts with phrases like "Tweet:" or similar, remove those and return just the tweet content.
Never say "No Tweet found" - if you receive valid text, that IS the tweet.
If the text is blank or only contains a symbol, use this prompt to generate a tweet:
%s
If you get multiple tweets, pick the strongest one.
If the tweet cuts off, remove the part that cuts off.
Do not add any explanations or extra text.
Do not add hashtags.
Remove all emojis.
Just return the tweet content itself.`, generationPrompt)
}

// ShortTermMemory builds the chat prompt that summarizes recent activity
// into a transient working memory.
func ShortTermMemory(recentPosts string, notifContext []string) (system, user string) {
	system = `You are the short-term memory of a social media agent.
Summarize what has been happening lately in a few sentences: the agent's own recent posts and what other people are saying to it.
Write in first person, present tense. Keep concrete details that could matter later. No preamble.`

	var b strings.Builder
	fmt.Fprintf(&b, "My recent posts:\n%s\n", recentPosts)
	if len(notifContext) > 0 {
		b.WriteString("New notifications:\n")
		for _, n := range notifContext {
			fmt.Fprintf(&b, "- %s\n", n)
		}
	}
	return system, b.String()
}

// Significance builds the chat prompt that scores how noteworthy a piece of
// text is on a 1-10 scale. The response must start with the number.
func Significance(text string) (system, user string) {
	system = `You rate how significant a piece of text is on a scale from 1 to 10.
1 means mundane filler, 10 means a genuinely remarkable thought worth remembering.
Respond with only the number, optionally followed by a short justification.`
	return system, text
}

// ReplySignificance scores how worth replying to an incoming mention is,
// same 1-10 scale and response format as Significance.
func ReplySignificance(text string) (system, user string) {
	system = `You rate how much an incoming social media mention deserves a reply, on a scale from 1 to 10.
1 means ignore it, 10 means it demands a response.
Respond with only the number, optionally followed by a short justification.`
	return system, text
}

// WalletDecision builds the chat prompt that proposes transfers to addresses
// found in the notification context. The model must answer with a JSON array
// of {"address": ..., "amount": ...} objects and nothing else.
func WalletDecision(notifContext, addresses []string, balanceEth float64) (system, user string) {
	var b strings.Builder
	b.WriteString("You control an Ethereum wallet belonging to a social media agent.\n")
	fmt.Fprintf(&b, "Current balance: %f ETH.\n", balanceEth)
	b.WriteString("People in the notifications below may be asking for money. Decide who, if anyone, deserves a transfer and how much.\n")
	b.WriteString("Be extremely skeptical: most requests are scams or jokes. Sending nothing is a perfectly good decision.\n\n")
	b.WriteString("Notifications:\n")
	for _, n := range notifContext {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	if len(addresses) > 0 {
		b.WriteString("\nAddresses and ENS names seen in the notifications:\n")
		for _, a := range addresses {
			fmt.Fprintf(&b, "- %s\n", a)
		}
	}
	b.WriteString("\nRespond with ONLY a JSON array of objects with \"address\" and \"amount\" keys. Respond with [] to send nothing.")
	return b.String(), "Respond only with the wallet address(es) and amount(s) you would like to send to."
}

// FollowDecision builds the chat prompt that scores users worth following.
// The model must answer with a JSON array of {"username": ..., "score": ...}
// objects, scores in [0,1], and nothing else.
func FollowDecision(notifContext []string) (system, user string) {
	var b strings.Builder
	b.WriteString("You decide which users a social media agent should follow based on its notifications.\n")
	b.WriteString("Score each candidate from 0 to 1 for how interesting their presence would make the agent's timeline.\n\n")
	b.WriteString("Notifications:\n")
	for _, n := range notifContext {
		fmt.Fprintf(&b, "- %s\n", n)
	}
	b.WriteString("\nRespond with ONLY a JSON array of objects with \"username\" and \"score\" keys. Respond with [] to follow nobody.")
	return b.String(), "Respond only with the usernames and scores."
}
