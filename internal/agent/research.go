package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// MsgNoTopics is returned by ResearchTopics when no usable topic remains
// after normalization.
const MsgNoTopics = "No topics provided for research."

// researchFailurePrefix starts the message embedding a research error.
const researchFailurePrefix = "Failed to conduct research due to an error: "

// ResearchSystemPrompt instructs the research model. The agent is expected
// to use its web_search tool for anything it is not certain about.
const ResearchSystemPrompt = `You are a research assistant. Given one or ` +
	`more topics, gather current, factual information about each and produce ` +
	`an educational summary suitable for creating study material. Use the ` +
	`web_search tool to verify facts and find recent developments. Structure ` +
	`the summary by topic with clear key points.`

// Topics is either a single free-form topic or an explicit topic list.
// Construct with SingleTopic or TopicList.
type Topics struct {
	single string
	list   []string
	isList bool
}

// SingleTopic wraps one free-form topic (which may be a whole profile text).
func SingleTopic(s string) Topics {
	return Topics{single: s}
}

// TopicList wraps an explicit list of topics.
func TopicList(ss []string) Topics {
	return Topics{list: ss, isList: true}
}

// normalize returns the topics as a trimmed, blank-free list.
func (t Topics) normalize() []string {
	var raw []string
	if t.isList {
		raw = t.list
	} else if t.single != "" {
		raw = []string{t.single}
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// ResearchAgent turns topics into researched summaries using a model with
// web-search capability.
type ResearchAgent struct {
	invoker Invoker
	log     *slog.Logger
}

// ResearchConfig carries the dependencies for NewResearchAgent.
type ResearchConfig struct {
	// Invoker runs the model, typically a ReactInvoker with the web_search
	// tool attached. Required.
	Invoker Invoker

	// Logger receives structured logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewResearchAgent validates cfg and constructs a ResearchAgent.
func NewResearchAgent(cfg *ResearchConfig) (*ResearchAgent, error) {
	if cfg == nil || cfg.Invoker == nil {
		return nil, fmt.Errorf("agent: research agent requires an invoker")
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &ResearchAgent{invoker: cfg.Invoker, log: log}, nil
}

// ResearchTopics researches all given topics in a single model invocation
// and returns the combined summary. Like the profile agent it never returns
// an error; failures are embedded in the returned text.
func (a *ResearchAgent) ResearchTopics(ctx context.Context, topics Topics) string {
	list := topics.normalize()
	if len(list) == 0 {
		a.log.Info("research skipped, no topics after normalization")
		return MsgNoTopics
	}

	joined := strings.Join(list, ", ")
	prompt := fmt.Sprintf("Research the following topics and produce an "+
		"educational summary of each, with key facts and recent developments: %s",
		joined)

	out, err := a.invoker.Invoke(ctx, prompt)
	if err != nil {
		a.log.Error("research failed", "topics", joined, "error", err)
		return researchFailurePrefix + err.Error()
	}

	if soundsUnableToFind(out) {
		a.log.Warn("research output looks like an apology, content may be thin",
			"topics", joined)
	}

	a.log.Info("research completed", "topics", len(list), "chars", len(out))
	return out
}

// soundsUnableToFind detects apology-style responses where the model could
// not find information. These are surfaced as warnings, not failures, since
// partial content may still be present.
func soundsUnableToFind(s string) bool {
	lower := strings.ToLower(s)
	return strings.Contains(lower, "sorry") &&
		strings.Contains(lower, "unable to find information")
}

// IsDegenerateResearch reports whether a research result is unusable for
// flashcard generation: the no-topics sentinel, an embedded failure, or
// blank output.
func IsDegenerateResearch(s string) bool {
	if s == MsgNoTopics || strings.TrimSpace(s) == "" {
		return true
	}
	return strings.HasPrefix(s, researchFailurePrefix)
}
