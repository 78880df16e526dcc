package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kompow/kompow-go/internal/budget"
	"github.com/kompow/kompow-go/internal/kb"
)

// Sentinel results returned by AnalyzeUserProfile when no analysis is
// possible. Callers compare against these (or use IsDegenerateProfile) to
// decide whether to continue the pipeline.
const (
	// MsgKBNotAvailable is returned when the agent has no knowledge base.
	MsgKBNotAvailable = "Could not analyze user profile: knowledge base not available."

	// MsgNoDocuments is returned when the knowledge base holds no documents.
	MsgNoDocuments = "No documents found in the user's knowledge base. Cannot analyze profile."

	// MsgNoTextContent is returned when retrieved documents carry no text.
	MsgNoTextContent = "Retrieved documents have no text content. Cannot analyze profile."
)

// profileFailurePrefix starts the message embedding an LLM error.
const profileFailurePrefix = "Failed to generate profile due to LLM error: "

// ProfileSystemPrompt instructs the profile analysis model. Pass it to the
// invoker backing a ProfileAgent.
const ProfileSystemPrompt = `You are a learning analyst. You study the ` +
	`documents a person has collected and produce a concise profile of their ` +
	`interests and current learning topics. Be specific: name technologies, ` +
	`concepts, and themes rather than broad categories.`

// defaultMaxProfileDocs bounds how many documents feed one analysis.
const defaultMaxProfileDocs = 50

// docSeparator joins document contents in the analysis prompt. Multi
// character on purpose: it survives models that collapse single newlines.
const docSeparator = "\n\n---\n\n"

// ProfileAgent summarizes a user's interests from their knowledge base.
type ProfileAgent struct {
	userID    string
	kb        *kb.KnowledgeBase
	invoker   Invoker
	maxDocs   int
	maxTokens int
	log       *slog.Logger
}

// ProfileConfig carries the dependencies for NewProfileAgent.
type ProfileConfig struct {
	// UserID scopes logging; the knowledge base handle is already scoped.
	UserID string

	// KB is the user's knowledge base. May be nil: AnalyzeUserProfile then
	// reports MsgKBNotAvailable instead of failing.
	KB *kb.KnowledgeBase

	// Invoker runs the model. Required.
	Invoker Invoker

	// MaxDocs bounds the document fetch (default: 50).
	MaxDocs int

	// MaxContextTokens bounds the prompt size (default: budget default).
	MaxContextTokens int

	// Logger receives structured logs. Defaults to slog.Default.
	Logger *slog.Logger
}

// NewProfileAgent validates cfg and constructs a ProfileAgent.
func NewProfileAgent(cfg *ProfileConfig) (*ProfileAgent, error) {
	if cfg == nil || cfg.Invoker == nil {
		return nil, fmt.Errorf("agent: profile agent requires an invoker")
	}
	maxDocs := cfg.MaxDocs
	if maxDocs <= 0 {
		maxDocs = defaultMaxProfileDocs
	}
	maxTokens := cfg.MaxContextTokens
	if maxTokens <= 0 {
		maxTokens = budget.DefaultMaxContextTokens
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &ProfileAgent{
		userID:    cfg.UserID,
		kb:        cfg.KB,
		invoker:   cfg.Invoker,
		maxDocs:   maxDocs,
		maxTokens: maxTokens,
		log:       log,
	}, nil
}

// AnalyzeUserProfile reads the user's documents and returns a textual
// profile of their interests. It never returns an error: every failure mode
// maps to a sentinel or failure-embedding message so the caller always has
// text to act on.
func (a *ProfileAgent) AnalyzeUserProfile(ctx context.Context) string {
	if a.kb == nil {
		a.log.Warn("profile analysis skipped, no knowledge base", "user", a.userID)
		return MsgKBNotAvailable
	}

	docs, err := a.kb.Query(ctx, "", a.maxDocs)
	if err != nil {
		a.log.Warn("profile analysis could not read documents", "user", a.userID, "error", err)
		return MsgNoDocuments
	}
	if len(docs) == 0 {
		a.log.Info("profile analysis found no documents", "user", a.userID)
		return MsgNoDocuments
	}

	prompt := profilePrompt(a.userID)
	docs = budget.TrimDocuments(docs, budget.Estimate(prompt), a.maxTokens)

	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if c := strings.TrimSpace(d.Content); c != "" {
			parts = append(parts, c)
		}
	}
	if len(parts) == 0 {
		a.log.Warn("profile analysis found only empty documents", "user", a.userID)
		return MsgNoTextContent
	}

	full := prompt + strings.Join(parts, docSeparator)
	out, err := a.invoker.Invoke(ctx, full)
	if err != nil {
		a.log.Error("profile analysis failed", "user", a.userID, "error", err)
		return profileFailurePrefix + err.Error()
	}

	a.log.Info("profile analysis completed",
		"user", a.userID,
		"documents", len(parts),
		"chars", len(out))
	return out
}

// profilePrompt is the instruction that precedes the document dump.
func profilePrompt(userID string) string {
	return fmt.Sprintf("Analyze the following documents collected by user %q "+
		"and describe their primary interests and the topics they appear to be "+
		"learning. Answer with a short profile paragraph followed by a list of "+
		"concrete topics.\n\nDocuments:\n\n", userID)
}

// IsDegenerateProfile reports whether a profile result is one of the
// sentinels or an embedded failure, i.e. unusable for further stages.
func IsDegenerateProfile(s string) bool {
	switch s {
	case MsgKBNotAvailable, MsgNoDocuments, MsgNoTextContent:
		return true
	}
	return strings.HasPrefix(s, profileFailurePrefix) || strings.TrimSpace(s) == ""
}
