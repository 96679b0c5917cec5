package planner

import (
	"context"
	"regexp"
	"strings"

	"github.com/cyrup-ai/sweetmcp-sub007/internal/memory"
)

// ActionKind enumerates the memory mutations a planning pass can propose.
type ActionKind string

const (
	ActionAdd    ActionKind = "add"
	ActionUpdate ActionKind = "update"
	ActionDelete ActionKind = "delete"
)

// Action is one proposed memory mutation.
type Action struct {
	Kind       ActionKind
	ItemID     string // set for update/delete
	Content    string
	MemoryKind string
	Confidence memory.Confidence
}

// LLMClient is the optional interface a planner can use to propose actions
// via a language model, mirroring the teacher's LLMClient abstraction in
// memory-tools/internal/domain/memory/models.go. The MCTS/committee core
// never depends on this; it is consulted only here, and only when configured.
type LLMClient interface {
	ProposeActions(ctx context.Context, observation string, existing []memory.Item) ([]Action, error)
}

// Planner decides memory actions for an observed interaction, preferring an
// LLMClient when configured and falling back to the heuristic classifier,
// ported from memory-tools/internal/domain/action/planner.go's
// planWithLLM/planWithHeuristics split.
type Planner struct {
	llm    LLMClient
	scorer *Scorer
}

// New builds a Planner. llm may be nil to force heuristic-only planning.
func New(llm LLMClient) *Planner {
	return &Planner{llm: llm, scorer: NewScorer()}
}

// PlanActions proposes memory actions for an observed interaction against
// existing memory context, trying the LLM client first and falling back to
// heuristics on any error or when no client is configured.
func (p *Planner) PlanActions(ctx context.Context, observation string, existing []memory.Item) ([]Action, error) {
	if p.llm != nil {
		actions, err := p.llm.ProposeActions(ctx, observation, existing)
		if err == nil {
			return actions, nil
		}
	}
	return p.planWithHeuristics(observation, existing), nil
}

var (
	preferencePattern = regexp.MustCompile(`(?i)\b(i (prefer|like|want|love|hate))\b`)
	decisionPattern   = regexp.MustCompile(`(?i)\b(we (decided|chose|will use|agreed))\b`)
	requirementPattern = regexp.MustCompile(`(?i)\b(must|required to|needs? to)\b`)
	constraintPattern  = regexp.MustCompile(`(?i)\b(cannot|must not|never|don't|do not)\b`)
)

func (p *Planner) planWithHeuristics(observation string, existing []memory.Item) []Action {
	var actions []Action

	sentences := splitSentences(observation)
	for _, sentence := range sentences {
		kind := classify(sentence)
		if kind == "" {
			continue
		}
		importance := p.scorer.ScoreImportance(sentence)
		if importance < 0.35 {
			continue
		}
		confidence := p.scorer.ScoreConfidence(importance, 1)

		if dup := findDuplicate(sentence, existing); dup != nil {
			actions = append(actions, Action{
				Kind: ActionUpdate, ItemID: dup.ID, Content: sentence,
				MemoryKind: kind, Confidence: confidence,
			})
			continue
		}

		actions = append(actions, Action{
			Kind: ActionAdd, Content: sentence, MemoryKind: kind, Confidence: confidence,
		})
	}
	return actions
}

func classify(sentence string) string {
	switch {
	case preferencePattern.MatchString(sentence):
		return "preference"
	case decisionPattern.MatchString(sentence):
		return "decision"
	case requirementPattern.MatchString(sentence):
		return "requirement"
	case constraintPattern.MatchString(sentence):
		return "constraint"
	default:
		return ""
	}
}

func splitSentences(text string) []string {
	raw := strings.FieldsFunc(text, func(r rune) bool {
		return r == '.' || r == '\n' || r == ';'
	})
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

func findDuplicate(sentence string, existing []memory.Item) *memory.Item {
	lower := strings.ToLower(sentence)
	for i := range existing {
		if strings.Contains(strings.ToLower(existing[i].Content), lower) ||
			strings.Contains(lower, strings.ToLower(existing[i].Content)) {
			return &existing[i]
		}
	}
	return nil
}
