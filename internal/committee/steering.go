package committee

import "fmt"

// FeedbackType classifies the kind of guidance a steering pass gives back
// to the search, per spec.md §4.7 and original_source's
// cognitive/committee/consensus/steering.rs.
type FeedbackType string

const (
	Encouraging FeedbackType = "encouraging"
	Corrective  FeedbackType = "corrective"
	Refocusing  FeedbackType = "refocusing"
	Concluding  FeedbackType = "concluding"
)

// FeedbackUrgency ranks how soon the search should act on the feedback.
type FeedbackUrgency int

const (
	UrgencyLow FeedbackUrgency = iota
	UrgencyMedium
	UrgencyHigh
)

// SteeringFeedback is the outcome of comparing two consecutive committee
// rounds, guiding whether the search should continue as-is, course-correct,
// or wrap up.
type SteeringFeedback struct {
	Type              FeedbackType
	Message           string
	FocusAreas        []string
	DecliningAreas    []string
	TopConcerns       []string
	FreshPerspectives []string
	Confidence        float64
}

// ShouldContinue reports whether the search should keep iterating given
// this feedback; only Concluding feedback signals a stop.
func (f SteeringFeedback) ShouldContinue() bool { return f.Type != Concluding }

// PrimaryFocus returns the single most salient item the caller should act
// on next: a focus area for Encouraging feedback, a concern for Corrective,
// and so on.
func (f SteeringFeedback) PrimaryFocus() string {
	switch f.Type {
	case Encouraging:
		if len(f.FocusAreas) > 0 {
			return f.FocusAreas[0]
		}
	case Corrective:
		if len(f.TopConcerns) > 0 {
			return f.TopConcerns[0]
		}
	case Refocusing:
		if len(f.FreshPerspectives) > 0 {
			return f.FreshPerspectives[0]
		}
	}
	return ""
}

// Urgency classifies how urgently the feedback should be acted on.
func (f SteeringFeedback) Urgency() FeedbackUrgency {
	switch f.Type {
	case Corrective:
		return UrgencyHigh
	case Refocusing:
		return UrgencyMedium
	default:
		return UrgencyLow
	}
}

// SteeringSystem compares consecutive committee rounds and produces
// feedback, mirroring steering.rs's SteeringSystem.
type SteeringSystem struct {
	MinRoundsForFeedback int
	ImprovementThreshold float64
}

// NewSteeringSystem returns a system with the Rust default configuration:
// at least 2 rounds of history before feedback is generated, and a 0.1
// improvement threshold.
func NewSteeringSystem() *SteeringSystem {
	return &SteeringSystem{MinRoundsForFeedback: 2, ImprovementThreshold: 0.1}
}

// GenerateSteeringFeedback compares the latest round against its
// predecessor and classifies the trend, per determine_feedback_type's exact
// thresholds: Encouraging needs score_improvement >= threshold AND
// progress_improvement >= 0.1; Corrective fires on score_improvement < -0.1
// OR progress_improvement < -0.2; Refocusing fires when both deltas are
// within +-0.05; everything else is Concluding.
func (s *SteeringSystem) GenerateSteeringFeedback(history []Round, phase Phase) *SteeringFeedback {
	if len(history) < s.MinRoundsForFeedback {
		return nil
	}

	current := history[len(history)-1]
	previous := history[len(history)-2]

	scoreImprovement := current.Consensus - previous.Consensus
	progressImprovement := current.Progress - previous.Progress

	feedbackType := s.determineFeedbackType(scoreImprovement, progressImprovement)

	feedback := &SteeringFeedback{
		Type:       feedbackType,
		Confidence: s.calculateConfidence(history),
	}

	switch feedbackType {
	case Encouraging:
		feedback.FocusAreas = identifyFocusAreas(current)
		feedback.Message = s.encouragingMessage(scoreImprovement, feedback.FocusAreas)
	case Corrective:
		feedback.DecliningAreas = identifyDecliningAreas(current, previous)
		feedback.TopConcerns = extractTopConcerns(current)
		feedback.Message = s.correctiveMessage(scoreImprovement, feedback.TopConcerns)
	case Refocusing:
		feedback.FreshPerspectives = suggestFreshPerspectives(phase)
		feedback.Message = s.refocusingMessage(feedback.FreshPerspectives)
	case Concluding:
		feedback.Message = s.concludingMessage(current)
	}

	return feedback
}

func (s *SteeringSystem) determineFeedbackType(scoreImprovement, progressImprovement float64) FeedbackType {
	switch {
	case scoreImprovement >= s.ImprovementThreshold && progressImprovement >= 0.1:
		return Encouraging
	case scoreImprovement < -0.1 || progressImprovement < -0.2:
		return Corrective
	case absF(scoreImprovement) < 0.05 && absF(progressImprovement) < 0.05:
		return Refocusing
	default:
		return Concluding
	}
}

func (s *SteeringSystem) calculateConfidence(history []Round) float64 {
	if len(history) < 3 {
		return 0.5
	}
	var variance float64
	var mean float64
	for _, r := range history {
		mean += r.Consensus
	}
	mean /= float64(len(history))
	for _, r := range history {
		d := r.Consensus - mean
		variance += d * d
	}
	variance /= float64(len(history))
	// Lower variance across rounds means the committee is converging,
	// which we read as higher confidence in the trend classification.
	return clamp01(1 - variance*4)
}

// identifyFocusAreas flags the weak spots a round's average scores reveal,
// mirroring identify_focus_areas's sub-0.6 thresholds and category labels
// exactly (average_alignment/average_quality/average_safety/error_count/
// evaluation count), falling back to a fixed set of generic refinement
// areas when nothing is weak.
func identifyFocusAreas(round Round) []string {
	var areas []string

	if n := len(round.Evaluations); n > 0 {
		var sumAlignment, sumQuality, sumRisk float64
		for _, e := range round.Evaluations {
			sumAlignment += e.ObjectiveAlignment
			sumQuality += e.ImplementationQuality
			sumRisk += e.RiskAssessment
		}
		avgAlignment := sumAlignment / float64(n)
		avgQuality := sumQuality / float64(n)
		avgSafety := 1 - sumRisk/float64(n) // RiskAssessment is a risk score; safety is its complement

		if avgAlignment < 0.6 {
			areas = append(areas, "objective alignment")
		}
		if avgQuality < 0.6 {
			areas = append(areas, "implementation quality")
		}
		if avgSafety < 0.6 {
			areas = append(areas, "risk assessment")
		}
	}
	if round.ErrorCount > 0 {
		areas = append(areas, "evaluation reliability")
	}
	if len(round.Evaluations) < 3 {
		areas = append(areas, "evaluation coverage")
	}

	if len(areas) == 0 {
		areas = []string{"fine-tuning details", "edge case handling", "performance optimization"}
	}
	return areas
}

func identifyDecliningAreas(current, previous Round) []string {
	prevByAgent := make(map[string]float64, len(previous.Evaluations))
	for _, e := range previous.Evaluations {
		prevByAgent[e.AgentID] = e.ObjectiveAlignment
	}

	var declining []string
	for _, e := range current.Evaluations {
		if prev, ok := prevByAgent[e.AgentID]; ok && e.ObjectiveAlignment < prev-0.05 {
			declining = append(declining, e.AgentID)
		}
	}
	return declining
}

func extractTopConcerns(round Round) []string {
	var concerns []string
	for _, e := range round.Evaluations {
		if e.ObjectiveAlignment < 0.5 {
			concerns = append(concerns, fmt.Sprintf("%s: %s", e.AgentID, e.Reasoning))
		}
	}
	return concerns
}

// suggestFreshPerspectives returns a phase-dependent subset of perspectives
// worth re-weighting when the search has stagnated, mirroring
// suggest_fresh_perspectives's phase-conditional list.
func suggestFreshPerspectives(phase Phase) []string {
	switch phase {
	case PhaseInitial:
		return []string{string(Architecture), string(User)}
	case PhaseReview:
		return []string{string(Testing), string(Security)}
	default:
		return []string{string(Maintainability), string(Documentation)}
	}
}

func (s *SteeringSystem) encouragingMessage(improvement float64, focusAreas []string) string {
	return fmt.Sprintf("consensus improved by %.3f; focus next on %v", improvement, focusAreas)
}

func (s *SteeringSystem) correctiveMessage(decline float64, concerns []string) string {
	return fmt.Sprintf("consensus dropped by %.3f; address: %v", -decline, concerns)
}

func (s *SteeringSystem) refocusingMessage(perspectives []string) string {
	return fmt.Sprintf("consensus has plateaued; consider weighting %v more heavily", perspectives)
}

func (s *SteeringSystem) concludingMessage(round Round) string {
	return fmt.Sprintf("consensus stable at %.3f; search can conclude", round.Consensus)
}

func absF(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
