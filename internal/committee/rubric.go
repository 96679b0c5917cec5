package committee

// EvaluationRubric names the fixed committee composition for a search run:
// which perspectives participate and how many rounds are run before a
// verdict is finalized.
type EvaluationRubric struct {
	Perspectives []Perspective
	Rounds       int
}

// DefaultRubric returns the seven-perspective committee spec.md §4.5 names
// as the default CommitteeSize.
func DefaultRubric() EvaluationRubric {
	return EvaluationRubric{
		Perspectives: []Perspective{
			Performance, Security, Maintainability, User, Architecture, Testing, Documentation,
		},
		Rounds: 3,
	}
}

// Agents instantiates one Agent per perspective in the rubric.
func (r EvaluationRubric) Agents() []*Agent {
	agents := make([]*Agent, len(r.Perspectives))
	for i, p := range r.Perspectives {
		agents[i] = NewAgent(p)
	}
	return agents
}
