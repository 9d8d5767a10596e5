package domain

// RefinementPhase is the per-champion, per-session state of the automatic
// refinement workflow. Transitions are pure; the workflow owns the storage.
//
//	Unchecked --(no need)--> Skipped   (terminal)
//	Unchecked --(need)-----> Refining
//	Refining  --(settled)--> Done      (terminal)
type RefinementPhase int

const (
	PhaseUnchecked RefinementPhase = iota
	PhaseSkipped
	PhaseRefining
	PhaseDone
)

func (p RefinementPhase) String() string {
	switch p {
	case PhaseUnchecked:
		return "Unchecked"
	case PhaseSkipped:
		return "Skipped"
	case PhaseRefining:
		return "Refining"
	case PhaseDone:
		return "Done"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further automatic pass may start this session.
func (p RefinementPhase) Terminal() bool {
	return p == PhaseSkipped || p == PhaseDone
}

// Begin decides the phase entered when a detail view opens. Anything other
// than Unchecked is left alone, which is what suppresses a second automatic
// pass while one is in flight or after one has settled.
func (p RefinementPhase) Begin(need bool) RefinementPhase {
	if p != PhaseUnchecked {
		return p
	}
	if !need {
		return PhaseSkipped
	}
	return PhaseRefining
}

// Settle marks a refining pass as finished, success or partial failure alike.
func (p RefinementPhase) Settle() RefinementPhase {
	if p == PhaseRefining {
		return PhaseDone
	}
	return p
}
