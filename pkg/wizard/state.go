package wizard

// State holds the Answers of one session. It performs no validation and
// no persistence; it is not safe for concurrent use on its own (Session
// serializes access).
type State struct {
	answers Answers
}

func NewState() *State {
	return &State{answers: DefaultAnswers()}
}

// Get returns a copy of the current answers.
func (s *State) Get() Answers {
	return s.answers.Clone()
}

// Merge applies the non-nil fields of p, last write wins.
func (s *State) Merge(p Patch) {
	p.apply(&s.answers)
}

// Reset restores the documented defaults.
func (s *State) Reset() {
	s.answers = DefaultAnswers()
}

// Hydrate replaces the whole model. The caller guarantees it is valid.
func (s *State) Hydrate(a Answers) {
	s.answers = a.Clone()
}

// AttachDocuments stores a reconciled document set.
func (s *State) AttachDocuments(docs DocumentSet) {
	s.answers.Documents = docs.clone()
}
