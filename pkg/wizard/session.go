package wizard

import (
	"context"
	"sync"
	"time"
)

// Ticket tags one outstanding generation with the session token it was
// issued under and the answers it was built from.
type Ticket struct {
	Token   uint64
	Answers Answers
}

// View is a read-only snapshot of a session.
type View struct {
	ID        string    `json:"id"`
	Step      Step      `json:"step"`
	StepName  string    `json:"step_name"`
	ProjectID string    `json:"project_id,omitempty"`
	Answers   Answers   `json:"answers"`
	Tabs      []Tab     `json:"tabs"`
	Pending   bool      `json:"generating"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is one wizard flow. All access goes through its mutex, so
// overlapping requests for the same session are serialized. The model is
// never shared with another session.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	owner   string
	state   *State
	seq     *Sequencer
	token   uint64
	pending *Ticket
}

func NewSession(id string, loader ProjectLoader) *Session {
	state := NewState()
	return &Session{
		ID:        id,
		CreatedAt: time.Now(),
		state:     state,
		seq:       NewSequencer(state, loader),
	}
}

// moved invalidates any outstanding generation.
func (s *Session) moved() {
	s.token++
	s.pending = nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	answers := s.state.Get()
	return View{
		ID:        s.ID,
		Step:      s.seq.Step(),
		StepName:  s.seq.Step().String(),
		ProjectID: s.seq.ProjectID(),
		Answers:   answers,
		Tabs:      answers.Documents.Tabs(),
		Pending:   s.pending != nil,
		CreatedAt: s.CreatedAt,
	}
}

func (s *Session) Answers() Answers {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Get()
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.Step()
}

func (s *Session) ProjectID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq.ProjectID()
}

// Owner is the user the session is bound to, empty while anonymous.
func (s *Session) Owner() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.owner
}

// Claim binds an anonymous session to userID. A session already bound to
// someone else is left untouched and Claim reports false.
func (s *Session) Claim(userID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.owner == "" {
		s.owner = userID
	}
	return s.owner == userID
}

func (s *Session) SetProjectID(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.SetProjectID(id)
}

func (s *Session) Enter(ctx context.Context, projectID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.moved()
	return s.seq.Enter(ctx, projectID)
}

func (s *Session) Advance(p Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.Advance(p); err != nil {
		return err
	}
	s.moved()
	return nil
}

func (s *Session) Back() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.seq.Back(); err != nil {
		return err
	}
	s.moved()
	return nil
}

func (s *Session) Restart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq.Restart()
	s.moved()
}

// BeginGeneration issues a ticket for the current answers. Only one ticket
// may be outstanding and only on the Final step.
func (s *Session) BeginGeneration() (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seq.Step() != Final {
		return Ticket{}, &ValidationError{Step: s.seq.Step(), Field: "step", Message: "documents can only be generated on the final step"}
	}
	if s.pending != nil {
		return Ticket{}, ErrGenerationInProgress
	}
	t := Ticket{Token: s.token, Answers: s.state.Get()}
	s.pending = &t
	return t, nil
}

// CompleteGeneration attaches docs if the ticket is still current.
func (s *Session) CompleteGeneration(t Ticket, docs DocumentSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil || s.token != t.Token {
		return ErrStaleGeneration
	}
	s.pending = nil
	s.state.AttachDocuments(docs)
	return nil
}

// AbortGeneration releases the ticket after a failed call. The answers
// and any previous documents are left as they were.
func (s *Session) AbortGeneration(t Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending != nil && s.token == t.Token {
		s.pending = nil
	}
}
