package wizard

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

type Step int

const (
	Step1 Step = iota + 1 // document selection
	Step2                 // identity
	Step3                 // data practices
	Step4                 // scope & language
	Step5                 // cookies
	Step6                 // review
	Final                 // generation
)

func (s Step) String() string {
	switch s {
	case Step1, Step2, Step3, Step4, Step5, Step6:
		return fmt.Sprintf("step-%d", int(s))
	case Final:
		return "final"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

type ProjectStatus string

const (
	ProjectStatusDraft ProjectStatus = "draft"
	ProjectStatusPaid  ProjectStatus = "paid"
)

// ProjectRecord is a persisted snapshot of Answers.
type ProjectRecord struct {
	ID        string
	OwnerID   string
	Name      string
	Status    ProjectStatus
	Answers   Answers
	CreatedAt time.Time
}

// ProjectLoader resolves a project id. Implementations return ErrNotFound
// when the id does not resolve.
type ProjectLoader interface {
	Get(ctx context.Context, id string) (*ProjectRecord, error)
}

// ProjectStore is the persistence adapter for projects.
type ProjectStore interface {
	ProjectLoader
	Create(ctx context.Context, ownerID string, answers Answers) (string, error)
	Update(ctx context.Context, id string, answers Answers) error
}

type guard func(candidate Answers, p Patch) error

// stepGuards holds the forward guard of every step. Steps without an entry
// advance unconditionally.
var stepGuards = map[Step]guard{
	Step1: guardDocumentSelection,
	Step2: guardProjectName,
	Step4: guardScope,
}

func guardDocumentSelection(candidate Answers, p Patch) error {
	if p.DocumentTypes != nil {
		if _, unknown := ResolveKinds(*p.DocumentTypes); len(unknown) > 0 {
			return &ValidationError{Step: Step1, Field: "documentType", Message: "unknown document kind " + strings.Join(unknown, ", ")}
		}
	}
	if len(candidate.DocumentTypes) == 0 {
		return &ValidationError{Step: Step1, Field: "documentType", Message: "select at least one document"}
	}
	return nil
}

func guardProjectName(candidate Answers, _ Patch) error {
	if strings.TrimSpace(candidate.ProjectName) == "" {
		return &ValidationError{Step: Step2, Field: "projectName", Message: "project name is required"}
	}
	return nil
}

// guardScope only rejects out-of-range enum values; the step itself is optional.
func guardScope(_ Answers, p Patch) error {
	if p.Jurisdiction != nil && !p.Jurisdiction.Valid() {
		return &ValidationError{Step: Step4, Field: "jurisdiction", Message: "unsupported jurisdiction " + string(*p.Jurisdiction)}
	}
	if p.Language != nil && !p.Language.Valid() {
		return &ValidationError{Step: Step4, Field: "language", Message: "unsupported language " + string(*p.Language)}
	}
	return nil
}

// Sequencer walks the fixed linear list of steps over a State.
type Sequencer struct {
	state     *State
	loader    ProjectLoader
	step      Step
	projectID string
}

func NewSequencer(state *State, loader ProjectLoader) *Sequencer {
	return &Sequencer{state: state, loader: loader, step: Step1}
}

func (q *Sequencer) Step() Step { return q.step }

func (q *Sequencer) ProjectID() string { return q.projectID }

// SetProjectID attaches the id of a freshly created project.
func (q *Sequencer) SetProjectID(id string) { q.projectID = id }

// Enter starts the flow at Step1. Without a project id the model is reset;
// with one it is hydrated from the loader. A failed hydration leaves the
// sequencer on Step1 in new project mode.
func (q *Sequencer) Enter(ctx context.Context, projectID string) error {
	q.step = Step1
	q.projectID = ""
	if projectID == "" {
		q.state.Reset()
		return nil
	}
	if q.loader == nil {
		q.state.Reset()
		return fmt.Errorf("%w: no project store configured", ErrUpstreamUnavailable)
	}

	record, err := q.loader.Get(ctx, projectID)
	if err != nil || record == nil {
		q.state.Reset()
		switch {
		case record == nil && err == nil, errors.Is(err, ErrNotFound):
			return fmt.Errorf("hydrate project %s: %w", projectID, ErrNotFound)
		case errors.Is(err, ErrUpstreamUnavailable):
			return fmt.Errorf("hydrate project %s: %w", projectID, err)
		default:
			return fmt.Errorf("hydrate project %s: %w: %v", projectID, ErrUpstreamUnavailable, err)
		}
	}

	q.state.Hydrate(record.Answers)
	q.projectID = record.ID
	return nil
}

// Advance validates the current step against the merged candidate and, only
// when it passes, commits the patch and moves forward.
func (q *Sequencer) Advance(p Patch) error {
	if q.step >= Final {
		return ErrTerminalStep
	}

	candidate := q.state.Get()
	p.apply(&candidate)
	if g, ok := stepGuards[q.step]; ok {
		if err := g(candidate, p); err != nil {
			return err
		}
	}

	q.state.Merge(p)
	q.step++
	return nil
}

// Back moves one step backwards without touching the answers.
func (q *Sequencer) Back() error {
	if q.step <= Step1 {
		return ErrFirstStep
	}
	q.step--
	return nil
}

// Restart drops the current answers and project id and returns to Step1.
func (q *Sequencer) Restart() {
	q.state.Reset()
	q.projectID = ""
	q.step = Step1
}
