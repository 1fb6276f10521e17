package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLoader struct {
	records map[string]*ProjectRecord
	err     error
}

func (f *fakeLoader) Get(_ context.Context, id string) (*ProjectRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	r, ok := f.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	return r, nil
}

func newTestSequencer(loader ProjectLoader) (*Sequencer, *State) {
	state := NewState()
	return NewSequencer(state, loader), state
}

func TestSequencerGuards(t *testing.T) {
	t.Run("step1 rejects empty selection", func(t *testing.T) {
		q, _ := newTestSequencer(nil)
		err := q.Advance(Patch{DocumentTypes: &[]string{}})
		assert.True(t, IsValidation(err))
		assert.Equal(t, Step1, q.Step())
	})

	t.Run("step1 rejects missing selection", func(t *testing.T) {
		q, _ := newTestSequencer(nil)
		assert.True(t, IsValidation(q.Advance(Patch{})))
	})

	t.Run("step1 rejects unknown kinds", func(t *testing.T) {
		q, state := newTestSequencer(nil)
		err := q.Advance(Patch{DocumentTypes: &[]string{"privacy_policy", "NDA"}})
		require.Error(t, err)
		var v *ValidationError
		require.ErrorAs(t, err, &v)
		assert.Equal(t, "documentType", v.Field)
		assert.Empty(t, state.Get().DocumentTypes)
	})

	t.Run("step1 accepts exactly one kind", func(t *testing.T) {
		q, state := newTestSequencer(nil)
		require.NoError(t, q.Advance(Patch{DocumentTypes: &[]string{"Política de Privacidade"}}))
		assert.Equal(t, Step2, q.Step())
		assert.Equal(t, []DocumentKind{PrivacyPolicy}, state.Get().DocumentTypes)
	})

	t.Run("step2 rejects blank project name", func(t *testing.T) {
		q, _ := newTestSequencer(nil)
		require.NoError(t, q.Advance(Patch{DocumentTypes: &[]string{"terms_of_use"}}))

		assert.True(t, IsValidation(q.Advance(Patch{ProjectName: strPtr("   ")})))
		assert.True(t, IsValidation(q.Advance(Patch{})))
		assert.Equal(t, Step2, q.Step())
	})

	t.Run("step2 accepts a name", func(t *testing.T) {
		q, _ := newTestSequencer(nil)
		require.NoError(t, q.Advance(Patch{DocumentTypes: &[]string{"terms_of_use"}}))
		require.NoError(t, q.Advance(Patch{ProjectName: strPtr("Acme")}))
		assert.Equal(t, Step3, q.Step())
	})

	t.Run("step4 rejects unsupported jurisdiction", func(t *testing.T) {
		q, _ := newTestSequencer(nil)
		walkTo(t, q, Step4)
		j := Jurisdiction("global")
		assert.True(t, IsValidation(q.Advance(Patch{Jurisdiction: &j})))
		assert.Equal(t, Step4, q.Step())
	})
}

// walkTo advances a fresh sequencer to target with minimal valid input.
func walkTo(t *testing.T, q *Sequencer, target Step) {
	t.Helper()
	for q.Step() < target {
		var p Patch
		switch q.Step() {
		case Step1:
			p.DocumentTypes = &[]string{"privacy_policy"}
		case Step2:
			p.ProjectName = strPtr("Acme")
		}
		require.NoError(t, q.Advance(p))
	}
}

func TestSequencerFullWalkAndTerminal(t *testing.T) {
	q, _ := newTestSequencer(nil)
	walkTo(t, q, Final)

	assert.Equal(t, Final, q.Step())
	assert.ErrorIs(t, q.Advance(Patch{}), ErrTerminalStep)
}

func TestSequencerBackKeepsData(t *testing.T) {
	q, state := newTestSequencer(nil)
	walkTo(t, q, Step3)

	require.NoError(t, q.Back())
	require.NoError(t, q.Back())
	assert.Equal(t, Step1, q.Step())
	assert.ErrorIs(t, q.Back(), ErrFirstStep)

	got := state.Get()
	assert.Equal(t, "Acme", got.ProjectName)
	assert.Equal(t, []DocumentKind{PrivacyPolicy}, got.DocumentTypes)
}

func TestSequencerFailedAdvanceIsAtomic(t *testing.T) {
	q, state := newTestSequencer(nil)
	walkTo(t, q, Step2)

	err := q.Advance(Patch{ProjectName: strPtr(""), BrandName: strPtr("Brand")})
	require.Error(t, err)
	assert.Equal(t, "", state.Get().BrandName)
}

func TestSequencerEnter(t *testing.T) {
	stored := DefaultAnswers()
	stored.ProjectName = "Stored"
	stored.DocumentTypes = []DocumentKind{CookiePolicy}
	loader := &fakeLoader{records: map[string]*ProjectRecord{
		"p1": {ID: "p1", Name: "Stored", Status: ProjectStatusDraft, Answers: stored, CreatedAt: time.Now()},
	}}

	t.Run("no id resets stale data", func(t *testing.T) {
		q, state := newTestSequencer(loader)
		state.Merge(Patch{ProjectName: strPtr("stale")})
		require.NoError(t, q.Enter(context.Background(), ""))
		assert.Equal(t, DefaultAnswers(), state.Get())
		assert.Equal(t, Step1, q.Step())
		assert.Empty(t, q.ProjectID())
	})

	t.Run("id hydrates", func(t *testing.T) {
		q, state := newTestSequencer(loader)
		require.NoError(t, q.Enter(context.Background(), "p1"))
		assert.Equal(t, "Stored", state.Get().ProjectName)
		assert.Equal(t, "p1", q.ProjectID())
		assert.Equal(t, Step1, q.Step())
	})

	t.Run("project id survives navigation", func(t *testing.T) {
		q, _ := newTestSequencer(loader)
		require.NoError(t, q.Enter(context.Background(), "p1"))
		require.NoError(t, q.Advance(Patch{}))
		require.NoError(t, q.Advance(Patch{}))
		require.NoError(t, q.Back())
		assert.Equal(t, "p1", q.ProjectID())
	})

	t.Run("unknown id falls back to new project", func(t *testing.T) {
		q, state := newTestSequencer(loader)
		state.Merge(Patch{ProjectName: strPtr("half")})
		err := q.Enter(context.Background(), "missing")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Equal(t, DefaultAnswers(), state.Get())
		assert.Empty(t, q.ProjectID())
		assert.Equal(t, Step1, q.Step())
	})

	t.Run("adapter failure is upstream unavailable", func(t *testing.T) {
		q, _ := newTestSequencer(&fakeLoader{err: errors.New("connection refused")})
		err := q.Enter(context.Background(), "p1")
		assert.ErrorIs(t, err, ErrUpstreamUnavailable)
		assert.Empty(t, q.ProjectID())
	})
}

func TestSequencerRestart(t *testing.T) {
	q, state := newTestSequencer(nil)
	walkTo(t, q, Final)
	q.SetProjectID("p9")

	q.Restart()

	assert.Equal(t, Step1, q.Step())
	assert.Empty(t, q.ProjectID())
	assert.Equal(t, DefaultAnswers(), state.Get())
}
