package service

import (
	"archive/zip"
	"bytes"
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"policygen/internal/constant"
	"policygen/internal/dto"
	"policygen/internal/model"
	"policygen/internal/pkg/logger"
	"policygen/internal/repository/memory"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/events"
	"policygen/pkg/generation"
	"policygen/pkg/lock"
	"policygen/pkg/wizard"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.All()...))
	return db
}

type fakeGenerator struct {
	mu      sync.Mutex
	calls   int
	result  *generation.Result
	err     error
	started chan struct{}
	unblock chan struct{}
}

func (f *fakeGenerator) Generate(ctx context.Context, answers wizard.Answers) (*generation.Result, error) {
	f.mu.Lock()
	f.calls++
	started, unblock := f.started, f.unblock
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if unblock != nil {
		<-unblock
	}
	return f.result, f.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.GenerationEvent
}

func (r *recordingPublisher) Publish(_ context.Context, event events.GenerationEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

func (r *recordingPublisher) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type recordingBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingBus) Publish(_ context.Context, event events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

type fakeGist struct {
	kind    wizard.DocumentKind
	content string
}

func (f *fakeGist) Create(_ context.Context, kind wizard.DocumentKind, content string) (string, error) {
	f.kind, f.content = kind, content
	return "https://gist.github.com/abc", nil
}

type wizardFixture struct {
	svc       IWizardService
	generator *fakeGenerator
	locker    *lock.MemoryLocker
	published *recordingPublisher
	bus       *recordingBus
	gist      *fakeGist
	uow       unitofwork.RepositoryFactory
}

func newWizardFixture(t *testing.T) *wizardFixture {
	t.Helper()
	f := &wizardFixture{
		generator: &fakeGenerator{result: privacyResult("# Privacy")},
		locker:    lock.NewMemoryLocker(),
		published: &recordingPublisher{},
		bus:       &recordingBus{},
		gist:      &fakeGist{},
		uow:       unitofwork.NewRepositoryFactory(newTestDB(t)),
	}
	f.svc = NewWizardService(
		memory.NewSessionRepository(time.Hour),
		f.uow,
		f.generator,
		f.locker,
		f.gist,
		f.published,
		f.bus,
		logger.NewNopLogger(),
		time.Second,
	)
	return f
}

func privacyResult(content string) *generation.Result {
	docs := wizard.DocumentSet{
		wizard.PrivacyPolicy: content,
		wizard.TermsOfUse:    "",
		wizard.CookiePolicy:  "",
	}
	return &generation.Result{Documents: docs, Tabs: docs.Tabs()}
}

func strPtr(s string) *string { return &s }

// walkToFinal drives a session through every step with valid answers.
func walkToFinal(t *testing.T, f *wizardFixture, userID, sessionID string) {
	t.Helper()
	ctx := context.Background()
	_, err := f.svc.Next(ctx, userID, sessionID, wizard.Patch{DocumentTypes: &[]string{"Política de Privacidade"}})
	require.NoError(t, err)
	_, err = f.svc.Next(ctx, userID, sessionID, wizard.Patch{ProjectName: strPtr("Acme")})
	require.NoError(t, err)
	for i := 0; i < 4; i++ {
		_, err = f.svc.Next(ctx, userID, sessionID, wizard.Patch{})
		require.NoError(t, err)
	}
}

func startSession(t *testing.T, f *wizardFixture, userID string) string {
	t.Helper()
	res, err := f.svc.Start(context.Background(), userID, &dto.StartSessionRequest{})
	require.NoError(t, err)
	assert.Equal(t, wizard.Step1, res.Step)
	return res.ID
}

func TestWizardGenerateAttachesDocuments(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	id := startSession(t, f, "")
	walkToFinal(t, f, "", id)

	res, err := f.svc.Generate(ctx, "", id)
	require.NoError(t, err)
	require.Len(t, res.Tabs, 1)
	require.NotNil(t, res.Active)
	assert.Equal(t, wizard.PrivacyPolicy, res.Active.Kind)

	view, err := f.svc.Get(ctx, "", id)
	require.NoError(t, err)
	assert.Equal(t, "# Privacy", view.Answers.Documents[wizard.PrivacyPolicy])
	assert.False(t, view.Pending)

	assert.Equal(t, []string{events.TypeGenerationCompleted}, f.published.types())
	assert.Equal(t, []string{"privacy_policy"}, f.published.events[0].Kinds)
}

func TestWizardGenerateOffFinalStepIsValidation(t *testing.T) {
	f := newWizardFixture(t)
	id := startSession(t, f, "")

	_, err := f.svc.Generate(context.Background(), "", id)
	assert.True(t, wizard.IsValidation(err))
	assert.Zero(t, f.generator.calls)
}

func TestWizardRejectsSecondGenerate(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	id := startSession(t, f, "")
	walkToFinal(t, f, "", id)

	f.generator.started = make(chan struct{}, 1)
	f.generator.unblock = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Generate(ctx, "", id)
		done <- err
	}()
	<-f.generator.started

	_, err := f.svc.Generate(ctx, "", id)
	assert.ErrorIs(t, err, wizard.ErrGenerationInProgress)

	close(f.generator.unblock)
	require.NoError(t, <-done)
	assert.Equal(t, 1, f.generator.calls)
}

func TestWizardGenerateRespectsHeldLock(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	id := startSession(t, f, "")
	walkToFinal(t, f, "", id)

	release, err := f.locker.Acquire(ctx, constant.GenerationLockPrefix+id, time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Generate(ctx, "", id)
	assert.ErrorIs(t, err, wizard.ErrGenerationInProgress)
	assert.Zero(t, f.generator.calls)

	// The ticket was handed back, so the next attempt goes through.
	release()
	_, err = f.svc.Generate(ctx, "", id)
	assert.NoError(t, err)
}

func TestWizardDiscardsResponseAfterRestart(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	id := startSession(t, f, "")
	walkToFinal(t, f, "", id)

	f.generator.started = make(chan struct{}, 1)
	f.generator.unblock = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := f.svc.Generate(ctx, "", id)
		done <- err
	}()
	<-f.generator.started

	_, err := f.svc.Restart(ctx, "", id)
	require.NoError(t, err)
	close(f.generator.unblock)

	assert.ErrorIs(t, <-done, wizard.ErrStaleGeneration)

	view, err := f.svc.Get(ctx, "", id)
	require.NoError(t, err)
	assert.Empty(t, view.Tabs)
	assert.Equal(t, wizard.Step1, view.Step)
	assert.Equal(t, []string{events.TypeGenerationDiscarded}, f.published.types())
}

func TestWizardGenerateFailureKeepsPreviousDocuments(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	id := startSession(t, f, "")
	walkToFinal(t, f, "", id)

	_, err := f.svc.Generate(ctx, "", id)
	require.NoError(t, err)

	f.generator.result = nil
	f.generator.err = generation.ErrMalformedResponse
	_, err = f.svc.Generate(ctx, "", id)
	assert.ErrorIs(t, err, generation.ErrMalformedResponse)

	docs, err := f.svc.Documents(ctx, "", id)
	require.NoError(t, err)
	require.Len(t, docs.Tabs, 1)
	assert.Equal(t, "# Privacy", docs.Tabs[0].Content)
	assert.Equal(t, []string{events.TypeGenerationCompleted, events.TypeGenerationFailed}, f.published.types())
}

func TestWizardSaveRequiresAuthentication(t *testing.T) {
	f := newWizardFixture(t)
	id := startSession(t, f, "")

	_, err := f.svc.Save(context.Background(), "", id)
	assert.ErrorIs(t, err, wizard.ErrUnauthenticated)
}

func TestWizardSaveCreatesThenUpdates(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	user := uuid.NewString()

	// Anonymous session claimed on the first authenticated call.
	id := startSession(t, f, "")
	walkToFinal(t, f, "", id)

	first, err := f.svc.Save(ctx, user, id)
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.NotEmpty(t, first.ProjectId)

	_, err = f.svc.Generate(ctx, user, id)
	require.NoError(t, err)

	second, err := f.svc.Save(ctx, user, id)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, first.ProjectId, second.ProjectId)

	projects := NewProjectService(f.uow)
	list, err := projects.GetAll(ctx, uuid.MustParse(user), &dto.GetAllProjectRequest{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Acme", list[0].Name)
	assert.Equal(t, []string{"privacy_policy"}, list[0].Documents)

	paid, err := projects.GetAll(ctx, uuid.MustParse(user), &dto.GetAllProjectRequest{Status: "paid"})
	require.NoError(t, err)
	assert.Empty(t, paid)

	require.Len(t, f.bus.events, 2)
	assert.Equal(t, events.TypeProjectSaved, f.bus.events[0].EventType())
	assert.Equal(t, true, f.bus.events[0].Payload()["created"])
	assert.Equal(t, false, f.bus.events[1].Payload()["created"])

	// Once claimed, the session is invisible to everyone else.
	_, err = f.svc.Get(ctx, "", id)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
	_, err = f.svc.Get(ctx, uuid.NewString(), id)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
}

func TestWizardStartHydratesOwnProjectOnly(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	owner := uuid.NewString()

	id := startSession(t, f, owner)
	walkToFinal(t, f, owner, id)
	saved, err := f.svc.Save(ctx, owner, id)
	require.NoError(t, err)

	_, err = f.svc.Start(ctx, "", &dto.StartSessionRequest{ProjectId: saved.ProjectId})
	assert.ErrorIs(t, err, wizard.ErrUnauthenticated)

	stranger, err := f.svc.Start(ctx, uuid.NewString(), &dto.StartSessionRequest{ProjectId: saved.ProjectId})
	require.NoError(t, err)
	assert.Empty(t, stranger.ProjectID)
	assert.Empty(t, stranger.Answers.ProjectName)
	assert.NotEmpty(t, stranger.Notice)

	res, err := f.svc.Start(ctx, owner, &dto.StartSessionRequest{ProjectId: saved.ProjectId})
	require.NoError(t, err)
	assert.Equal(t, saved.ProjectId, res.ProjectID)
	assert.Equal(t, wizard.Step1, res.Step)
	assert.Equal(t, "Acme", res.Answers.ProjectName)
}

func TestWizardUnknownSession(t *testing.T) {
	f := newWizardFixture(t)
	_, err := f.svc.Back(context.Background(), "", "missing")
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
}

func TestWizardCloseDropsSession(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	owner := uuid.NewString()
	id := startSession(t, f, owner)

	assert.ErrorIs(t, f.svc.Close(ctx, uuid.NewString(), id), wizard.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.Close(ctx, "", id), wizard.ErrSessionNotFound)

	require.NoError(t, f.svc.Close(ctx, owner, id))
	_, err := f.svc.Get(ctx, owner, id)
	assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
}

func TestWizardConcurrentClaimAdmitsOneUser(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()

	for i := 0; i < 200; i++ {
		id := startSession(t, f, "")
		users := []string{uuid.NewString(), uuid.NewString()}

		var (
			wg      sync.WaitGroup
			mu      sync.Mutex
			granted []string
		)
		start := make(chan struct{})
		for _, u := range users {
			wg.Add(1)
			go func(userID string) {
				defer wg.Done()
				<-start
				if _, err := f.svc.Get(ctx, userID, id); err == nil {
					mu.Lock()
					granted = append(granted, userID)
					mu.Unlock()
				} else {
					assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
				}
			}(u)
		}
		close(start)
		wg.Wait()

		require.Len(t, granted, 1, "trial %d", i)
		_, err := f.svc.Get(ctx, "", id)
		assert.ErrorIs(t, err, wizard.ErrSessionNotFound)
	}
}

func TestWizardExports(t *testing.T) {
	f := newWizardFixture(t)
	ctx := context.Background()
	id := startSession(t, f, "")
	walkToFinal(t, f, "", id)

	_, _, err := f.svc.Archive(ctx, "", id)
	assert.ErrorIs(t, err, wizard.ErrDocumentNotFound)

	_, err = f.svc.Generate(ctx, "", id)
	require.NoError(t, err)

	kind, content, err := f.svc.Document(ctx, "", id, "Privacy Policy")
	require.NoError(t, err)
	assert.Equal(t, wizard.PrivacyPolicy, kind)
	assert.Equal(t, "# Privacy", content)

	_, _, err = f.svc.Document(ctx, "", id, "cookie_policy")
	assert.ErrorIs(t, err, wizard.ErrDocumentNotFound)

	_, _, err = f.svc.Document(ctx, "", id, "novel")
	assert.True(t, wizard.IsValidation(err))

	name, data, err := f.svc.Archive(ctx, "", id)
	require.NoError(t, err)
	assert.Equal(t, "policygen-acme.zip", name)
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 1)
	assert.Equal(t, "privacy_policy.md", zr.File[0].Name)

	gist, err := f.svc.PublishGist(ctx, "", id, "privacy_policy")
	require.NoError(t, err)
	assert.Equal(t, "https://gist.github.com/abc", gist.HtmlURL)
	assert.Equal(t, "# Privacy", f.gist.content)
}
