package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"policygen/internal/constant"
	"policygen/internal/dto"
	"policygen/internal/pkg/logger"
	"policygen/internal/repository/memory"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/events"
	"policygen/pkg/export"
	"policygen/pkg/generation"
	"policygen/pkg/lock"
	"policygen/pkg/wizard"

	"github.com/google/uuid"
)

// DocumentGenerator turns a set of answers into reconciled documents.
type DocumentGenerator interface {
	Generate(ctx context.Context, answers wizard.Answers) (*generation.Result, error)
}

// GistPublisher creates a secret Gist holding one document.
type GistPublisher interface {
	Create(ctx context.Context, kind wizard.DocumentKind, content string) (string, error)
}

type IWizardService interface {
	Start(ctx context.Context, userID string, req *dto.StartSessionRequest) (*dto.SessionResponse, error)
	Get(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error)
	Next(ctx context.Context, userID, sessionID string, patch wizard.Patch) (*dto.SessionResponse, error)
	Back(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error)
	Restart(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error)
	Close(ctx context.Context, userID, sessionID string) error
	Generate(ctx context.Context, userID, sessionID string) (*dto.DocumentsResponse, error)
	Save(ctx context.Context, userID, sessionID string) (*dto.SaveProjectResponse, error)
	Documents(ctx context.Context, userID, sessionID string) (*dto.DocumentsResponse, error)
	Document(ctx context.Context, userID, sessionID, kind string) (wizard.DocumentKind, string, error)
	Archive(ctx context.Context, userID, sessionID string) (string, []byte, error)
	PublishGist(ctx context.Context, userID, sessionID, kind string) (*dto.GistResponse, error)
}

type wizardService struct {
	sessions         *memory.SessionRepository
	uowFactory       unitofwork.RepositoryFactory
	generator        DocumentGenerator
	locker           lock.Locker
	gist             GistPublisher
	publisherService IPublisherService
	eventPublisher   events.Publisher
	logger           logger.ILogger
	timeout          time.Duration
}

func NewWizardService(
	sessions *memory.SessionRepository,
	uowFactory unitofwork.RepositoryFactory,
	generator DocumentGenerator,
	locker lock.Locker,
	gist GistPublisher,
	publisherService IPublisherService,
	eventPublisher events.Publisher,
	logger logger.ILogger,
	timeout time.Duration,
) IWizardService {
	if eventPublisher == nil {
		eventPublisher = events.NopPublisher{}
	}
	if timeout <= 0 {
		timeout = generation.DefaultTimeout
	}
	return &wizardService{
		sessions:         sessions,
		uowFactory:       uowFactory,
		generator:        generator,
		locker:           locker,
		gist:             gist,
		publisherService: publisherService,
		eventPublisher:   eventPublisher,
		logger:           logger,
		timeout:          timeout,
	}
}

// guestLoader stands in for the project store of anonymous sessions.
type guestLoader struct{}

func (guestLoader) Get(context.Context, string) (*wizard.ProjectRecord, error) {
	return nil, wizard.ErrUnauthenticated
}

func (s *wizardService) Start(ctx context.Context, userID string, req *dto.StartSessionRequest) (*dto.SessionResponse, error) {
	projectID := ""
	if req != nil {
		projectID = req.ProjectId
	}
	if projectID != "" && userID == "" {
		return nil, fmt.Errorf("%w: loading a project", wizard.ErrUnauthenticated)
	}

	var loader wizard.ProjectLoader = guestLoader{}
	if userID != "" {
		store, err := NewProjectStore(s.uowFactory, userID)
		if err != nil {
			return nil, err
		}
		loader = store
	}

	session := wizard.NewSession(uuid.NewString(), loader)
	if userID != "" {
		session.Claim(userID)
	}
	notice := ""
	if err := session.Enter(ctx, projectID); err != nil {
		if !errors.Is(err, wizard.ErrNotFound) {
			return nil, err
		}
		// Unknown or foreign project: continue as a new one.
		s.logger.Warn("WIZARD", "Project not found, starting fresh", map[string]interface{}{
			"project_id": projectID,
			"user_id":    userID,
		})
		notice = constant.ProjectNotFoundNotice
	}
	s.sessions.Save(session)

	s.logger.Info("WIZARD", "Session started", map[string]interface{}{
		"session_id": session.ID,
		"project_id": projectID,
		"user_id":    userID,
	})
	res := sessionResponse(session)
	res.Notice = notice
	return res, nil
}

// session looks up a live session the caller may touch. Sessions are
// claimed by the first authenticated caller; anyone else sees them as
// missing.
func (s *wizardService) session(userID, sessionID string) (*wizard.Session, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", wizard.ErrSessionNotFound, sessionID)
	}
	if userID != "" {
		if !session.Claim(userID) {
			return nil, fmt.Errorf("%w: %s", wizard.ErrSessionNotFound, sessionID)
		}
	} else if session.Owner() != "" {
		return nil, fmt.Errorf("%w: %s", wizard.ErrSessionNotFound, sessionID)
	}
	s.sessions.Save(session)
	return session, nil
}

func (s *wizardService) Get(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return sessionResponse(session), nil
}

func (s *wizardService) Next(ctx context.Context, userID, sessionID string, patch wizard.Patch) (*dto.SessionResponse, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Advance(patch); err != nil {
		return nil, err
	}
	return sessionResponse(session), nil
}

func (s *wizardService) Back(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	if err := session.Back(); err != nil {
		return nil, err
	}
	return sessionResponse(session), nil
}

func (s *wizardService) Restart(ctx context.Context, userID, sessionID string) (*dto.SessionResponse, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	session.Restart()
	return sessionResponse(session), nil
}

// Close drops the session. A generation still running for it finishes
// against a session nobody can reach.
func (s *wizardService) Close(ctx context.Context, userID, sessionID string) error {
	if _, err := s.session(userID, sessionID); err != nil {
		return err
	}
	s.sessions.Delete(sessionID)
	s.logger.Info("WIZARD", "Session closed", map[string]interface{}{
		"session_id": sessionID,
		"user_id":    userID,
	})
	return nil
}

// Generate runs one generation for the session. The ticket keeps the
// response from landing on a session that moved on while it was running;
// the lock keeps a second replica from starting the same call.
func (s *wizardService) Generate(ctx context.Context, userID, sessionID string) (*dto.DocumentsResponse, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	ticket, err := session.BeginGeneration()
	if err != nil {
		return nil, err
	}

	release, err := s.locker.Acquire(ctx, constant.GenerationLockPrefix+session.ID, s.timeout+10*time.Second)
	if err != nil {
		session.AbortGeneration(ticket)
		if errors.Is(err, lock.ErrHeld) {
			return nil, wizard.ErrGenerationInProgress
		}
		return nil, fmt.Errorf("%w: %v", wizard.ErrUpstreamUnavailable, err)
	}

	start := time.Now()
	result, err := s.generator.Generate(ctx, ticket.Answers)
	release()

	event := events.GenerationEvent{
		SessionID:  session.ID,
		ProjectID:  session.ProjectID(),
		UserID:     userID,
		Kinds:      kindNames(generation.ResolveKinds(ticket.Answers.DocumentTypes)),
		DurationMs: time.Since(start).Milliseconds(),
		OccurredAt: time.Now(),
	}

	if err != nil {
		session.AbortGeneration(ticket)
		event.Type = events.TypeGenerationFailed
		event.Error = err.Error()
		s.emit(ctx, event)
		return nil, err
	}

	if err := session.CompleteGeneration(ticket, result.Documents); err != nil {
		event.Type = events.TypeGenerationDiscarded
		event.Error = err.Error()
		s.emit(ctx, event)
		return nil, err
	}

	event.Type = events.TypeGenerationCompleted
	s.emit(ctx, event)

	return documentsResponse(result.Documents), nil
}

func (s *wizardService) emit(ctx context.Context, event events.GenerationEvent) {
	if s.publisherService == nil {
		return
	}
	if err := s.publisherService.Publish(ctx, event); err != nil {
		s.logger.Warn("WIZARD", "Failed to publish generation event", map[string]interface{}{
			"session_id": event.SessionID,
			"type":       event.Type,
			"error":      err.Error(),
		})
	}
}

// Save creates a project for a new session, or replaces the answers of the
// project the session was loaded from.
func (s *wizardService) Save(ctx context.Context, userID, sessionID string) (*dto.SaveProjectResponse, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: saving a project", wizard.ErrUnauthenticated)
	}
	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}

	store, err := NewProjectStore(s.uowFactory, userID)
	if err != nil {
		return nil, err
	}

	answers := session.Answers()
	projectID := session.ProjectID()
	created := projectID == ""

	if created {
		projectID, err = store.Create(ctx, userID, answers)
		if err != nil {
			return nil, err
		}
		session.SetProjectID(projectID)
	} else if err := store.Update(ctx, projectID, answers); err != nil {
		return nil, err
	}

	if err := s.eventPublisher.Publish(ctx, events.NewProjectSaved(projectID, userID, created)); err != nil {
		s.logger.Warn("WIZARD", "Failed to publish project event", map[string]interface{}{
			"project_id": projectID,
			"error":      err.Error(),
		})
	}

	s.logger.Info("WIZARD", "Project saved", map[string]interface{}{
		"session_id": session.ID,
		"project_id": projectID,
		"created":    created,
	})
	return &dto.SaveProjectResponse{ProjectId: projectID, Created: created}, nil
}

func (s *wizardService) Documents(ctx context.Context, userID, sessionID string) (*dto.DocumentsResponse, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return nil, err
	}
	return documentsResponse(session.Answers().Documents), nil
}

func (s *wizardService) Document(ctx context.Context, userID, sessionID, kind string) (wizard.DocumentKind, string, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return "", "", err
	}
	k, err := parseKind(kind)
	if err != nil {
		return "", "", err
	}
	docs := session.Answers().Documents
	if !docs.Has(k) {
		return "", "", fmt.Errorf("%w: %s", wizard.ErrDocumentNotFound, k)
	}
	return k, docs[k], nil
}

// Archive zips every generated document of the session.
func (s *wizardService) Archive(ctx context.Context, userID, sessionID string) (string, []byte, error) {
	session, err := s.session(userID, sessionID)
	if err != nil {
		return "", nil, err
	}
	answers := session.Answers()
	data, err := export.Archive(answers.Documents, time.Now())
	if err != nil {
		return "", nil, err
	}
	return export.ArchiveName(answers.ProjectName), data, nil
}

func (s *wizardService) PublishGist(ctx context.Context, userID, sessionID, kind string) (*dto.GistResponse, error) {
	k, content, err := s.Document(ctx, userID, sessionID, kind)
	if err != nil {
		return nil, err
	}
	if s.gist == nil {
		return nil, fmt.Errorf("%w: gist export is not configured", wizard.ErrUpstreamUnavailable)
	}
	url, err := s.gist.Create(ctx, k, content)
	if err != nil {
		return nil, err
	}
	return &dto.GistResponse{Kind: k, HtmlURL: url}, nil
}

func parseKind(raw string) (wizard.DocumentKind, error) {
	k, ok := wizard.ParseDocumentKind(raw)
	if !ok {
		return "", &wizard.ValidationError{Field: "kind", Message: fmt.Sprintf("unknown document type %q", raw)}
	}
	return k, nil
}

func kindNames(kinds []wizard.DocumentKind) []string {
	names := make([]string, 0, len(kinds))
	for _, k := range kinds {
		names = append(names, string(k))
	}
	return names
}

func sessionResponse(session *wizard.Session) *dto.SessionResponse {
	view := session.View()
	res := &dto.SessionResponse{View: view}
	if len(view.Tabs) > 0 {
		active := view.Tabs[0]
		res.Active = &active
	}
	return res
}

func documentsResponse(docs wizard.DocumentSet) *dto.DocumentsResponse {
	tabs := docs.Tabs()
	res := &dto.DocumentsResponse{Tabs: tabs}
	if len(tabs) > 0 {
		active := tabs[0]
		res.Active = &active
	}
	return res
}
