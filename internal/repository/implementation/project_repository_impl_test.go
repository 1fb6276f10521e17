package implementation

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"policygen/internal/entity"
	"policygen/internal/model"
	"policygen/internal/repository/specification"
	"policygen/pkg/wizard"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// Every connection to :memory: is a fresh database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Project{}, &model.GenerationLog{}))
	return db
}

func sampleAnswers(name string) wizard.Answers {
	a := wizard.DefaultAnswers()
	a.ProjectName = name
	a.ProjectURLs = wizard.URLList{"https://acme.test"}
	a.DocumentTypes = []wizard.DocumentKind{wizard.PrivacyPolicy}
	return a
}

func TestProjectRepositoryRoundTrip(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()

	p := &entity.Project{
		UserId:    owner,
		Name:      "Acme",
		Answers:   sampleAnswers("Acme"),
		Documents: wizard.DocumentSet{wizard.PrivacyPolicy: "# P"},
	}
	require.NoError(t, repo.Create(ctx, p))
	require.NotEqual(t, uuid.Nil, p.Id)
	assert.Equal(t, entity.ProjectStatusDraft, p.Status)

	got, err := repo.FindOne(ctx, specification.ByID{ID: p.Id}, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Acme", got.Answers.ProjectName)
	assert.Equal(t, wizard.URLList{"https://acme.test"}, got.Answers.ProjectURLs)
	assert.Equal(t, "# P", got.Documents[wizard.PrivacyPolicy])
	assert.Equal(t, "# P", got.Answers.Documents[wizard.PrivacyPolicy])
}

func TestProjectRepositoryOwnerScope(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))
	ctx := context.Background()

	p := &entity.Project{UserId: uuid.New(), Name: "Acme", Answers: sampleAnswers("Acme")}
	require.NoError(t, repo.Create(ctx, p))

	got, err := repo.FindOne(ctx, specification.ByID{ID: p.Id}, specification.UserOwnedBy{UserID: uuid.New()})
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestProjectRepositoryListNewestFirst(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))
	ctx := context.Background()
	owner := uuid.New()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, name := range []string{"old", "mid", "new"} {
		p := &entity.Project{
			UserId:    owner,
			Name:      name,
			Answers:   sampleAnswers(name),
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, repo.Create(ctx, p))
	}
	require.NoError(t, repo.Create(ctx, &entity.Project{UserId: uuid.New(), Name: "other", Answers: sampleAnswers("other")}))

	list, err := repo.FindAll(ctx,
		specification.UserOwnedBy{UserID: owner},
		specification.OrderBy{Field: "created_at", Desc: true},
	)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "new", list[0].Name)
	assert.Equal(t, "old", list[2].Name)

	count, err := repo.Count(ctx, specification.UserOwnedBy{UserID: owner})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestProjectRepositoryUpdate(t *testing.T) {
	repo := NewProjectRepository(newTestDB(t))
	ctx := context.Background()

	p := &entity.Project{UserId: uuid.New(), Name: "Acme", Answers: sampleAnswers("Acme")}
	require.NoError(t, repo.Create(ctx, p))

	p.Answers.ProjectName = "Acme Two"
	p.Answers.ProjectURLs = wizard.URLList{}
	p.Name = "Acme Two"
	require.NoError(t, repo.Update(ctx, p))

	got, err := repo.FindOne(ctx, specification.ByID{ID: p.Id})
	require.NoError(t, err)
	assert.Equal(t, "Acme Two", got.Answers.ProjectName)
	assert.Empty(t, got.Answers.ProjectURLs)
}

func TestGenerationLogRepository(t *testing.T) {
	repo := NewGenerationLogRepository(newTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, &entity.GenerationLog{
		SessionId: "s1",
		Kinds:     []string{"privacy_policy", "terms_of_use"},
		Outcome:   entity.GenerationSucceeded,
		Duration:  1500 * time.Millisecond,
	}))

	logs, err := repo.FindAll(ctx, specification.BySessionID{SessionID: "s1"})
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, []string{"privacy_policy", "terms_of_use"}, logs[0].Kinds)
	assert.Equal(t, 1500*time.Millisecond, logs[0].Duration)
}
