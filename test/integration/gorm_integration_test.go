package integration

import (
	"context"
	"log"
	"os"
	"testing"
	"time"

	"policygen/internal/entity"
	"policygen/internal/model"
	"policygen/internal/repository/specification"
	"policygen/internal/repository/unitofwork"
	"policygen/pkg/database"
	"policygen/pkg/wizard"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormConnection(t *testing.T) {
	// Load .env from root
	err := godotenv.Load("../../.env")
	if err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, false)
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(model.All()...))

	sqlDB, _ := gormDB.DB()
	require.NoError(t, sqlDB.Ping())
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	uowFactory := unitofwork.NewRepositoryFactory(gormDB)

	user := &entity.User{
		Id:       uuid.New(),
		Email:    "integration-" + uuid.NewString() + "@example.com",
		FullName: "Integration Test User",
	}

	t.Run("Save Project In Transaction", func(t *testing.T) {
		uow := uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		defer func() { _ = uow.Rollback() }()

		require.NoError(t, uow.UserRepository().Create(ctx, user))
		project := &entity.Project{
			Id:     uuid.New(),
			UserId: user.Id,
			Name:   "Integration",
			Status: entity.ProjectStatusDraft,
			Answers: wizard.Answers{
				ProjectName:   "Integration",
				DocumentTypes: []wizard.DocumentKind{wizard.PrivacyPolicy},
			},
			Documents: wizard.DocumentSet{wizard.PrivacyPolicy: "# Privacy"},
			CreatedAt: time.Now(),
		}
		require.NoError(t, uow.ProjectRepository().Create(ctx, project))
		require.NoError(t, uow.Commit())

		found, err := uowFactory.NewUnitOfWork(ctx).ProjectRepository().FindOne(ctx,
			specification.ByID{ID: project.Id},
			specification.UserOwnedBy{UserID: user.Id},
		)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "# Privacy", found.Documents[wizard.PrivacyPolicy])

		require.NoError(t, uowFactory.NewUnitOfWork(ctx).ProjectRepository().Delete(ctx, project.Id))
	})

	t.Run("Record Generation Log", func(t *testing.T) {
		repo := uowFactory.NewUnitOfWork(ctx).GenerationLogRepository()
		sessionID := uuid.NewString()
		require.NoError(t, repo.Create(ctx, &entity.GenerationLog{
			Id:        uuid.New(),
			SessionId: sessionID,
			UserId:    &user.Id,
			Kinds:     []string{string(wizard.PrivacyPolicy)},
			Outcome:   entity.GenerationSucceeded,
			Duration:  time.Second,
			CreatedAt: time.Now(),
		}))

		logs, err := repo.FindAll(ctx, specification.BySessionID{SessionID: sessionID})
		require.NoError(t, err)
		assert.Len(t, logs, 1)
	})

	gormDB.Exec("DELETE FROM generation_logs WHERE user_id = ?", user.Id)
	gormDB.Exec("DELETE FROM projects WHERE user_id = ?", user.Id)
	gormDB.Exec("DELETE FROM users WHERE id = ?", user.Id)
}
