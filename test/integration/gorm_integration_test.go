package integration

import (
	"context"
	"log"
	"os"
	"testing"

	"bpmn-interview-be/internal/entity"
	"bpmn-interview-be/internal/model"
	"bpmn-interview-be/internal/repository/scope"
	"bpmn-interview-be/internal/repository/specification"
	"bpmn-interview-be/internal/repository/unitofwork"
	"bpmn-interview-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBpmnGenerationRepository(t *testing.T) {
	// Load .env from root
	if err := godotenv.Load("../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	gormDB, err := database.NewGormDBFromDSN(dsn, database.Options{})
	require.NoError(t, err)
	require.NoError(t, gormDB.AutoMigrate(&model.BpmnGeneration{}))

	factory := unitofwork.NewRepositoryFactory(gormDB)
	ctx := context.Background()

	// Unique per run so parallel runs do not see each other's rows.
	processType := "integration-" + uuid.NewString()
	t.Cleanup(func() {
		gormDB.Where("process_type = ?", processType).Delete(&model.BpmnGeneration{})
	})

	t.Run("Commit persists the row", func(t *testing.T) {
		uow := factory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))

		g := &entity.BpmnGeneration{
			ProcessType: processType,
			AiModel:     "gpt-5.2",
			ChatHistory: []entity.ChatEntry{
				{Role: "assistant", Content: "How does the process start?", Title: "Process start and trigger"},
				{Role: "user", Content: "A department head reports a vacancy."},
			},
			InterviewSummary:          "Vacancy is reported, owner publishes a job ad.",
			BpmnXml:                   `<definitions xmlns="http://www.omg.org/spec/BPMN/20100524/MODEL"/>`,
			GenerationDurationSeconds: 12.5,
		}
		require.NoError(t, uow.BpmnGenerationRepository().Create(ctx, g))
		require.NoError(t, uow.Commit())
		assert.NotZero(t, g.Id)

		found, err := factory.NewUnitOfWork(ctx).BpmnGenerationRepository().FindOne(ctx, specification.ByID{ID: g.Id})
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, processType, found.ProcessType)
		assert.Len(t, found.ChatHistory, 2)
		assert.Equal(t, "Process start and trigger", found.ChatHistory[0].Title)
		assert.Contains(t, found.BpmnXml, "definitions")
	})

	t.Run("Rollback discards the row", func(t *testing.T) {
		uow := factory.NewUnitOfWork(ctx)
		require.NoError(t, uow.Begin(ctx))
		require.NoError(t, uow.BpmnGenerationRepository().Create(ctx, &entity.BpmnGeneration{
			ProcessType: processType,
			AiModel:     "rolled-back",
		}))
		require.NoError(t, uow.Rollback())

		count, err := factory.NewUnitOfWork(ctx).BpmnGenerationRepository().Count(ctx, specification.ByProcessType{ProcessType: processType})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("List omits the model and Stats aggregates", func(t *testing.T) {
		repo := factory.NewUnitOfWork(ctx).BpmnGenerationRepository()

		list, err := repo.FindAll(ctx,
			specification.OmitXML{},
			specification.Scoped(scope.OrderByCreatedDesc),
			specification.Scoped(scope.Limit(10)),
			specification.ByProcessType{ProcessType: processType},
		)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Empty(t, list[0].BpmnXml)

		stats, err := repo.Stats(ctx)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, stats.Total, int64(1))
		assert.NotNil(t, stats.LastGeneration)
	})
}
