package redisstore

import (
	"context"
	"os"
	"testing"
	"time"

	"bpmn-interview-be/internal/repository/contract"
	"bpmn-interview-be/pkg/interview"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	var s interview.Session
	normalize(&s)

	assert.NotNil(t, s.History)
	assert.NotNil(t, s.Answers)
	assert.NotNil(t, s.TopicsCompleted)
	assert.NotNil(t, s.Transcript)
}

func TestSessionRepositoryRoundTrip(t *testing.T) {
	url := os.Getenv("REDIS_TEST_URL")
	if url == "" {
		t.Skip("Skipping redis test: REDIS_TEST_URL not set")
	}
	opt, err := redis.ParseURL(url)
	require.NoError(t, err)
	rdb := redis.NewClient(opt)
	defer rdb.Close()

	ctx := context.Background()
	repo := NewSessionRepository(rdb, time.Minute)

	s := interview.NewSession(uuid.NewString())
	s.ProcessType = "Personalmanagement"
	s.Answers["start"] = "A vacancy is reported."
	require.NoError(t, repo.Save(ctx, s))

	got, err := repo.Get(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Personalmanagement", got.ProcessType)
	assert.Equal(t, "A vacancy is reported.", got.Answers["start"])

	require.NoError(t, repo.Delete(ctx, s.ID))
	_, err = repo.Get(ctx, s.ID)
	assert.ErrorIs(t, err, contract.ErrSessionNotFound)
}
