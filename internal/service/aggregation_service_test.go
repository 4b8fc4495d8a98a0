package service

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func testRedis(t *testing.T) *redis.Client {
	t.Helper()
	server, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(server.Close)

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() { client.Close() })
	return client
}

func TestAggregationServiceAccumulatesSets(t *testing.T) {
	svc := NewAggregationService(testRedis(t), testLogger())
	ctx := context.Background()

	require.NoError(t, svc.UpdateHackathonData(ctx, 1, []string{"devops"}, []string{"solar"}))
	require.NoError(t, svc.UpdateHackathonData(ctx, 1, []string{"devops", "design"}, []string{"solar", "iot"}))

	insights, err := svc.Insights(ctx, 1)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"devops", "design"}, insights.SkillGaps)
	require.ElementsMatch(t, []string{"solar", "iot"}, insights.Keywords)
}

func TestAggregationServiceKeysAreScopedPerHackathon(t *testing.T) {
	svc := NewAggregationService(testRedis(t), testLogger())
	ctx := context.Background()

	require.NoError(t, svc.UpdateHackathonData(ctx, 1, []string{"devops"}, nil))
	require.NoError(t, svc.UpdateHackathonData(ctx, 2, []string{"design"}, nil))

	insights, err := svc.Insights(ctx, 2)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"design"}, insights.SkillGaps)
	require.Empty(t, insights.Keywords)
}

func TestAggregationServiceNilClientIsNoop(t *testing.T) {
	svc := NewAggregationService(nil, testLogger())
	ctx := context.Background()

	require.NoError(t, svc.UpdateHackathonData(ctx, 1, []string{"devops"}, []string{"iot"}))

	insights, err := svc.Insights(ctx, 1)
	require.NoError(t, err)
	require.Empty(t, insights.SkillGaps)
	require.Empty(t, insights.Keywords)
}
