package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/policy-digest-api/internal/models"
	"github.com/noah-isme/policy-digest-api/internal/seed"
)

func intPtr(v int) *int { return &v }

func TestCompareTrend(t *testing.T) {
	assert.Nil(t, CompareTrend(78, nil))

	up := CompareTrend(78, intPtr(65))
	require.NotNil(t, up)
	assert.Equal(t, TrendUp, *up)

	same := CompareTrend(65, intPtr(65))
	require.NotNil(t, same)
	assert.Equal(t, TrendSame, *same)

	down := CompareTrend(42, intPtr(65))
	require.NotNil(t, down)
	assert.Equal(t, TrendDown, *down)

	zero := CompareTrend(10, intPtr(0))
	require.NotNil(t, zero)
	assert.Equal(t, TrendUp, *zero)
}

func TestVersionTrendsForSeedHistory(t *testing.T) {
	trends := VersionTrends(seed.Versions())
	require.Len(t, trends, 3)
	require.NotNil(t, trends[0])
	require.NotNil(t, trends[1])
	assert.Equal(t, TrendUp, *trends[0])
	assert.Equal(t, TrendUp, *trends[1])
	assert.Nil(t, trends[2])

	assert.Empty(t, VersionTrends(nil))
}

func TestTotalModifications(t *testing.T) {
	assert.Equal(t, 16, TotalModifications(seed.Versions()))
	assert.Equal(t, 0, TotalModifications([]models.DocumentVersion{}))
}
