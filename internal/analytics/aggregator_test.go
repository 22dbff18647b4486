package analytics

import (
	"Shortly-Backend/internal/domain"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/repository/memory"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func strp(s string) *string { return &s }

func appendClick(t *testing.T, storage *memory.MemStorage, ev *domain.ClickEvent) {
	t.Helper()
	require.NoError(t, storage.AppendClick(context.Background(), ev))
}

func TestAggregate_NotFound(t *testing.T) {
	agg := NewAggregator(memory.New(), zap.NewNop())

	_, err := agg.Aggregate(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrCodeNotFound)
}

func TestAggregate_ZeroClicks(t *testing.T) {
	storage := memory.New()
	saveLink(t, storage, "empty11")
	agg := NewAggregator(storage, zap.NewNop())

	report, err := agg.Aggregate(context.Background(), "empty11")
	require.NoError(t, err)

	assert.Equal(t, int64(0), report.TotalClicks)
	assert.Equal(t, int64(0), report.UniqueVisitors)
	assert.Nil(t, report.FirstClick)
	assert.Nil(t, report.LastClick)
	assert.Empty(t, report.ClicksByDay)
	assert.Empty(t, report.TopCountries)
	assert.Empty(t, report.Devices)
	assert.Nil(t, report.VariantSplit)
}

func TestAggregate_ExpiredLinkStillReports(t *testing.T) {
	storage := memory.New()
	past := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, storage.SaveLink(context.Background(), &domain.ShortLink{
		Code:        "gone111",
		Destination: "https://a.test",
		ExpiresAt:   &past,
	}))
	appendClick(t, storage, &domain.ClickEvent{
		ShortLinkCode: "gone111",
		ClickedAt:     past.Add(-time.Hour),
		ClientID:      "c1",
	})

	agg := NewAggregator(storage, zap.NewNop())
	report, err := agg.Aggregate(context.Background(), "gone111")
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.TotalClicks)
}

func TestAggregate_CountsAndTimestamps(t *testing.T) {
	storage := memory.New()
	saveLink(t, storage, "stats11")
	agg := NewAggregator(storage, zap.NewNop())

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	appendClick(t, storage, &domain.ClickEvent{ShortLinkCode: "stats11", ClickedAt: day2, ClientID: "c1", Device: strp("mobile")})
	appendClick(t, storage, &domain.ClickEvent{ShortLinkCode: "stats11", ClickedAt: day1, ClientID: "c1", Device: strp("mobile")})
	appendClick(t, storage, &domain.ClickEvent{ShortLinkCode: "stats11", ClickedAt: day1.Add(time.Hour), ClientID: "c2", Device: strp("desktop")})

	report, err := agg.Aggregate(context.Background(), "stats11")
	require.NoError(t, err)

	assert.Equal(t, int64(3), report.TotalClicks)
	assert.Equal(t, int64(2), report.UniqueVisitors)
	require.NotNil(t, report.FirstClick)
	require.NotNil(t, report.LastClick)
	assert.Equal(t, day1, *report.FirstClick)
	assert.Equal(t, day2, *report.LastClick)

	// Time series is chronological.
	require.Len(t, report.ClicksByDay, 2)
	assert.Equal(t, DayCount{Date: "2026-03-01", Count: 2}, report.ClicksByDay[0])
	assert.Equal(t, DayCount{Date: "2026-03-02", Count: 1}, report.ClicksByDay[1])

	// Categorical breakdown: descending by count.
	require.Len(t, report.Devices, 2)
	assert.Equal(t, BucketCount{Label: "mobile", Count: 2}, report.Devices[0])
	assert.Equal(t, BucketCount{Label: "desktop", Count: 1}, report.Devices[1])
}

func TestAggregate_TieBrokenLexicographically(t *testing.T) {
	storage := memory.New()
	saveLink(t, storage, "ties111")
	agg := NewAggregator(storage, zap.NewNop())

	now := time.Now().UTC()
	for _, country := range []string{"Germany", "Austria", "Brazil"} {
		appendClick(t, storage, &domain.ClickEvent{
			ShortLinkCode: "ties111",
			ClickedAt:     now,
			Country:       strp(country),
		})
	}

	report, err := agg.Aggregate(context.Background(), "ties111")
	require.NoError(t, err)

	require.Len(t, report.TopCountries, 3)
	assert.Equal(t, "Austria", report.TopCountries[0].Label)
	assert.Equal(t, "Brazil", report.TopCountries[1].Label)
	assert.Equal(t, "Germany", report.TopCountries[2].Label)
}

func TestAggregate_TopNCap(t *testing.T) {
	storage := memory.New()
	saveLink(t, storage, "many111")
	agg := NewAggregator(storage, zap.NewNop())

	now := time.Now().UTC()
	cities := []string{"a", "b", "c", "d", "e", "f", "g", "h", "i", "j", "k", "l"}
	for _, city := range cities {
		appendClick(t, storage, &domain.ClickEvent{
			ShortLinkCode: "many111",
			ClickedAt:     now,
			City:          strp(city),
		})
	}

	report, err := agg.Aggregate(context.Background(), "many111")
	require.NoError(t, err)
	assert.Len(t, report.TopCities, 10)
}

func TestAggregate_VariantSplit(t *testing.T) {
	storage := memory.New()
	destB := "https://b.test"
	split := 50.0
	require.NoError(t, storage.SaveLink(context.Background(), &domain.ShortLink{
		Code:         "abtest1",
		Destination:  "https://a.test",
		DestinationB: &destB,
		SplitPercent: &split,
	}))
	agg := NewAggregator(storage, zap.NewNop())

	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		appendClick(t, storage, &domain.ClickEvent{ShortLinkCode: "abtest1", ClickedAt: now, VariantServed: strp("A")})
	}
	appendClick(t, storage, &domain.ClickEvent{ShortLinkCode: "abtest1", ClickedAt: now, VariantServed: strp("B")})

	report, err := agg.Aggregate(context.Background(), "abtest1")
	require.NoError(t, err)

	require.NotNil(t, report.VariantSplit)
	assert.Equal(t, int64(3), report.VariantSplit.VariantA)
	assert.Equal(t, int64(1), report.VariantSplit.VariantB)
}

func TestAggregate_NoVariantSplitWithoutConfig(t *testing.T) {
	storage := memory.New()
	saveLink(t, storage, "noab111")
	agg := NewAggregator(storage, zap.NewNop())

	appendClick(t, storage, &domain.ClickEvent{ShortLinkCode: "noab111", ClickedAt: time.Now().UTC()})

	report, err := agg.Aggregate(context.Background(), "noab111")
	require.NoError(t, err)
	assert.Nil(t, report.VariantSplit)
}
