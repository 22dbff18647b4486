package analytics

import (
	"Shortly-Backend/internal/repository"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
)

// topN caps the categorical breakdowns for country, city, browser and
// OS. The device breakdown has a small fixed value space and is not
// capped.
const topN = 10

// BucketCount is one category in a breakdown.
type BucketCount struct {
	Label string `json:"label"`
	Count int64  `json:"count"`
}

// DayCount is one day in the click time series.
type DayCount struct {
	Date  string `json:"date"` // YYYY-MM-DD, UTC
	Count int64  `json:"count"`
}

// VariantSplit counts resolutions served per A/B variant.
type VariantSplit struct {
	VariantA int64 `json:"variant_a_clicks"`
	VariantB int64 `json:"variant_b_clicks"`
}

// Report is the aggregate view over a link's click log.
type Report struct {
	Code             string        `json:"code"`
	TotalClicks      int64         `json:"total_clicks"`
	UniqueVisitors   int64         `json:"unique_visitors"`
	FirstClick       *time.Time    `json:"first_click,omitempty"`
	LastClick        *time.Time    `json:"last_click,omitempty"`
	ClicksByDay      []DayCount    `json:"clicks_by_day"`
	TopCountries     []BucketCount `json:"top_countries"`
	TopCities        []BucketCount `json:"top_cities"`
	Devices          []BucketCount `json:"devices"`
	Browsers         []BucketCount `json:"browsers"`
	OperatingSystems []BucketCount `json:"operating_systems"`
	VariantSplit     *VariantSplit `json:"variant_split,omitempty"`
}

// Aggregator answers read queries over the click log.
type Aggregator struct {
	storage repository.Storage
	log     *zap.Logger
}

func NewAggregator(storage repository.Storage, log *zap.Logger) *Aggregator {
	return &Aggregator{
		storage: storage,
		log:     log,
	}
}

// Aggregate computes the report for a code. Expired links still report;
// only a code that never existed yields ErrCodeNotFound. A link with no
// clicks yields zero counts and empty breakdowns.
func (a *Aggregator) Aggregate(ctx context.Context, code string) (*Report, error) {
	link, err := a.storage.GetLink(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrCodeNotFound) {
			return nil, repository.ErrCodeNotFound
		}
		return nil, fmt.Errorf("failed to look up code: %w", err)
	}

	clicks, err := a.storage.ListClicks(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list clicks: %w", err)
	}

	report := &Report{
		Code:             code,
		TotalClicks:      int64(len(clicks)),
		ClicksByDay:      []DayCount{},
		TopCountries:     []BucketCount{},
		TopCities:        []BucketCount{},
		Devices:          []BucketCount{},
		Browsers:         []BucketCount{},
		OperatingSystems: []BucketCount{},
	}

	uniqueClients := make(map[string]bool)
	byDay := make(map[string]int64)
	byCountry := make(map[string]int64)
	byCity := make(map[string]int64)
	byDevice := make(map[string]int64)
	byBrowser := make(map[string]int64)
	byOS := make(map[string]int64)
	var variantA, variantB int64

	for _, click := range clicks {
		if click.ClientID != "" {
			uniqueClients[click.ClientID] = true
		}

		ts := click.ClickedAt.UTC()
		if report.FirstClick == nil || ts.Before(*report.FirstClick) {
			t := ts
			report.FirstClick = &t
		}
		if report.LastClick == nil || ts.After(*report.LastClick) {
			t := ts
			report.LastClick = &t
		}

		byDay[ts.Format("2006-01-02")]++
		countInto(byCountry, click.Country)
		countInto(byCity, click.City)
		countInto(byDevice, click.Device)
		countInto(byBrowser, click.Browser)
		countInto(byOS, click.OS)

		if click.VariantServed != nil {
			switch *click.VariantServed {
			case "A":
				variantA++
			case "B":
				variantB++
			}
		}
	}

	report.UniqueVisitors = int64(len(uniqueClients))
	report.ClicksByDay = daySeries(byDay)
	report.TopCountries = breakdown(byCountry, topN)
	report.TopCities = breakdown(byCity, topN)
	report.Devices = breakdown(byDevice, 0)
	report.Browsers = breakdown(byBrowser, topN)
	report.OperatingSystems = breakdown(byOS, topN)

	if link.HasVariant() {
		report.VariantSplit = &VariantSplit{VariantA: variantA, VariantB: variantB}
	}

	a.log.Debug("aggregated analytics",
		zap.String("code", code),
		zap.Int64("total_clicks", report.TotalClicks),
	)

	return report, nil
}

func countInto(m map[string]int64, value *string) {
	if value != nil && *value != "" {
		m[*value]++
	}
}

// daySeries returns the time series in chronological order. The
// YYYY-MM-DD key sorts lexicographically as chronologically.
func daySeries(byDay map[string]int64) []DayCount {
	out := make([]DayCount, 0, len(byDay))
	for day, count := range byDay {
		out = append(out, DayCount{Date: day, Count: count})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// breakdown returns categories ordered by descending count, ties broken
// lexicographically by label so results are deterministic. limit of 0
// means no cap.
func breakdown(counts map[string]int64, limit int) []BucketCount {
	out := make([]BucketCount, 0, len(counts))
	for label, count := range counts {
		out = append(out, BucketCount{Label: label, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Label < out[j].Label
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
