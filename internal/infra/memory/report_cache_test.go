package memory

import (
	"context"
	"testing"
	"time"

	"archetype-bot/internal/domain"
)

func TestReportCacheCaches(t *testing.T) {
	source := &countingSource{report: sampleReport()}
	cache := NewReportCache(source, time.Minute)

	if _, err := cache.LatestReport(context.Background(), 7); err != nil {
		t.Fatalf("latest report: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected source hit once, got %d", source.calls)
	}

	report, err := cache.LatestReport(context.Background(), 7)
	if err != nil {
		t.Fatalf("latest report 2: %v", err)
	}
	if source.calls != 1 {
		t.Fatalf("expected cache hit, source calls %d", source.calls)
	}
	if len(report.Entries) != 2 || report.Entries[0].Category != "Warrior" {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestReportCacheInvalidate(t *testing.T) {
	source := &countingSource{report: sampleReport()}
	cache := NewReportCache(source, time.Minute)

	if _, err := cache.LatestReport(context.Background(), 7); err != nil {
		t.Fatalf("latest report: %v", err)
	}
	cache.Invalidate(7)
	if _, err := cache.LatestReport(context.Background(), 7); err != nil {
		t.Fatalf("latest report after invalidate: %v", err)
	}
	if source.calls != 2 {
		t.Fatalf("expected reload after invalidate, got %d calls", source.calls)
	}
}

type countingSource struct {
	report domain.Report
	calls  int
}

func (s *countingSource) LatestReport(context.Context, int64) (domain.Report, error) {
	s.calls++
	return s.report, nil
}

func sampleReport() domain.Report {
	return domain.Report{
		UserID: 7,
		Entries: []domain.ReportEntry{
			{Category: "Warrior", Score: 18, Percentage: 60},
			{Category: "Sage", Score: 12, Percentage: 40},
		},
	}
}
