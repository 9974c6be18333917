package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/terraincognita07/patientlog/internal/cache"
	"github.com/terraincognita07/patientlog/internal/models"
)

type dashboardLogReaderStub struct {
	logs  []models.DailyLog
	calls int
	err   error
}

func (stub *dashboardLogReaderStub) ListByUserRange(_ uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error) {
	stub.calls++
	if stub.err != nil {
		return nil, stub.err
	}
	result := make([]models.DailyLog, 0, len(stub.logs))
	for index := len(stub.logs) - 1; index >= 0; index-- {
		entry := stub.logs[index]
		if fromStart != nil && entry.Date.Before(*fromStart) {
			continue
		}
		if toEnd != nil && !entry.Date.Before(*toEnd) {
			continue
		}
		result = append(result, entry)
	}
	return result, nil
}

type dashboardCacheStub struct {
	values map[string][]byte
}

func (stub *dashboardCacheStub) Get(_ context.Context, userID uint, rangeKey string, dest any) error {
	raw, ok := stub.values[fmt.Sprintf("%d/%s", userID, rangeKey)]
	if !ok {
		return cache.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (stub *dashboardCacheStub) Set(_ context.Context, userID uint, rangeKey string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	stub.values[fmt.Sprintf("%d/%s", userID, rangeKey)] = raw
	return nil
}

func dashboardEntry(t *testing.T, day string, severity int, mood string, sleep string, symptoms ...string) models.DailyLog {
	t.Helper()
	return models.DailyLog{
		Date:            mustDay(t, day),
		SymptomSeverity: severity,
		Mood:            mood,
		SleepQuality:    sleep,
		ActivityLevel:   models.ActivityLight,
		Symptoms:        symptoms,
	}
}

func TestBuildDashboardWithoutLogs(t *testing.T) {
	dashboard := BuildDashboard(nil, nil, nil)

	if dashboard.DaysLogged != 0 || dashboard.AverageSeverity != 0 {
		t.Fatalf("unexpected totals %#v", dashboard)
	}
	if dashboard.MostCommonSymptom != "N/A" || dashboard.MostRecentMood != "N/A" {
		t.Fatalf("expected N/A placeholders, got %q and %q", dashboard.MostCommonSymptom, dashboard.MostRecentMood)
	}
	wantSleep := []CountEntry{{Label: "Good"}, {Label: "Average"}, {Label: "Poor"}}
	if diff := cmp.Diff(wantSleep, dashboard.SleepDistribution); diff != "" {
		t.Fatalf("sleep distribution mismatch (-want +got):\n%s", diff)
	}
	if len(dashboard.ActivityDistribution) != 4 {
		t.Fatalf("expected every activity level, got %#v", dashboard.ActivityDistribution)
	}
}

func TestBuildDashboardAggregates(t *testing.T) {
	logs := []models.DailyLog{
		dashboardEntry(t, "2026-04-03", 6, "🙁", models.SleepPoor, "Nausea", "Headache"),
		dashboardEntry(t, "2026-04-01", 3, "🙂", models.SleepGood, "Headache"),
		dashboardEntry(t, "2026-04-02", 4, "😐", models.SleepGood, "Nausea"),
	}
	logs[1].OtherSymptoms = "Neck pain"

	dashboard := BuildDashboard(logs, nil, nil)

	if dashboard.From != "2026-04-01" || dashboard.To != "2026-04-03" {
		t.Fatalf("expected range from logged dates, got %s..%s", dashboard.From, dashboard.To)
	}
	if dashboard.AverageSeverity != 4.3 {
		t.Fatalf("expected average severity 4.3, got %v", dashboard.AverageSeverity)
	}
	if dashboard.MostRecentMood != "🙁" {
		t.Fatalf("expected most recent mood from 2026-04-03, got %q", dashboard.MostRecentMood)
	}
	if dashboard.MostCommonSymptom != "Headache" {
		t.Fatalf("expected tie to resolve by name, got %q", dashboard.MostCommonSymptom)
	}

	wantCounts := []CountEntry{{Label: "Headache", Count: 2}, {Label: "Nausea", Count: 2}, {Label: "Neck pain", Count: 1}}
	if diff := cmp.Diff(wantCounts, dashboard.SymptomCounts); diff != "" {
		t.Fatalf("symptom counts mismatch (-want +got):\n%s", diff)
	}
	wantSeries := []SeverityPoint{{Date: "2026-04-01", Severity: 3}, {Date: "2026-04-02", Severity: 4}, {Date: "2026-04-03", Severity: 6}}
	if diff := cmp.Diff(wantSeries, dashboard.SeveritySeries); diff != "" {
		t.Fatalf("severity series mismatch (-want +got):\n%s", diff)
	}
	wantSleep := []CountEntry{{Label: "Good", Count: 2}, {Label: "Average"}, {Label: "Poor", Count: 1}}
	if diff := cmp.Diff(wantSleep, dashboard.SleepDistribution); diff != "" {
		t.Fatalf("sleep distribution mismatch (-want +got):\n%s", diff)
	}
	if len(dashboard.RecentLogs) != 3 || FormatDay(dashboard.RecentLogs[0].Date) != "2026-04-03" {
		t.Fatalf("expected recent logs newest first, got %#v", dashboard.RecentLogs)
	}
}

func TestBuildDashboardLimitsRecentLogs(t *testing.T) {
	start := mustDay(t, "2026-03-01")
	logs := make([]models.DailyLog, 0, 15)
	for offset := 0; offset < 15; offset++ {
		logs = append(logs, models.DailyLog{Date: start.AddDate(0, 0, offset), SymptomSeverity: 5, Mood: "😐"})
	}

	dashboard := BuildDashboard(logs, nil, nil)
	if len(dashboard.RecentLogs) != 10 {
		t.Fatalf("expected 10 recent logs, got %d", len(dashboard.RecentLogs))
	}
	if FormatDay(dashboard.RecentLogs[9].Date) != "2026-03-06" {
		t.Fatalf("unexpected oldest recent log %s", FormatDay(dashboard.RecentLogs[9].Date))
	}
}

func TestDashboardServiceUsesCachePerRange(t *testing.T) {
	reader := &dashboardLogReaderStub{logs: []models.DailyLog{
		dashboardEntry(t, "2026-04-01", 2, "🙂", models.SleepGood),
		dashboardEntry(t, "2026-04-05", 8, "😢", models.SleepPoor),
	}}
	cacheStub := &dashboardCacheStub{values: make(map[string][]byte)}
	service := NewDashboardService(reader, cacheStub, nil)
	user := &models.User{ID: 4}

	first, err := service.Build(context.Background(), user, nil, nil)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	second, err := service.Build(context.Background(), user, nil, nil)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if reader.calls != 1 {
		t.Fatalf("expected cached second build, got %d repository calls", reader.calls)
	}
	if first.AverageSeverity != second.AverageSeverity || second.DaysLogged != 2 {
		t.Fatalf("cached dashboard differs: %#v vs %#v", first, second)
	}

	from := mustDay(t, "2026-04-02")
	ranged, err := service.Build(context.Background(), user, &from, nil)
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}
	if reader.calls != 2 || ranged.DaysLogged != 1 || ranged.From != "2026-04-02" {
		t.Fatalf("expected separate cache entry per range, calls=%d dashboard=%#v", reader.calls, ranged)
	}
	if _, ok := cacheStub.values["4/2026-04-02:all"]; !ok {
		t.Fatalf("expected range key 2026-04-02:all, got %v", cacheStub.values)
	}
}

func TestDashboardServiceLoadFailure(t *testing.T) {
	service := NewDashboardService(&dashboardLogReaderStub{err: errors.New("db down")}, nil, nil)
	if _, err := service.Build(context.Background(), &models.User{ID: 1}, nil, nil); !errors.Is(err, ErrDashboardLoadFailed) {
		t.Fatalf("expected ErrDashboardLoadFailed, got %v", err)
	}
}
