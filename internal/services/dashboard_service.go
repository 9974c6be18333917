package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/terraincognita07/patientlog/internal/cache"
	"github.com/terraincognita07/patientlog/internal/models"
	"go.uber.org/zap"
)

const (
	dashboardRecentLimit  = 10
	dashboardNotAvailable = "N/A"
)

var ErrDashboardLoadFailed = errors.New("load dashboard failed")

type DashboardLogReader interface {
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error)
}

type DashboardCache interface {
	Get(ctx context.Context, userID uint, rangeKey string, dest any) error
	Set(ctx context.Context, userID uint, rangeKey string, value any) error
}

type SeverityPoint struct {
	Date     string `json:"date"`
	Severity int    `json:"severity"`
}

type CountEntry struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type Dashboard struct {
	From                 string            `json:"from"`
	To                   string            `json:"to"`
	DaysLogged           int               `json:"days_logged"`
	AverageSeverity      float64           `json:"average_severity"`
	MostRecentMood       string            `json:"most_recent_mood"`
	MostCommonSymptom    string            `json:"most_common_symptom"`
	SeveritySeries       []SeverityPoint   `json:"severity_series"`
	SymptomCounts        []CountEntry      `json:"symptom_counts"`
	SleepDistribution    []CountEntry      `json:"sleep_distribution"`
	ActivityDistribution []CountEntry      `json:"activity_distribution"`
	RecentLogs           []models.DailyLog `json:"recent_logs"`
}

type DashboardService struct {
	logs   DashboardLogReader
	cache  DashboardCache
	logger *zap.Logger
}

func NewDashboardService(logs DashboardLogReader, cache DashboardCache, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{logs: logs, cache: cache, logger: logger}
}

// Build aggregates the user's logs between the optional inclusive bounds.
// Cache failures fall through to a fresh computation.
func (service *DashboardService) Build(ctx context.Context, user *models.User, from *time.Time, to *time.Time) (Dashboard, error) {
	rangeKey := DashboardRangeKey(from, to)
	if service.cache != nil {
		var cached Dashboard
		err := service.cache.Get(ctx, user.ID, rangeKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrCacheMiss) {
			service.logger.Warn("dashboard cache read failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}

	fromStart, toEnd := rangeBounds(from, to)
	logs, err := service.logs.ListByUserRange(user.ID, fromStart, toEnd)
	if err != nil {
		return Dashboard{}, fmt.Errorf("%w: %v", ErrDashboardLoadFailed, err)
	}

	dashboard := BuildDashboard(logs, from, to)
	if service.cache != nil {
		if err := service.cache.Set(ctx, user.ID, rangeKey, dashboard); err != nil {
			service.logger.Warn("dashboard cache write failed", zap.Uint("user_id", user.ID), zap.Error(err))
		}
	}
	return dashboard, nil
}

func DashboardRangeKey(from *time.Time, to *time.Time) string {
	part := func(value *time.Time) string {
		if value == nil {
			return "all"
		}
		return FormatDay(*value)
	}
	return part(from) + ":" + part(to)
}

// BuildDashboard computes aggregates over logs in any order. Missing bounds
// are reported as the earliest and latest logged dates.
func BuildDashboard(logs []models.DailyLog, from *time.Time, to *time.Time) Dashboard {
	ordered := make([]models.DailyLog, len(logs))
	copy(ordered, logs)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	dashboard := Dashboard{
		DaysLogged:           len(ordered),
		MostRecentMood:       dashboardNotAvailable,
		MostCommonSymptom:    dashboardNotAvailable,
		SeveritySeries:       make([]SeverityPoint, 0, len(ordered)),
		SymptomCounts:        make([]CountEntry, 0),
		SleepDistribution:    distribution(ordered, models.SleepQualities(), func(entry models.DailyLog) string { return entry.SleepQuality }),
		ActivityDistribution: distribution(ordered, models.ActivityLevels(), func(entry models.DailyLog) string { return entry.ActivityLevel }),
		RecentLogs:           make([]models.DailyLog, 0, dashboardRecentLimit),
	}
	if from != nil {
		dashboard.From = FormatDay(*from)
	}
	if to != nil {
		dashboard.To = FormatDay(*to)
	}
	if len(ordered) == 0 {
		return dashboard
	}
	if dashboard.From == "" {
		dashboard.From = FormatDay(ordered[0].Date)
	}
	if dashboard.To == "" {
		dashboard.To = FormatDay(ordered[len(ordered)-1].Date)
	}

	severityTotal := 0
	symptomCounts := make(map[string]int)
	for _, entry := range ordered {
		severityTotal += entry.SymptomSeverity
		dashboard.SeveritySeries = append(dashboard.SeveritySeries, SeverityPoint{
			Date:     FormatDay(entry.Date),
			Severity: entry.SymptomSeverity,
		})
		for _, symptom := range entrySymptoms(entry) {
			symptomCounts[symptom]++
		}
	}
	dashboard.AverageSeverity = math.Round(float64(severityTotal)/float64(len(ordered))*10) / 10

	latest := ordered[len(ordered)-1]
	if strings.TrimSpace(latest.Mood) != "" {
		dashboard.MostRecentMood = latest.Mood
	}

	for label, count := range symptomCounts {
		dashboard.SymptomCounts = append(dashboard.SymptomCounts, CountEntry{Label: label, Count: count})
	}
	sort.Slice(dashboard.SymptomCounts, func(i, j int) bool {
		left, right := dashboard.SymptomCounts[i], dashboard.SymptomCounts[j]
		if left.Count != right.Count {
			return left.Count > right.Count
		}
		return left.Label < right.Label
	})
	if len(dashboard.SymptomCounts) > 0 {
		dashboard.MostCommonSymptom = dashboard.SymptomCounts[0].Label
	}

	for index := len(ordered) - 1; index >= 0 && len(dashboard.RecentLogs) < dashboardRecentLimit; index-- {
		dashboard.RecentLogs = append(dashboard.RecentLogs, ordered[index])
	}
	return dashboard
}

// entrySymptoms returns catalog symptoms plus the comma-separated free-text ones.
func entrySymptoms(entry models.DailyLog) []string {
	symptoms := make([]string, 0, len(entry.Symptoms))
	seen := make(map[string]struct{}, len(entry.Symptoms))
	add := func(raw string) {
		label := strings.TrimSpace(raw)
		if label == "" {
			return
		}
		if _, ok := seen[strings.ToLower(label)]; ok {
			return
		}
		seen[strings.ToLower(label)] = struct{}{}
		symptoms = append(symptoms, label)
	}
	for _, symptom := range entry.Symptoms {
		add(symptom)
	}
	for _, symptom := range strings.Split(entry.OtherSymptoms, ",") {
		add(symptom)
	}
	return symptoms
}

// distribution lists every catalog value in order, including zero counts.
// Values outside the catalog are appended by name.
func distribution(logs []models.DailyLog, catalog []string, value func(models.DailyLog) string) []CountEntry {
	counts := make(map[string]int, len(catalog))
	for _, entry := range logs {
		if label := strings.TrimSpace(value(entry)); label != "" {
			counts[label]++
		}
	}

	entries := make([]CountEntry, 0, len(catalog))
	for _, label := range catalog {
		entries = append(entries, CountEntry{Label: label, Count: counts[label]})
		delete(counts, label)
	}
	extra := make([]string, 0, len(counts))
	for label := range counts {
		extra = append(extra, label)
	}
	sort.Strings(extra)
	for _, label := range extra {
		entries = append(entries, CountEntry{Label: label, Count: counts[label]})
	}
	return entries
}
