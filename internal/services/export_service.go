package services

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/patientlog/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	ExportFormatCSV  = "csv"
	ExportFormatJSON = "json"
	ExportFormatXLSX = "xlsx"

	exportSheetName = "Health Logs"
)

var (
	ErrExportFormatUnsupported = errors.New("export format unsupported")
	ErrExportLoadFailed        = errors.New("export load failed")
	ErrExportBuildFailed       = errors.New("export build failed")
)

var ExportHeaders = []string{
	"Date",
	"Time",
	"Symptoms",
	"Other symptoms",
	"Medication taken",
	"Medication name",
	"Medication details",
	"Doctor visited",
	"Doctor type",
	"Doctor notes",
	"Symptom severity",
	"Sleep quality",
	"Activity level",
	"Mood",
	"Notes",
}

var exportColumnWidths = []float64{12, 8, 40, 24, 16, 20, 28, 14, 22, 32, 16, 14, 14, 8, 40}

type ExportLogReader interface {
	ListByUserRange(userID uint, fromStart *time.Time, toEnd *time.Time) ([]models.DailyLog, error)
}

type ExportJSONEntry struct {
	Date              string   `json:"date"`
	Time              string   `json:"time"`
	Symptoms          []string `json:"symptoms"`
	OtherSymptoms     string   `json:"other_symptoms"`
	MedicationTaken   bool     `json:"medication_taken"`
	MedicationName    string   `json:"medication_name"`
	MedicationDetails string   `json:"medication_details"`
	DoctorVisited     bool     `json:"doctor_visited"`
	DoctorType        string   `json:"doctor_type"`
	DoctorNotes       string   `json:"doctor_notes"`
	SymptomSeverity   int      `json:"symptom_severity"`
	SleepQuality      string   `json:"sleep_quality"`
	ActivityLevel     string   `json:"activity_level"`
	Mood              string   `json:"mood"`
	Notes             string   `json:"notes"`
}

type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type ExportService struct {
	logs ExportLogReader
}

func NewExportService(logs ExportLogReader) *ExportService {
	return &ExportService{logs: logs}
}

// LoadLogs returns entries in the inclusive range, oldest first.
func (service *ExportService) LoadLogs(user *models.User, from *time.Time, to *time.Time) ([]models.DailyLog, error) {
	fromStart, toEnd := rangeBounds(from, to)
	logs, err := service.logs.ListByUserRange(user.ID, fromStart, toEnd)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExportLoadFailed, err)
	}
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].Date.Before(logs[j].Date)
	})
	return logs, nil
}

// Render builds a downloadable export. Open range ends are named after the
// first and last logged day, or today when there is nothing logged.
func (service *ExportService) Render(user *models.User, format string, from *time.Time, to *time.Time, now time.Time, location *time.Location) (ExportFile, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	switch format {
	case ExportFormatCSV, ExportFormatJSON, ExportFormatXLSX:
	default:
		return ExportFile{}, ErrExportFormatUnsupported
	}

	logs, err := service.LoadLogs(user, from, to)
	if err != nil {
		return ExportFile{}, err
	}
	fromLabel, toLabel := exportRangeLabels(logs, from, to, CalendarDay(now, location))
	filename := BuildExportFilename(fromLabel, toLabel, format)

	var data []byte
	var contentType string
	switch format {
	case ExportFormatCSV:
		data, err = BuildExportCSV(logs)
		contentType = "text/csv"
	case ExportFormatJSON:
		data, err = BuildExportJSON(logs, fromLabel, toLabel, now)
		contentType = "application/json"
	case ExportFormatXLSX:
		data, err = BuildExportXLSX(logs)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	if err != nil {
		return ExportFile{}, fmt.Errorf("%w: %v", ErrExportBuildFailed, err)
	}
	return ExportFile{Filename: filename, ContentType: contentType, Data: data}, nil
}

func BuildExportFilename(from string, to string, extension string) string {
	return fmt.Sprintf("health_logs_%s_to_%s.%s", from, to, extension)
}

func BuildExportCSV(logs []models.DailyLog) ([]byte, error) {
	var output bytes.Buffer
	writer := csv.NewWriter(&output)
	if err := writer.Write(ExportHeaders); err != nil {
		return nil, err
	}
	for _, entry := range logs {
		if err := writer.Write(exportColumns(entry)); err != nil {
			return nil, err
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return output.Bytes(), nil
}

func BuildExportJSONEntries(logs []models.DailyLog) []ExportJSONEntry {
	entries := make([]ExportJSONEntry, 0, len(logs))
	for _, entry := range logs {
		symptoms := entry.Symptoms
		if symptoms == nil {
			symptoms = []string{}
		}
		entries = append(entries, ExportJSONEntry{
			Date:              FormatDay(entry.Date),
			Time:              entry.Time,
			Symptoms:          symptoms,
			OtherSymptoms:     entry.OtherSymptoms,
			MedicationTaken:   entry.MedicationTaken,
			MedicationName:    entry.MedicationName,
			MedicationDetails: entry.MedicationDetails,
			DoctorVisited:     entry.DoctorVisited,
			DoctorType:        entry.DoctorType,
			DoctorNotes:       entry.DoctorNotes,
			SymptomSeverity:   entry.SymptomSeverity,
			SleepQuality:      entry.SleepQuality,
			ActivityLevel:     entry.ActivityLevel,
			Mood:              entry.Mood,
			Notes:             entry.Notes,
		})
	}
	return entries
}

func BuildExportJSON(logs []models.DailyLog, from string, to string, now time.Time) ([]byte, error) {
	payload := struct {
		ExportedAt string            `json:"exported_at"`
		From       string            `json:"from"`
		To         string            `json:"to"`
		Entries    []ExportJSONEntry `json:"entries"`
	}{
		ExportedAt: now.UTC().Format(time.RFC3339),
		From:       from,
		To:         to,
		Entries:    BuildExportJSONEntries(logs),
	}
	return json.MarshalIndent(payload, "", "  ")
}

// BuildExportXLSX writes a single sheet with a styled, frozen header row.
func BuildExportXLSX(logs []models.DailyLog) ([]byte, error) {
	file := excelize.NewFile()
	defer file.Close()

	index, err := file.NewSheet(exportSheetName)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	file.SetActiveSheet(index)
	if err := file.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("delete default sheet: %w", err)
	}

	headerStyle, err := file.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}

	for column, header := range ExportHeaders {
		cell, err := excelize.CoordinatesToCellName(column+1, 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetCellValue(exportSheetName, cell, header); err != nil {
			return nil, fmt.Errorf("set header %s: %w", cell, err)
		}
		if err := file.SetCellStyle(exportSheetName, cell, cell, headerStyle); err != nil {
			return nil, fmt.Errorf("style header %s: %w", cell, err)
		}
		name, err := excelize.ColumnNumberToName(column + 1)
		if err != nil {
			return nil, err
		}
		if err := file.SetColWidth(exportSheetName, name, name, exportColumnWidths[column]); err != nil {
			return nil, fmt.Errorf("set column width: %w", err)
		}
	}

	for rowIndex, entry := range logs {
		cell, err := excelize.CoordinatesToCellName(1, rowIndex+2)
		if err != nil {
			return nil, err
		}
		columns := exportColumns(entry)
		values := make([]any, len(columns))
		for index, value := range columns {
			values[index] = value
		}
		values[10] = entry.SymptomSeverity
		if err := file.SetSheetRow(exportSheetName, cell, &values); err != nil {
			return nil, fmt.Errorf("write row %d: %w", rowIndex+2, err)
		}
	}

	if err := file.SetPanes(exportSheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("freeze header: %w", err)
	}

	var output bytes.Buffer
	if _, err := file.WriteTo(&output); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return output.Bytes(), nil
}

func exportColumns(entry models.DailyLog) []string {
	return []string{
		FormatDay(entry.Date),
		entry.Time,
		strings.Join(entry.Symptoms, ", "),
		entry.OtherSymptoms,
		exportYesNo(entry.MedicationTaken),
		entry.MedicationName,
		entry.MedicationDetails,
		exportYesNo(entry.DoctorVisited),
		entry.DoctorType,
		entry.DoctorNotes,
		strconv.Itoa(entry.SymptomSeverity),
		entry.SleepQuality,
		entry.ActivityLevel,
		entry.Mood,
		entry.Notes,
	}
}

func exportYesNo(value bool) string {
	if value {
		return "Yes"
	}
	return "No"
}

func exportRangeLabels(logs []models.DailyLog, from *time.Time, to *time.Time, today time.Time) (string, string) {
	fromLabel, toLabel := FormatDay(today), FormatDay(today)
	if len(logs) > 0 {
		fromLabel = FormatDay(logs[0].Date)
		toLabel = FormatDay(logs[len(logs)-1].Date)
	}
	if from != nil {
		fromLabel = FormatDay(*from)
	}
	if to != nil {
		toLabel = FormatDay(*to)
	}
	return fromLabel, toLabel
}
