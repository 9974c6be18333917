package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/terraincognita07/patientlog/internal/db"
	"github.com/terraincognita07/patientlog/internal/models"
	"github.com/terraincognita07/patientlog/internal/services"
	"gorm.io/gorm"
)

type ExportOptions struct {
	Subject string
	Format  string
	Out     string
	From    string
	To      string
}

// RunExport writes one user's logs to a local file and returns its path.
// An empty Out places the file in the working directory under its generated name.
func RunExport(database *gorm.DB, options ExportOptions, now time.Time, location *time.Location, stdout io.Writer) (string, error) {
	user, err := findUserBySubject(database, options.Subject)
	if err != nil {
		return "", err
	}

	from, to, err := services.ParseDayRange(options.From, options.To)
	if err != nil {
		return "", err
	}

	exporter := services.NewExportService(db.NewDailyLogRepository(database))
	file, err := exporter.Render(&user, options.Format, from, to, now, location)
	if err != nil {
		return "", err
	}

	target := strings.TrimSpace(options.Out)
	if target == "" {
		target = file.Filename
	}
	if dir := filepath.Dir(target); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("create output dir: %w", err)
		}
	}
	if err := os.WriteFile(target, file.Data, 0o600); err != nil {
		return "", fmt.Errorf("write export: %w", err)
	}

	fmt.Fprintf(stdout, "Exported %d bytes to %s\n", len(file.Data), target)
	return target, nil
}

func findUserBySubject(database *gorm.DB, subject string) (models.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.User{}, errors.New("subject is required")
	}

	user, err := db.NewUserRepository(database).FindBySubject(subject)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, fmt.Errorf("user %s not found", subject)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
