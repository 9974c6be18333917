package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/terraincognita07/patientlog/internal/db"
	"github.com/terraincognita07/patientlog/internal/services"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RunPurge deletes the account with the given subject, its rows and its stored snapshots.
func RunPurge(ctx context.Context, database *gorm.DB, purger services.SnapshotPurger, subject string, logger *zap.Logger, stdout io.Writer) error {
	user, err := findUserBySubject(database, subject)
	if err != nil {
		return err
	}

	settings := services.NewSettingsService(db.NewUserRepository(database), purger, nil, logger)
	if err := settings.DeleteAccount(ctx, &user); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "Account %s purged\n", user.Subject)
	return nil
}
