package workflow

import (
	"context"
	"fmt"

	"webup/wplocal/domain"
	"webup/wplocal/utils"
)

func (w *Workflow) provisionDatabaseStep() Step {
	return Step{
		Name:        StepProvisionDatabase,
		Description: "Create the database and its user",
		Run:         w.provisionDatabase,
	}
}

func (w *Workflow) provisionDatabase(ctx context.Context, changes *domain.ChangeLog) error {
	db := w.profile.Database
	name := w.dbName()
	user := w.settings.String("DB_USER", "")
	account := fmt.Sprintf("%s@%s", utils.QuoteString(user), utils.QuoteString(w.profile.DBUserHost))

	if err := w.profile.Runtime.EnsureDatabase(ctx); err != nil {
		return err
	}

	exists, err := w.count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM information_schema.schemata WHERE schema_name = %s", utils.QuoteString(name)))
	if err != nil {
		return err
	}
	if _, err := db.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s CHARACTER SET utf8mb4 COLLATE utf8mb4_unicode_ci", utils.QuoteIdentifier(name))); err != nil {
		return fmt.Errorf("Unable to create the database '%s': %w", name, err)
	}
	if exists == 0 {
		changes.Applied(StepProvisionDatabase, fmt.Sprintf("database '%s' created", name))
		utils.Success("database '%s' created", name)
	}

	if user == "root" {
		return nil
	}

	var userErr error
	userExists, err := w.count(ctx, fmt.Sprintf("SELECT COUNT(*) FROM mysql.user WHERE user = %s AND host = %s", utils.QuoteString(user), utils.QuoteString(w.profile.DBUserHost)))
	if err != nil {
		userErr = err
	} else if userExists == 0 {
		statement := fmt.Sprintf("CREATE USER IF NOT EXISTS %s IDENTIFIED BY %s", account, utils.QuoteString(w.settings.String("DB_PASSWORD", "")))
		if _, err := db.Exec(ctx, statement); err != nil {
			userErr = err
		} else {
			changes.Applied(StepProvisionDatabase, fmt.Sprintf("user '%s' created", user))
			utils.Success("user '%s' created", user)
		}
	}

	grant := fmt.Sprintf("GRANT ALL PRIVILEGES ON %s.* TO %s; FLUSH PRIVILEGES", utils.QuoteIdentifier(name), account)
	if _, err := db.Exec(ctx, grant); err != nil {
		if userErr != nil {
			return fmt.Errorf("Unable to create the user '%s' (%s) nor to grant its privileges: %w", user, userErr, err)
		}
		return fmt.Errorf("Unable to grant privileges to '%s': %w", user, err)
	}

	if userErr != nil {
		utils.Warn("user '%s' could not be created, privileges were granted: %s", user, userErr)
		changes.Warn(StepProvisionDatabase, fmt.Sprintf("user creation failed: %s", userErr))
	}
	return nil
}

func (w *Workflow) count(ctx context.Context, query string) (int, error) {
	output, err := w.profile.Database.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return utils.LastInt(output)
}

func (w *Workflow) importDatabaseStep() Step {
	return Step{
		Name:           StepImportDatabase,
		Description:    "Import the production database",
		ExecutionCheck: EmptyDatabaseExecutionCheck{Database: w.profile.Database, Name: w.dbName()},
		Run:            w.importDatabase,
	}
}

func (w *Workflow) importDatabase(ctx context.Context, changes *domain.ChangeLog) error {
	utils.Info("importing %s", w.profile.ImportArtifact)

	errorLines, err := w.profile.Database.Import(ctx, w.profile.ImportArtifact)
	if err != nil {
		return err
	}
	for _, line := range errorLines {
		utils.Warn("%s", line)
		changes.Warn(StepImportDatabase, line)
	}

	changes.Applied(StepImportDatabase, fmt.Sprintf("imported %s into '%s'", w.profile.ImportArtifact, w.dbName()))
	utils.Success("database imported")
	return nil
}
