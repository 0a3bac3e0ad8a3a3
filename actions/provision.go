package actions

import (
	"context"
	"fmt"

	"github.com/Songmu/prompter"
	"github.com/fatih/color"

	"webup/wplocal/config"
	"webup/wplocal/domain"
	"webup/wplocal/profiles"
	"webup/wplocal/utils"
	"webup/wplocal/workflow"
)

// Files are the settings and project files given on the command line.
type Files struct {
	Settings string
	Config   string
}

// ProvisionActionHandler handles 'wplocal docker|xampp|laragon'.
func ProvisionActionHandler(ctx context.Context, files Files, execCtx domain.ExecutionContext) error {

	w, cfg, settings, err := prepare(files, execCtx)
	if err != nil {
		return err
	}

	if execCtx.Force && execCtx.IsInteractive() {
		ok := prompter.YN(fmt.Sprintf("The destination and the database '%s' are going to be wiped. Are you sure you want to continue?", settings.String("DB_NAME", "")), false)
		if !ok {
			return nil
		}
	}

	utils.Banner("Provisioning the '%s' target", execCtx.Target)

	changes, err := w.Run(ctx)
	printChanges(changes)
	if err != nil {
		return err
	}

	if execCtx.FilesOnly {
		utils.Done("Files ready, the database steps were not run")
	} else {
		utils.Done("You may now open your local site")
	}

	if len(cfg.Checklist) > 0 {
		for _, item := range cfg.Checklist {
			fmt.Printf("  → %s\n", item)
		}
	}

	fmt.Println("")
	return nil
}

// CheckActionHandler handles 'wplocal check': the preflight step alone.
func CheckActionHandler(ctx context.Context, files Files, execCtx domain.ExecutionContext) error {
	w, _, _, err := prepare(files, execCtx)
	if err != nil {
		return err
	}

	utils.Banner("Checking the '%s' target", execCtx.Target)
	if err := w.Preflight(ctx); err != nil {
		return err
	}

	utils.Done("Ready")
	return nil
}

func prepare(files Files, execCtx domain.ExecutionContext) (*workflow.Workflow, domain.Config, domain.Settings, error) {
	settings, err := config.LoadAndCheckSettings(files.Settings)
	if err != nil {
		return nil, domain.Config{}, settings, err
	}

	cfg, err := config.Load(files.Config)
	if err != nil {
		return nil, cfg, settings, err
	}

	profile, err := profiles.CreateProfileWithName(execCtx.Target, settings, cfg)
	if err != nil {
		return nil, cfg, settings, err
	}

	source, err := domain.LocateBackup(settings.String("BACKUP_DIR", "backup"))
	if err != nil {
		return nil, cfg, settings, &domain.PreconditionError{What: "backup source", Err: err}
	}

	return workflow.New(profile, source, settings, execCtx), cfg, settings, nil
}

func printChanges(changes domain.ChangeLog) {
	if len(changes) == 0 {
		return
	}

	fmt.Printf("\n %s Changes:\n", color.CyanString("▶"))
	for _, record := range changes {
		switch {
		case record.Warning:
			fmt.Printf("   %s [%s] %s\n", color.YellowString("!"), record.Step, record.Description)
		case record.Applied:
			fmt.Printf("   %s [%s] %s\n", color.GreenString("+"), record.Step, record.Description)
		default:
			fmt.Printf("   %s [%s] %s\n", color.HiBlackString("="), record.Step, record.Description)
		}
	}
	fmt.Printf("\n   %d change(s), %d warning(s)\n", changes.Changes(), len(changes.Warnings()))
}
