package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/Songmu/prompter"
	"github.com/jawher/mow.cli"

	"webup/wplocal/actions"
	"webup/wplocal/config"
	"webup/wplocal/domain"
	"webup/wplocal/mirror"
	"webup/wplocal/profiles"
	"webup/wplocal/utils"
	"webup/wplocal/workflow"
)

func main() {

	app := cli.App("wplocal", "Bootstrap a local copy of a production WordPress site")

	app.Version("v version", "wplocal 1.0")

	settingsFile := app.String(cli.StringOpt{
		Name:   "settings",
		Value:  config.DefaultSettingsFilename,
		Desc:   "The name=value settings file",
		EnvVar: "WPLOCAL_SETTINGS",
	})
	configFile := app.String(cli.StringOpt{
		Name:   "config",
		Value:  config.DefaultFilename,
		Desc:   "The project file (runtime paths, compose services, checklist)",
		EnvVar: "WPLOCAL_CONFIG",
	})
	noInput := app.Bool(cli.BoolOpt{
		Name:  "no-input",
		Value: false,
		Desc:  "Never wait for the operator: a stopped service fails the run",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	files := func() actions.Files {
		return actions.Files{Settings: *settingsFile, Config: *configFile}
	}
	confirm := func() func(string) {
		if *noInput {
			return nil
		}
		return func(message string) {
			prompter.Prompt(message, "")
		}
	}

	app.Command(domain.TargetContainer, "Provision the docker compose project", func(cmd *cli.Cmd) {

		forced := cmd.BoolOpt("f force", false, "Wipe the files, the database data and the import file first")
		filesOnly := cmd.BoolOpt("files-only", false, "Stop after patching the configuration")

		cmd.Action = func() {
			exitOnError(actions.ProvisionActionHandler(ctx, files(), domain.ExecutionContext{
				Target:    domain.TargetContainer,
				Force:     *forced,
				FilesOnly: *filesOnly,
				Confirm:   confirm(),
			}))
		}
	})

	app.Command(domain.TargetNative, "Provision the XAMPP document root", func(cmd *cli.Cmd) {

		forced := cmd.BoolOpt("f force", false, "Wipe the files, the database and the import file first")

		cmd.Action = func() {
			exitOnError(actions.ProvisionActionHandler(ctx, files(), domain.ExecutionContext{
				Target:  domain.TargetNative,
				Force:   *forced,
				Confirm: confirm(),
			}))
		}
	})

	app.Command(domain.TargetVirtualHost, "Provision a Laragon virtual host", func(cmd *cli.Cmd) {

		forced := cmd.BoolOpt("f force", false, "Wipe the files, the database and the import file first")

		cmd.Action = func() {
			exitOnError(actions.ProvisionActionHandler(ctx, files(), domain.ExecutionContext{
				Target:  domain.TargetVirtualHost,
				Force:   *forced,
				Confirm: confirm(),
			}))
		}
	})

	app.Command("check", "Run the preflight checks of a target", func(cmd *cli.Cmd) {

		cmd.Spec = "TARGET"
		target := cmd.StringArg("TARGET", "", "The target to check. Run 'wplocal targets' to get the list of the targets")

		cmd.Action = func() {
			exitOnError(actions.CheckActionHandler(ctx, files(), domain.ExecutionContext{
				Target:  *target,
				Confirm: confirm(),
			}))
		}
	})

	app.Command("mirror", "Fetch the production files over SFTP into the backup folder", func(cmd *cli.Cmd) {

		sync := cmd.BoolOpt("sync", false, "Only add and update files, never delete local ones")
		dryRun := cmd.BoolOpt("n dry-run", false, "Print what would be transferred without writing anything")

		cmd.Action = func() {
			opts := mirror.Options{Mode: mirror.ModeMirror, DryRun: *dryRun}
			if *sync {
				opts.Mode = mirror.ModeSync
			}
			exitOnError(actions.MirrorActionHandler(ctx, files(), opts))
		}
	})

	app.Command("targets", "List the available targets", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			fmt.Println("Available targets:")
			for _, target := range profiles.AllTargetNames() {
				fmt.Printf("   %s\n", target)
			}
		}
	})

	app.Command("steps", "List the provisioning steps in their execution order", func(cmd *cli.Cmd) {
		cmd.Action = func() {
			fmt.Println("Steps:")
			for i, step := range workflow.Outline() {
				fmt.Printf("   %d. %-20s %s\n", i+1, step.Name, step.Description)
			}
		}
	})

	app.Run(os.Args)
}

func exitOnError(err error) {
	if err == nil {
		return
	}

	utils.Fail("%s", err)

	var precondition *domain.PreconditionError
	if errors.As(err, &precondition) {
		fmt.Println("   Nothing was modified.")
	}
	cli.Exit(1)
}
