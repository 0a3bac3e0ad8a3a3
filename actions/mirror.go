package actions

import (
	"context"

	"webup/wplocal/config"
	"webup/wplocal/mirror"
	"webup/wplocal/utils"
)

// MirrorActionHandler handles 'wplocal mirror'.
func MirrorActionHandler(ctx context.Context, files Files, opts mirror.Options) error {
	settings, err := config.LoadSettings(files.Settings)
	if err != nil {
		return err
	}

	cfg, err := mirror.ConfigFromSettings(settings)
	if err != nil {
		return err
	}

	mode := "mirror"
	if opts.Mode == mirror.ModeSync {
		mode = "sync"
	}
	utils.Banner("Fetching %s@%s:%s into %s (%s)", cfg.User, cfg.Host, cfg.RemotePath, cfg.LocalPath, mode)

	remote, err := mirror.Dial(cfg)
	if err != nil {
		return err
	}
	defer remote.Close()

	summary, err := mirror.Run(ctx, remote, cfg.LocalPath, opts)
	if err != nil {
		return err
	}

	verb := ""
	if summary.DryRun {
		verb = " (dry run, nothing written)"
	}
	utils.Done("%d downloaded (%d bytes), %d deleted, %d directories created, %d unchanged%s",
		summary.Downloaded, summary.Bytes, summary.Deleted, summary.Created, summary.Unchanged, verb)
	return nil
}
