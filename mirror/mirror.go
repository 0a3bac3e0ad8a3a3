package mirror

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"webup/wplocal/utils"
)

// Entry is a file or directory of the remote tree. Path is relative to the
// remote root and uses forward slashes.
type Entry struct {
	Path    string
	Size    int64
	ModTime time.Time
	IsDir   bool
}

type Remote interface {
	List(ctx context.Context) ([]Entry, error)
	Open(path string) (io.ReadCloser, error)
}

type Mode int

const (
	// ModeMirror makes the local tree identical to the remote one.
	ModeMirror Mode = iota
	// ModeSync only adds and updates local files.
	ModeSync
)

type Options struct {
	Mode   Mode
	DryRun bool
}

type ActionKind int

const (
	ActionDelete ActionKind = iota
	ActionMakeDir
	ActionDownload
)

func (k ActionKind) String() string {
	switch k {
	case ActionDelete:
		return "delete"
	case ActionMakeDir:
		return "mkdir"
	default:
		return "download"
	}
}

type Action struct {
	Kind  ActionKind
	Entry Entry
}

type Plan struct {
	Actions   []Action
	Unchanged int
}

type Summary struct {
	Downloaded int
	Deleted    int
	Created    int
	Unchanged  int
	Bytes      int64
	DryRun     bool
}

// Run brings localRoot in line with the remote tree.
func Run(ctx context.Context, remote Remote, localRoot string, opts Options) (Summary, error) {
	entries, err := remote.List(ctx)
	if err != nil {
		return Summary{}, err
	}

	plan, err := BuildPlan(entries, localRoot, opts.Mode)
	if err != nil {
		return Summary{}, err
	}

	return Apply(ctx, remote, plan, localRoot, opts.DryRun)
}

// BuildPlan compares the remote entries with the local tree. A file is
// downloaded when it is missing locally, when its size differs or when the
// remote copy is newer. In mirror mode, local paths unknown remotely are
// deleted.
func BuildPlan(entries []Entry, localRoot string, mode Mode) (Plan, error) {
	local, err := listLocal(localRoot)
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{}
	remotePaths := make(map[string]bool, len(entries))
	var deletes, mkdirs, downloads []Action

	for _, entry := range entries {
		if !filepath.IsLocal(filepath.FromSlash(entry.Path)) {
			return Plan{}, fmt.Errorf("refusing remote path outside the mirror: %s", entry.Path)
		}
		remotePaths[entry.Path] = true

		info, exists := local[entry.Path]
		if exists && info.IsDir() != entry.IsDir {
			// a file replaced by a directory, or the other way around
			deletes = append(deletes, Action{Kind: ActionDelete, Entry: Entry{Path: entry.Path, IsDir: info.IsDir()}})
			exists = false
		}

		switch {
		case entry.IsDir && !exists:
			mkdirs = append(mkdirs, Action{Kind: ActionMakeDir, Entry: entry})
		case entry.IsDir:
		case !exists || info.Size() != entry.Size || entry.ModTime.Truncate(time.Second).After(info.ModTime().Truncate(time.Second)):
			downloads = append(downloads, Action{Kind: ActionDownload, Entry: entry})
		default:
			plan.Unchanged++
		}
	}

	if mode == ModeMirror {
		var extra []string
		for p := range local {
			if !remotePaths[p] {
				extra = append(extra, p)
			}
		}
		sort.Strings(extra)
		var removed []string
		for _, p := range extra {
			if underAny(p, removed) {
				continue
			}
			removed = append(removed, p)
			deletes = append(deletes, Action{Kind: ActionDelete, Entry: Entry{Path: p, IsDir: local[p].IsDir()}})
		}
	}

	plan.Actions = append(plan.Actions, deletes...)
	plan.Actions = append(plan.Actions, mkdirs...)
	plan.Actions = append(plan.Actions, downloads...)
	return plan, nil
}

func underAny(p string, dirs []string) bool {
	for _, dir := range dirs {
		if strings.HasPrefix(p, dir+"/") {
			return true
		}
	}
	return false
}

func listLocal(root string) (map[string]fs.FileInfo, error) {
	local := map[string]fs.FileInfo{}

	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if os.IsNotExist(err) && p == root {
				return filepath.SkipDir
			}
			return err
		}
		if p == root {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		local[filepath.ToSlash(rel)] = info
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Unable to list %s: %w", root, err)
	}
	return local, nil
}

// Apply performs the plan. In dry run mode it only prints it.
func Apply(ctx context.Context, remote Remote, plan Plan, localRoot string, dryRun bool) (Summary, error) {
	summary := Summary{Unchanged: plan.Unchanged, DryRun: dryRun}

	if !dryRun {
		if err := os.MkdirAll(localRoot, 0755); err != nil {
			return summary, fmt.Errorf("Unable to create %s: %w", localRoot, err)
		}
	}

	for _, action := range plan.Actions {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		target := filepath.Join(localRoot, filepath.FromSlash(action.Entry.Path))
		if dryRun {
			utils.Info("would %s %s", action.Kind, action.Entry.Path)
		}

		switch action.Kind {
		case ActionDelete:
			if !dryRun {
				if err := os.RemoveAll(target); err != nil {
					return summary, fmt.Errorf("Unable to delete %s: %w", target, err)
				}
			}
			summary.Deleted++
		case ActionMakeDir:
			if !dryRun {
				if err := os.MkdirAll(target, 0755); err != nil {
					return summary, fmt.Errorf("Unable to create %s: %w", target, err)
				}
			}
			summary.Created++
		case ActionDownload:
			if !dryRun {
				written, err := download(remote, action.Entry, target)
				if err != nil {
					return summary, err
				}
				summary.Bytes += written
			}
			summary.Downloaded++
		}
	}

	return summary, nil
}

// download writes the remote file next to its target and renames it once
// complete, then stamps it with the remote modification time so that the
// next run finds it unchanged.
func download(remote Remote, entry Entry, target string) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return 0, fmt.Errorf("Unable to create %s: %w", filepath.Dir(target), err)
	}

	in, err := remote.Open(entry.Path)
	if err != nil {
		return 0, fmt.Errorf("Unable to open remote %s: %w", entry.Path, err)
	}
	defer in.Close()

	out, err := os.CreateTemp(filepath.Dir(target), "."+path.Base(entry.Path)+".part-*")
	if err != nil {
		return 0, fmt.Errorf("Unable to create a tmp file: %w", err)
	}
	defer os.Remove(out.Name())

	written, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return 0, fmt.Errorf("Unable to download %s: %w", entry.Path, err)
	}
	if err := out.Close(); err != nil {
		return 0, err
	}
	if err := os.Chmod(out.Name(), 0644); err != nil {
		return 0, err
	}
	if err := os.Rename(out.Name(), target); err != nil {
		return 0, err
	}
	if err := os.Chtimes(target, entry.ModTime, entry.ModTime); err != nil {
		return written, err
	}
	return written, nil
}
