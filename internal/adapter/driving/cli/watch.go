package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/ericfisherdev/gitswitch/internal/application"
)

var watchCmd = &cobra.Command{
	Use:     "watch [roots...]",
	GroupID: GroupWorkspace,
	Short:   "Scan, then rescan whenever repositories appear",
	Long: `Run a scan, then watch each root and its top-level directories. When a
directory or repository is created or removed beneath a root, that root is
rescanned after a short quiet period (watch_debounce, default 500ms).

Mismatches found while watching are logged, not prompted; resolve them with
'gitswitch scan' or the settings server. Only one watcher runs at a time.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
}

// ErrWatcherRunning is returned when another watch process holds the lock.
var ErrWatcherRunning = errors.New("another gitswitch watch is already running")

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	lock := flock.New(filepath.Join(filepath.Dir(app.Config.DBPath), "watch.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquiring watch lock: %w", err)
	}
	if !locked {
		return ErrWatcherRunning
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			slog.Warn("failed to release watch lock", "path", lock.Path(), "error", err)
		}
	}()

	roots, err := resolveRoots(args)
	if err != nil {
		return err
	}

	results := app.Session.ScanRoots(ctx, roots)
	printScanResults(out(cmd), results, false)
	reportDecisions(out(cmd))

	w, err := newRootWatcher(roots, app.Config.WatchDebounce, rescan)
	if err != nil {
		return err
	}
	slog.Info("watching workspace roots", "roots", roots, "debounce", app.Config.WatchDebounce)
	return w.Run(ctx)
}

// rescan runs the watch cycle over roots and logs what changed.
func rescan(ctx context.Context, roots []string) {
	for _, r := range app.Session.ScanRoots(ctx, roots) {
		switch {
		case r.Err != nil:
			slog.Error("reconcile failed", "repo", r.RepoPath, "error", r.Err)
		case r.Result == application.WatchMismatch:
			slog.Warn("identity mismatch", "repo", r.RepoPath)
		case !quietResults[r.Result]:
			slog.Info("reconciled repository", "repo", r.RepoPath, "result", resultLabels[r.Result])
		}
	}
}

// rootWatcher rescans a workspace root after directories appear or vanish
// beneath it. It watches each root and its top-level directories.
type rootWatcher struct {
	fsw      *fsnotify.Watcher
	roots    []string
	debounce time.Duration
	rescan   func(ctx context.Context, roots []string)
}

func newRootWatcher(roots []string, debounce time.Duration, rescan func(context.Context, []string)) (*rootWatcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}

	w := &rootWatcher{fsw: fsw, debounce: debounce, rescan: rescan}
	for _, root := range roots {
		root = application.NormalizePath(root)
		w.roots = append(w.roots, root)
		if err := fsw.Add(root); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", root, err)
		}
		entries, err := os.ReadDir(root)
		if err != nil {
			slog.Warn("failed to list workspace root", "root", root, "error", err)
			continue
		}
		for _, e := range entries {
			if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
				w.add(filepath.Join(root, e.Name()))
			}
		}
	}
	return w, nil
}

func (w *rootWatcher) add(dir string) {
	if err := w.fsw.Add(dir); err != nil {
		slog.Debug("not watching directory", "dir", dir, "error", err)
	}
}

// rootFor returns the most specific root containing path.
func (w *rootWatcher) rootFor(path string) string {
	best := ""
	for _, root := range w.roots {
		if application.IsWithin(path, root) && len(root) > len(best) {
			best = root
		}
	}
	return best
}

// Run processes events until ctx is done. Rescans run on this goroutine, so
// events arriving during a rescan are coalesced into the next one.
func (w *rootWatcher) Run(ctx context.Context) error {
	defer w.fsw.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	dirty := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
				continue
			}
			root := w.rootFor(ev.Name)
			if root == "" {
				continue
			}
			if ev.Has(fsnotify.Create) && filepath.Dir(ev.Name) == root && !strings.HasPrefix(filepath.Base(ev.Name), ".") {
				if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
					w.add(ev.Name)
				}
			}
			dirty[root] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			slog.Warn("file watcher error", "error", err)

		case <-timer.C:
			roots := make([]string, 0, len(dirty))
			for root := range dirty {
				roots = append(roots, root)
			}
			clear(dirty)
			slices.Sort(roots)
			slog.Debug("rescanning workspace roots", "roots", roots)
			w.rescan(ctx, roots)
		}
	}
}
