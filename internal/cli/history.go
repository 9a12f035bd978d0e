package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// sessionDirPrefix matches the per-session directories of the file store.
const sessionDirPrefix = "session-"

// activeSessionWindow is how recently a session directory may have been
// written to and still count as in use by a running process.
const activeSessionWindow = 24 * time.Hour

// historyCommand creates the snapshot history management command.
func (c *CLI) historyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Manage file-backed undo snapshots",
		Long: `Sessions using the file history backend keep PNG snapshots in a
per-session directory that is removed when the session ends. Sessions that
were killed leave their directory behind; "history clear" removes them.
Directories written to in the last 24 hours may belong to a running studio
and are kept unless --force is given.`,
	}

	cmd.AddCommand(c.historyClearCommand())
	cmd.AddCommand(c.historyPathCommand())

	return cmd
}

func (c *CLI) historyClearCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove leftover snapshot sessions",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.snapshotDir()
			if err != nil {
				return err
			}

			keep := activeSessionWindow
			if force {
				keep = 0
			}
			res, err := clearSnapshotDir(dir, time.Now().Add(-keep))
			if err != nil {
				return err
			}
			if res.skipped > 0 {
				printWarning("Kept %d recently used sessions (--force removes them)", res.skipped)
			}
			if res.sessions == 0 {
				printInfo("Nothing to remove")
				return nil
			}
			printSuccess("Removed %d sessions (%d snapshots)", res.sessions, res.files)
			printDetail("Directory: %s", dir)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "also remove sessions that may still be in use")
	return cmd
}

func (c *CLI) historyPathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the snapshot directory path",
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := c.snapshotDir()
			if err != nil {
				return err
			}
			fmt.Println(dir)
			return nil
		},
	}
}

// snapshotDir returns the configured file history directory.
func (c *CLI) snapshotDir() (string, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return "", err
	}
	if cfg.History.Dir != "" {
		return cfg.History.Dir, nil
	}
	dir, err := historyDir()
	if err != nil {
		return "", fmt.Errorf("get history dir: %w", err)
	}
	return dir, nil
}

// clearResult counts what clearSnapshotDir removed and kept.
type clearResult struct {
	sessions int
	files    int
	skipped  int
}

// clearSnapshotDir removes the session directories under dir last modified
// before cutoff. Newer ones are counted as skipped. A missing dir is empty.
func clearSnapshotDir(dir string, cutoff time.Time) (clearResult, error) {
	var res clearResult
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("read history dir: %w", err)
	}

	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), sessionDirPrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			res.skipped++
			continue
		}
		path := filepath.Join(dir, e.Name())
		snaps, _ := filepath.Glob(filepath.Join(path, "*.png"))
		if err := os.RemoveAll(path); err != nil {
			continue // skip, keep clearing the rest
		}
		res.sessions++
		res.files += len(snaps)
	}
	return res, nil
}
