package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/ledgerbook/ledger-in-go/pkg/batch"
	"github.com/ledgerbook/ledger-in-go/pkg/db"
)

// applyCmd represents the apply command
var applyCmd = &cobra.Command{
	Use:   "apply <file>",
	Short: "Apply a batch of mutations",
	Long: `Apply a YAML batch of create, update and delete steps.

Every step goes through the mutation engine and prints one outcome. A
failing step does not stop the steps after it.

Example:
  ledgerctl apply household.yml --as 1
  ledgerctl apply household.yml --as 1 --watch`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		filename := args[0]
		watch, _ := cmd.Flags().GetBool("watch")

		var as *int64
		if cmd.Flags().Changed("as") {
			v, _ := cmd.Flags().GetInt64("as")
			as = &v
		}

		var err error
		if watch {
			err = watchBatch(filename, as)
		} else {
			err = applyBatch(filename, as)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to apply batch: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().Int64("as", 0, "User id to act as (overrides the document's 'as')")
	applyCmd.Flags().Bool("watch", false, "Re-apply the file every time it changes")
}

func newRunner(as *int64) (*batch.Runner, func(), error) {
	engine, database, err := openEngine()
	if err != nil {
		return nil, nil, err
	}
	runner := batch.NewRunner(engine)
	if as != nil {
		runner = runner.WithCaller(*as)
	}
	return runner, func() { _ = db.Close(database) }, nil
}

func applyBatch(filename string, as *int64) error {
	runner, closeStore, err := newRunner(as)
	if err != nil {
		return err
	}
	defer closeStore()

	return applyOnce(context.Background(), runner, filename)
}

func applyOnce(ctx context.Context, runner *batch.Runner, filename string) error {
	results, err := runner.ApplyFile(ctx, filename)
	if err != nil {
		return err
	}
	for _, r := range results {
		fmt.Println(r)
	}
	fmt.Printf("%d/%d steps succeeded\n", batch.Succeeded(results), len(results))
	return nil
}

func watchBatch(filename string, as *int64) error {
	runner, closeStore, err := newRunner(as)
	if err != nil {
		return err
	}
	defer closeStore()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory so a replaced file is seen as well.
	if err := watcher.Add(filepath.Dir(filename)); err != nil {
		return fmt.Errorf("failed to watch %s: %w", filename, err)
	}
	target := filepath.Clean(filename)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Watching %s for changes\n", filename)
	if err := applyOnce(ctx, runner, filename); err != nil {
		fmt.Fprintf(os.Stderr, "Error applying batch: %v\n", err)
	}

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				fmt.Printf("[%s] File modified, applying batch...\n", time.Now().Format(time.RFC3339))
				if err := applyOnce(ctx, runner, filename); err != nil {
					fmt.Fprintf(os.Stderr, "Error applying batch: %v\n", err)
				}
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintf(os.Stderr, "Watcher error: %v\n", err)
		case <-ctx.Done():
			fmt.Println("\nShutting down...")
			return nil
		}
	}
}
