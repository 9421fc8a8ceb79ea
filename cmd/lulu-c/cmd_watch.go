package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/andrei91ro/lulu-c/internal/generate"
)

var watchDebounce time.Duration

// watchCmd regenerates the units whenever the model changes
var watchCmd = &cobra.Command{
	Use:   "watch <model.yaml> [colony]",
	Short: "Regenerate the C units whenever the model changes",
	Long: `Generates once, then watches the model file (and the feature policy file,
when one is configured) and regenerates on every save. A failed regeneration
is reported and the previously written units are kept. Stop with Ctrl+C.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	p := resolveParams(cmd, args)
	w, err := generate.NewWatcher(p, watchDebounce)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	w.OnResult = func(res *generate.Result, err error) {
		stamp := mutedStyle.Render(time.Now().Format("15:04:05"))
		if err != nil {
			fmt.Fprintf(out, "%s %s %v\n", stamp, errorStyle.Render("✗"), err)
			return
		}
		fmt.Fprintf(out, "%s %s colony %s -> %s, %s\n", stamp, successStyle.Render("✓"),
			res.Colony.Name, p.HeaderPath(), p.SourcePath())
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := w.Run(ctx); err != nil {
		return err
	}
	stats := w.Stats()
	fmt.Fprintf(out, "%s\n", mutedStyle.Render(fmt.Sprintf("%d regenerations, %d failed", stats.Regenerations, stats.Failures)))
	return nil
}
