package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yacobolo/turf/internal/diag"
	"github.com/yacobolo/turf/internal/watch"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [patterns...]",
		Short: "Generate, then regenerate when a stylesheet or one of its imports changes",
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadConfig(cmd)
		},
		RunE: runWatch,
	}
	addGenerateFlags(cmd)
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	sess, err := newSession(args)
	if err != nil {
		return err
	}
	defer sess.Close()

	files, err := sess.find()
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no stylesheets match %v", sess.cfg.Patterns)
	}
	if err := sess.checkOutputs(files); err != nil {
		return err
	}

	w, err := watch.New(sess.log)
	if err != nil {
		return err
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// latest keeps the last good output per stylesheet, in input order.
	latest := make([]*output, len(files))
	index := make(map[string]int, len(files))
	for i, f := range files {
		index[f] = i
	}

	rebuild := func(targets []string) {
		outputs, err := sess.generateAll(ctx, targets)
		sess.report(err)

		for i, target := range targets {
			deps := []string{target}
			if o := outputs[i]; o != nil {
				latest[index[target]] = o
				deps = append(deps, o.Result.Dependencies...)
			}
			if err := w.Track(target, deps); err != nil {
				sess.log.Warn("Cannot watch dependencies", zap.String("stylesheet", target), zap.Error(err))
			}
		}

		sess.report(sess.writeBundle(latest))
		sess.log.Info("Generated", zap.Int("stylesheets", len(targets)))
	}

	rebuild(files)
	sess.log.Info("Watching for changes", zap.Int("stylesheets", len(files)))

	return w.Run(ctx, watch.DefaultWindow, rebuild)
}

// report prints every error in err without stopping.
func (s *session) report(err error) {
	for _, e := range multierr.Errors(err) {
		fmt.Fprintln(s.stderr, diag.Render(e, s.useColors))
	}
}
