package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"os/signal"
	"time"

	wizard "github.com/simon020286/go-wizard"
	"github.com/simon020286/go-wizard/approval"
	"github.com/simon020286/go-wizard/builder"
	"github.com/simon020286/go-wizard/config"
	"github.com/simon020286/go-wizard/devportal"
	"github.com/simon020286/go-wizard/internal/logging"
	"github.com/simon020286/go-wizard/internal/ui"
	"github.com/simon020286/go-wizard/models"
	"github.com/simon020286/go-wizard/telemetry"
	"github.com/spf13/cobra"
)

type runOptions struct {
	service      string
	waitApproval bool
	poll         time.Duration
	trace        bool
}

func (o runOptions) validate() error {
	if o.waitApproval && o.poll <= 0 {
		return fmt.Errorf("--poll must be positive, got %s", o.poll)
	}
	return nil
}

func runCmd(dbPath *string) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <wizard.yaml>",
		Short: "Run a credential wizard",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.validate(); err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			return runWizard(ctx, cmd.OutOrStdout(), args[0], *dbPath, opts)
		},
	}

	cmd.Flags().StringVar(&opts.service, "service", "devportal", "Service definition used to reach the developer portal")
	cmd.Flags().BoolVar(&opts.waitApproval, "wait-approval", false, "Wait for pending approvals instead of exiting")
	cmd.Flags().DurationVar(&opts.poll, "poll", 5*time.Second, "Approval polling interval")
	cmd.Flags().BoolVar(&opts.trace, "trace", false, "Log a span for the run and for every step")
	return cmd
}

func runWizard(ctx context.Context, out io.Writer, path, dbPath string, opts runOptions) (err error) {
	if err := opts.validate(); err != nil {
		return err
	}

	cfg, err := config.LoadWizardConfig(path)
	if err != nil {
		return err
	}

	def, ok := builder.GetGlobalServiceRegistry().Get(opts.service)
	if !ok {
		return fmt.Errorf("service '%s' not found", opts.service)
	}

	values := make(map[string]any, len(cfg.Variables)+len(cfg.Secrets))
	maps.Copy(values, cfg.Variables)
	maps.Copy(values, cfg.Secrets)
	portal, err := devportal.NewClient(def, values)
	if err != nil {
		return fmt.Errorf("create portal client: %w", err)
	}

	w, err := wizard.BuildFromConfig(cfg, builder.Dependencies{Portal: portal, Out: out})
	if err != nil {
		return err
	}
	w.AddListener(logging.NewEventLogger(nil))

	if opts.trace {
		provider := telemetry.NewProvider(nil)
		defer func() { _ = provider.Shutdown(context.Background()) }()

		tl, terr := telemetry.NewListener(ctx, provider.Tracer("credwizard"))
		if terr != nil {
			return terr
		}
		w.AddListener(tl)
		defer func() {
			tl.Fail(err)
			tl.Close(err)
		}()
	}

	store, err := approval.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()
	gate := approval.NewGate(store)

	if err := w.Start(cfg.InitialContext()); err != nil {
		return err
	}
	return drive(ctx, out, w, gate, opts)
}

// drive presents steps until one neither advances nor blocks, or until the
// wizard blocks and the caller does not wait for approval
func drive(ctx context.Context, out io.Writer, w *wizard.Wizard, gate *approval.Gate, opts runOptions) error {
	labels := w.Labels()

	for {
		before := w.State()
		fmt.Fprintln(out, ui.Progress(labels, before.CurrentIndex, before.Status))

		presentation, err := w.Present(ctx)
		if err != nil {
			return fmt.Errorf("step '%s': %w", presentation.Label, err)
		}

		after := w.State()
		if after.Status == models.StatusBlocked {
			req, tracked, err := gate.Track(ctx, w.ID(), after)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.BlockedNotice(labels[after.CurrentIndex], wizard.BlockedNotice))
			if !tracked {
				return nil
			}
			fmt.Fprint(out, ui.KeyValues("  ", ui.KV("ref", req.ExternalRef), ui.KV("type", req.WorkflowType)))

			if !opts.waitApproval {
				fmt.Fprintln(out, ui.Muted("complete with: credwizard approvals complete "+req.ExternalRef+" --decision APPROVED"))
				return nil
			}

			decision, err := gate.Poll(ctx, w, req.ExternalRef, opts.poll)
			if err != nil {
				return err
			}
			if decision == approval.StatusRejected {
				fmt.Fprintln(out, ui.WarnMsg("%s rejected, starting over", req.ExternalRef))
			} else {
				fmt.Fprintln(out, ui.SuccessMsg("%s approved", req.ExternalRef))
			}
			continue
		}

		if after.CurrentIndex == before.CurrentIndex {
			if redirect, ok := after.Context.String(models.KeyRedirect); ok {
				fmt.Fprintln(out, ui.InfoMsg("continue at %s", redirect))
			}
			fmt.Fprintln(out, ui.SuccessMsg("wizard complete"))
			return nil
		}
	}
}
