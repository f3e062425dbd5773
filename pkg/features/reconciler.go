package features

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/crewplane/crewd/pkg/observability"
	"github.com/crewplane/crewd/pkg/orgs"
)

// Reconciler periodically re-runs the feature initialization sweep for
// every active organization. Initialization is idempotent, so the sweep is
// cheap for already-initialized pairs; its purpose is to pick up tier
// upgrades and newly registered modules without waiting for a request.
type Reconciler struct {
	registry  *Registry
	directory orgs.Directory
	logger    *observability.Logger
	interval  time.Duration
	cron      *cron.Cron
}

// NewReconciler creates a reconciler sweeping at the given interval
func NewReconciler(registry *Registry, directory orgs.Directory, logger *observability.Logger, interval time.Duration) *Reconciler {
	return &Reconciler{
		registry:  registry,
		directory: directory,
		logger:    logger,
		interval:  interval,
		cron:      cron.New(),
	}
}

// Start schedules the sweep and begins running it
func (r *Reconciler) Start() error {
	spec := fmt.Sprintf("@every %s", r.interval)
	if _, err := r.cron.AddFunc(spec, r.Sweep); err != nil {
		return fmt.Errorf("failed to schedule feature reconciler: %w", err)
	}
	r.cron.Start()
	r.logger.WithField("interval", r.interval.String()).Info("feature reconciler started")
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish
func (r *Reconciler) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
}

// Sweep runs one reconciliation pass over all active organizations.
// Per-organization failures are logged and do not stop the pass.
func (r *Reconciler) Sweep() {
	ctx := context.Background()

	organizations, err := r.directory.ListActive(ctx)
	if err != nil {
		r.logger.WithError(err).Error("feature reconciler failed to list organizations")
		return
	}

	for _, org := range organizations {
		if err := r.registry.InitializeOrganizationFeatures(ctx, org); err != nil {
			r.logger.WithError(err).WithField("organization_id", org.ID).Error("feature reconciliation failed for organization")
		}
	}
}
