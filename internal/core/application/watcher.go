package application

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/tokenstd/nip13d/internal/core/domain"
	"github.com/tokenstd/nip13d/internal/core/ports"
)

// watcher is an unexported service running while the main application service
// is started. It refreshes the snapshot of every tracked token on a fixed
// cadence, so command synchronization usually hits the cache instead of the
// network.
type watcher struct {
	repoManager ports.RepoManager
	snapshots   *SnapshotService
	scheduler   ports.SchedulerService
	alerts      ports.Alerts

	interval time.Duration
}

func newWatcher(
	repoManager ports.RepoManager, snapshots *SnapshotService,
	scheduler ports.SchedulerService, alerts ports.Alerts, interval time.Duration,
) *watcher {
	return &watcher{repoManager, snapshots, scheduler, alerts, interval}
}

func (w *watcher) start() error {
	w.scheduler.Start()
	if err := w.scheduler.ScheduleTaskRecurring(w.interval, w.refreshAll); err != nil {
		return err
	}

	log.Debugf("watcher: refreshing snapshots every %s", w.interval)
	return nil
}

func (w *watcher) stop() {
	w.scheduler.Stop()
}

// refreshAll walks the tracked tokens and refreshes each snapshot. Failures
// are logged per token, one unreachable token must not starve the others.
func (w *watcher) refreshAll() {
	ctx := context.Background()

	tokens, err := w.repoManager.Tokens().GetAllTokens(ctx)
	if err != nil {
		log.WithError(err).Error("watcher: failed to list tracked tokens")
		return
	}

	for _, token := range tokens {
		identifier, err := trackedIdentifier(token)
		if err != nil {
			log.WithError(err).WithField("token", token.TokenId).
				Warn("watcher: skipping token with invalid identity")
			continue
		}
		if _, err := w.snapshots.Refresh(ctx, identifier); err != nil {
			log.WithError(err).WithField("token", token.TokenId).
				Warn("watcher: failed to refresh snapshot")
			w.publishStale(ctx, token, err)
		}
	}
}

// publishStale reports a failed refresh. AlertManager groups repeated sends
// under the same token label, so one flapping token raises one alert.
func (w *watcher) publishStale(ctx context.Context, token domain.TrackedToken, cause error) {
	if w.alerts == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	alert := ports.SnapshotStaleAlert{
		TokenId: token.TokenId,
		Name:    token.Name,
		Reason:  cause.Error(),
	}
	if err := w.alerts.Publish(ctx, ports.SnapshotStale, alert); err != nil {
		log.WithError(err).WithField("token", token.TokenId).
			Warn("watcher: failed to publish alert")
	}
}
