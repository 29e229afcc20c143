// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/observability"
	"github.com/qolzam/forum/internal/pkg/log"
	usermodels "github.com/qolzam/forum/users/models"
	userrepository "github.com/qolzam/forum/users/repository"
	"github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/repository"
	"github.com/qolzam/forum/votes/targets"
)

// Reconcile run results
const (
	ResultOK    = "ok"
	ResultError = "error"
)

// scoreTolerance absorbs float noise when comparing stored and recomputed scores.
const scoreTolerance = 1e-9

// ReconcileReport summarises one reconciliation pass.
type ReconcileReport struct {
	TargetsScanned  int           `json:"targetsScanned"`
	TargetsRepaired int           `json:"targetsRepaired"`
	ScoresRefreshed int           `json:"scoresRefreshed"`
	UsersScanned    int           `json:"usersScanned"`
	UsersRepaired   int           `json:"usersRepaired"`
	Duration        time.Duration `json:"duration"`
}

// ReconcilerConfig tunes the reconciler.
type ReconcilerConfig struct {
	BatchSize int
	Interval  time.Duration
}

// Reconciler rebuilds denormalized counters from the vote ledger, which is the source of
// truth. It also refreshes hot scores, which decay with wall-clock time.
type Reconciler struct {
	votes    repository.VoteRepository
	users    userrepository.UserRepository
	registry *targets.Registry
	tx       interfaces.TxRunner
	metrics  *observability.MetricsCollector
	cfg      ReconcilerConfig
	now      func() time.Time

	// One pass at a time.
	running sync.Mutex
}

// NewReconciler creates a reconciler.
func NewReconciler(votes repository.VoteRepository, users userrepository.UserRepository, registry *targets.Registry,
	tx interfaces.TxRunner, metrics *observability.MetricsCollector, cfg ReconcilerConfig) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if tx == nil {
		tx = interfaces.NoTransaction
	}
	return &Reconciler{
		votes:    votes,
		users:    users,
		registry: registry,
		tx:       tx,
		metrics:  metrics,
		cfg:      cfg,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ReconcileTarget rewrites the counters and score of one target from the ledger.
// It reports whether the stored counters had drifted.
func (r *Reconciler) ReconcileTarget(ctx context.Context, kind models.TargetType, id uuid.UUID) (bool, error) {
	target, ok := r.registry.Get(kind)
	if !ok {
		return false, fmt.Errorf("unknown target type %q", kind)
	}

	var drifted bool
	err := r.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		drifted = false
		snap, err := target.Load(txCtx, id)
		if err != nil {
			return err
		}
		tallies, err := r.votes.CountByTargets(txCtx, kind, []uuid.UUID{id})
		if err != nil {
			return err
		}
		ledger := tallies[id]
		score := target.Rank(ledger, snap.CreatedAt, r.now())

		if ledger != snap.Counts {
			drifted = true
			r.reportTargetDrift(txCtx, kind, id, snap.Counts, ledger)
			return target.ResetCounts(txCtx, id, ledger, score)
		}
		if math.Abs(score-snap.Score) > scoreTolerance {
			return target.StoreScore(txCtx, id, score)
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to reconcile %s %s: %w", kind, id, err)
	}
	return drifted, nil
}

// ReconcileAll checks every target of every kind, then every user's reputation.
func (r *Reconciler) ReconcileAll(ctx context.Context) (*ReconcileReport, error) {
	r.running.Lock()
	defer r.running.Unlock()

	start := time.Now()
	report := &ReconcileReport{}
	authors := make(map[uuid.UUID]struct{})

	err := r.reconcileTargets(ctx, report, authors)
	if err == nil {
		err = r.reconcileUsers(ctx, report, authors)
	}
	report.Duration = time.Since(start)

	if r.metrics != nil {
		result := ResultOK
		if err != nil {
			result = ResultError
		}
		r.metrics.ReconcileRuns.WithLabelValues(result).Inc()
		r.metrics.ReconcileDuration.Observe(report.Duration.Seconds())
	}
	if err != nil {
		return report, err
	}
	log.Info("reconciliation finished: %d targets scanned, %d repaired, %d scores refreshed, %d users scanned, %d repaired in %s",
		report.TargetsScanned, report.TargetsRepaired, report.ScoresRefreshed, report.UsersScanned, report.UsersRepaired, report.Duration)
	return report, nil
}

func (r *Reconciler) reconcileTargets(ctx context.Context, report *ReconcileReport, authors map[uuid.UUID]struct{}) error {
	for _, target := range r.registry.All() {
		kind := target.Kind()
		after := uuid.Nil
		for {
			if err := ctx.Err(); err != nil {
				return err
			}
			batch, err := target.Scan(ctx, after, r.cfg.BatchSize)
			if err != nil {
				return fmt.Errorf("failed to scan %s: %w", kind, err)
			}
			if len(batch) == 0 {
				break
			}
			after = batch[len(batch)-1].ID

			ids := make([]uuid.UUID, len(batch))
			for i, snap := range batch {
				ids[i] = snap.ID
			}
			tallies, err := r.votes.CountByTargets(ctx, kind, ids)
			if err != nil {
				return fmt.Errorf("failed to tally %s votes: %w", kind, err)
			}

			now := r.now()
			for _, snap := range batch {
				report.TargetsScanned++
				authors[snap.AuthorID] = struct{}{}

				ledger := tallies[snap.ID]
				stale := math.Abs(target.Rank(ledger, snap.CreatedAt, now)-snap.Score) > scoreTolerance
				if ledger == snap.Counts && !stale {
					continue
				}
				drifted, err := r.ReconcileTarget(ctx, kind, snap.ID)
				if err != nil {
					// A concurrent vote won; the next pass sees the settled state.
					log.Warn("%v", err)
					continue
				}
				if drifted {
					report.TargetsRepaired++
				} else {
					report.ScoresRefreshed++
				}
			}
			if len(batch) < r.cfg.BatchSize {
				break
			}
		}
	}
	return nil
}

func (r *Reconciler) reconcileUsers(ctx context.Context, report *ReconcileReport, authors map[uuid.UUID]struct{}) error {
	after := uuid.Nil
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch, err := r.users.Scan(ctx, after, r.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("failed to scan users: %w", err)
		}
		for _, user := range batch {
			delete(authors, user.ObjectId)
			if err := r.reconcileUser(ctx, report, user.ObjectId); err != nil {
				return err
			}
		}
		if len(batch) < r.cfg.BatchSize {
			break
		}
		after = batch[len(batch)-1].ObjectId
	}

	// Authors without a user document still have received counts to restore.
	for authorID := range authors {
		if err := r.reconcileUser(ctx, report, authorID); err != nil {
			return err
		}
	}
	return nil
}

// reconcileUser re-reads the user inside a transaction so a vote committed after the scan
// is neither overwritten nor reported as drift.
func (r *Reconciler) reconcileUser(ctx context.Context, report *ReconcileReport, userID uuid.UUID) error {
	report.UsersScanned++
	var repaired bool
	err := r.tx.WithTransaction(ctx, func(txCtx context.Context) error {
		repaired = false
		var stored usermodels.Reputation
		user, err := r.users.FindByID(txCtx, userID)
		switch {
		case err == nil:
			stored = user.Reputation
		case !errors.Is(err, interfaces.ErrNoDocuments):
			return err
		}
		want, err := r.expectedReputation(txCtx, userID)
		if err != nil {
			return err
		}
		if want == stored {
			return nil
		}
		r.reportUserDrift(txCtx, userID, stored, want)
		if err := r.users.SetReputation(txCtx, userID, want); err != nil {
			return err
		}
		repaired = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to repair reputation of %s: %w", userID, err)
	}
	if repaired {
		report.UsersRepaired++
	}
	return nil
}

func (r *Reconciler) expectedReputation(ctx context.Context, userID uuid.UUID) (usermodels.Reputation, error) {
	given, err := r.votes.CountByVoter(ctx, userID)
	if err != nil {
		return usermodels.Reputation{}, fmt.Errorf("failed to tally votes of %s: %w", userID, err)
	}
	var received models.Counts
	for _, target := range r.registry.All() {
		counts, err := target.CountsByAuthor(ctx, userID)
		if err != nil && !errors.Is(err, interfaces.ErrNoDocuments) {
			return usermodels.Reputation{}, fmt.Errorf("failed to sum %s votes of %s: %w", target.Kind(), userID, err)
		}
		received.Up += counts.Up
		received.Down += counts.Down
	}
	return usermodels.Reputation{
		UpvotesGiven:      given.Up,
		DownvotesGiven:    given.Down,
		UpvotesReceived:   received.Up,
		DownvotesReceived: received.Down,
	}, nil
}

func (r *Reconciler) reportTargetDrift(ctx context.Context, kind models.TargetType, id uuid.UUID, stored, ledger models.Counts) {
	log.WarnWithContext(ctx, "%s %s counters drifted: stored %d/%d, ledger %d/%d",
		kind, id, stored.Up, stored.Down, ledger.Up, ledger.Down)
	if r.metrics == nil {
		return
	}
	if stored.Up != ledger.Up {
		r.metrics.RecordDrift(string(kind), targets.FieldUpvoteCount)
	}
	if stored.Down != ledger.Down {
		r.metrics.RecordDrift(string(kind), targets.FieldDownvoteCount)
	}
}

func (r *Reconciler) reportUserDrift(ctx context.Context, userID uuid.UUID, stored, want usermodels.Reputation) {
	log.WarnWithContext(ctx, "reputation of user %s drifted: stored %+v, expected %+v", userID, stored, want)
	if r.metrics == nil {
		return
	}
	for field, differs := range map[string]bool{
		usermodels.FieldUpvotesGiven:      stored.UpvotesGiven != want.UpvotesGiven,
		usermodels.FieldDownvotesGiven:    stored.DownvotesGiven != want.DownvotesGiven,
		usermodels.FieldUpvotesReceived:   stored.UpvotesReceived != want.UpvotesReceived,
		usermodels.FieldDownvotesReceived: stored.DownvotesReceived != want.DownvotesReceived,
	} {
		if differs {
			r.metrics.RecordDrift(EntityUser, field)
		}
	}
}

// Start runs ReconcileAll every configured interval until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	if r.cfg.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	log.Info("reconciler started, interval %s", r.cfg.Interval)
	for {
		select {
		case <-ctx.Done():
			log.Info("reconciler stopped")
			return
		case <-ticker.C:
			if _, err := r.ReconcileAll(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Error("reconciliation failed: %v", err)
			}
		}
	}
}
