// Copyright (c) 2024 Telar Social
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	uuid "github.com/gofrs/uuid"
	"github.com/qolzam/forum/internal/database/interfaces"
	"github.com/qolzam/forum/internal/database/observability"
	notificationmodels "github.com/qolzam/forum/notifications/models"
	voteerrors "github.com/qolzam/forum/votes/errors"
	"github.com/qolzam/forum/votes/models"
	"github.com/qolzam/forum/votes/repository"
	"github.com/qolzam/forum/votes/targets"
)

// MaxTargetsPerLookup bounds GetUserVotes.
const MaxTargetsPerLookup = 100

// Notifier accepts notifications without blocking the caller.
type Notifier interface {
	Notify(ctx context.Context, n notificationmodels.Notification) bool
}

// VoteService defines the interface for vote operations
type VoteService interface {
	// Vote applies the requested vote of voterID: a first vote creates, repeating the same
	// vote toggles it off and the opposite vote flips it. Ledger, counters, score and
	// reputation change as one unit.
	Vote(ctx context.Context, voterID uuid.UUID, req *models.VoteRequest) (*models.VoteResult, error)

	// GetUserVotes returns the voter's state on each of the given targets.
	GetUserVotes(ctx context.Context, voterID uuid.UUID, targetType string, targetIDs []string) (map[uuid.UUID]models.State, error)
}

// Dependencies bundles the collaborators of the vote service.
type Dependencies struct {
	Votes      repository.VoteRepository
	Targets    *targets.Registry
	Tx         interfaces.TxRunner
	Scores     *ScoreAccumulator
	Reputation *ReputationPropagator
	// Notifier is optional.
	Notifier Notifier
	Metrics  *observability.MetricsCollector
}

type voteService struct {
	Dependencies
	now func() time.Time
}

// NewVoteService creates a new instance of the vote service
func NewVoteService(deps Dependencies) VoteService {
	if deps.Tx == nil {
		deps.Tx = interfaces.NoTransaction
	}
	return &voteService{Dependencies: deps, now: func() time.Time { return time.Now().UTC() }}
}

// validVote is a request that passed validation.
type validVote struct {
	voter    uuid.UUID
	target   targets.Target
	targetID uuid.UUID
	voteType models.VoteType
}

func (s *voteService) validate(voterID uuid.UUID, req *models.VoteRequest) (*validVote, error) {
	if voterID == uuid.Nil {
		return nil, voteerrors.NewValidationError(voteerrors.CodeValidationFailed, "voterId is required")
	}
	if req == nil {
		return nil, voteerrors.NewValidationError(voteerrors.CodeInvalidRequest, "request body is required")
	}
	kind, ok := models.ParseTargetType(req.TargetType)
	if !ok {
		return nil, voteerrors.NewValidationError(voteerrors.CodeInvalidTargetType,
			fmt.Sprintf("targetType must be Post or Comment, got %q", req.TargetType))
	}
	target, ok := s.Targets.Get(kind)
	if !ok {
		return nil, voteerrors.NewValidationError(voteerrors.CodeInvalidTargetType,
			fmt.Sprintf("targetType %s is not votable", kind))
	}
	targetID, err := uuid.FromString(req.TargetID)
	if err != nil || targetID == uuid.Nil {
		return nil, voteerrors.NewValidationError(voteerrors.CodeInvalidUUID, "Invalid targetId format")
	}
	voteType, ok := models.ParseVoteType(req.VoteType)
	if !ok {
		return nil, voteerrors.NewValidationError(voteerrors.CodeInvalidVoteType,
			fmt.Sprintf("voteType must be upvote or downvote, got %q", req.VoteType))
	}
	return &validVote{voter: voterID, target: target, targetID: targetID, voteType: voteType}, nil
}

func (s *voteService) Vote(ctx context.Context, voterID uuid.UUID, req *models.VoteRequest) (*models.VoteResult, error) {
	v, err := s.validate(voterID, req)
	if err != nil {
		return nil, err
	}

	var (
		result     *models.VoteResult
		transition models.Transition
		authorID   uuid.UUID
	)
	err = s.Tx.WithTransaction(ctx, func(txCtx context.Context) error {
		snap, err := v.target.Load(txCtx, v.targetID)
		if err != nil {
			return voteerrors.FromRepository("load target", err)
		}
		if snap.Deleted {
			return voteerrors.NewNotFoundError(fmt.Sprintf("%s not found", v.target.Kind()))
		}
		if snap.AuthorID == v.voter {
			return voteerrors.NewSelfVoteError()
		}

		key := models.VoteKey{Voter: v.voter, TargetType: v.target.Kind(), TargetID: v.targetID}
		existing, err := s.Votes.Find(txCtx, key)
		if err != nil {
			return voteerrors.FromRepository("read vote", err)
		}

		var previous models.VoteType
		if existing != nil {
			previous = existing.VoteType
		}
		transition = models.NextTransition(models.StateOf(existing), v.voteType)
		if err := s.writeLedger(txCtx, transition, key, previous, v.voteType); err != nil {
			return err
		}

		delta := transition.Delta(previous, v.voteType)
		acc, err := s.Scores.Accumulate(txCtx, v.target, snap, delta)
		if err != nil {
			return voteerrors.FromRepository("update target", err)
		}
		if err := s.Reputation.ApplyCounterDelta(txCtx, v.voter, snap.AuthorID, delta); err != nil {
			return voteerrors.FromRepository("update reputation", err)
		}

		authorID = snap.AuthorID
		result = &models.VoteResult{
			UpvoteCount:   acc.Counts.Up,
			DownvoteCount: acc.Counts.Down,
			Score:         acc.Score,
			UserVote:      transition.ResultingState(v.voteType),
		}
		return nil
	})
	if err != nil {
		return nil, voteerrors.FromRepository("vote", err)
	}

	if s.Metrics != nil {
		s.Metrics.RecordVote(string(v.target.Kind()), string(transition))
	}
	if transition == models.TransitionCreate && v.voteType == models.VoteUp && s.Notifier != nil {
		s.Notifier.Notify(ctx, notificationmodels.Notification{
			Recipient:  authorID,
			Sender:     v.voter,
			Type:       v.target.NotificationType(),
			TargetType: v.target.Kind(),
			TargetID:   v.targetID,
		})
	}
	return result, nil
}

// writeLedger performs the conditional ledger write of t. A slot that no longer matches
// what was read is a conflict.
func (s *voteService) writeLedger(ctx context.Context, t models.Transition, key models.VoteKey, previous, requested models.VoteType) error {
	var err error
	switch t {
	case models.TransitionCreate:
		now := s.now()
		id, idErr := uuid.NewV4()
		if idErr != nil {
			return voteerrors.NewDependencyError("generate vote id", idErr)
		}
		err = s.Votes.Insert(ctx, &models.VoteRecord{
			ObjectId:   id,
			Voter:      key.Voter,
			TargetType: key.TargetType,
			TargetID:   key.TargetID,
			VoteType:   requested,
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	case models.TransitionDelete:
		err = s.Votes.Delete(ctx, key, previous)
	case models.TransitionFlip:
		err = s.Votes.UpdateType(ctx, key, previous, requested, s.now())
	}

	switch {
	case err == nil:
		return nil
	case errors.Is(err, interfaces.ErrDuplicateKey), errors.Is(err, interfaces.ErrNoDocuments):
		return voteerrors.NewConflictError(err)
	default:
		return voteerrors.FromRepository("write vote", err)
	}
}

func (s *voteService) GetUserVotes(ctx context.Context, voterID uuid.UUID, targetType string, targetIDs []string) (map[uuid.UUID]models.State, error) {
	kind, ok := models.ParseTargetType(targetType)
	if !ok {
		return nil, voteerrors.NewValidationError(voteerrors.CodeInvalidTargetType,
			fmt.Sprintf("targetType must be Post or Comment, got %q", targetType))
	}
	if len(targetIDs) == 0 || len(targetIDs) > MaxTargetsPerLookup {
		return nil, voteerrors.NewValidationError(voteerrors.CodeValidationFailed,
			fmt.Sprintf("targetIds must list between 1 and %d ids", MaxTargetsPerLookup))
	}

	ids := make([]uuid.UUID, 0, len(targetIDs))
	for _, raw := range targetIDs {
		id, err := uuid.FromString(raw)
		if err != nil {
			return nil, voteerrors.NewValidationError(voteerrors.CodeInvalidUUID, fmt.Sprintf("Invalid targetId %q", raw))
		}
		ids = append(ids, id)
	}

	votes, err := s.Votes.FindByVoterAndTargets(ctx, voterID, kind, ids)
	if err != nil {
		return nil, voteerrors.FromRepository("read votes", err)
	}
	states := make(map[uuid.UUID]models.State, len(ids))
	for _, id := range ids {
		states[id] = models.StateNoVote
		if vt, ok := votes[id]; ok {
			states[id] = models.StateOf(&models.VoteRecord{VoteType: vt})
		}
	}
	return states, nil
}
