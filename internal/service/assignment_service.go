package service

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/hotel-service/internal/assignment"
	"github.com/spec-kit/hotel-service/internal/config"
	"github.com/spec-kit/hotel-service/internal/domain"
	"github.com/spec-kit/hotel-service/internal/observability"
	"github.com/spec-kit/hotel-service/internal/repository"
	apperrors "github.com/spec-kit/hotel-service/pkg/util"
)

// errRotationLost signals that another writer advanced the cursor first.
var errRotationLost = errors.New("rotation pointer moved concurrently")

// Resolution is the staff member picked for a task and how.
type Resolution struct {
	Staff  domain.StaffMember
	Policy assignment.Policy
}

// AssignmentService picks the staff member that receives new work.
type AssignmentService struct {
	tx         repository.TxRunner
	maxRetries int
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// AssignmentDependencies bundles collaborators.
type AssignmentDependencies struct {
	Tx      repository.TxRunner
	Metrics *observability.Metrics
	Logger  *zap.Logger
}

// NewAssignmentService creates the service.
func NewAssignmentService(cfg config.AssignmentConfig, deps AssignmentDependencies) *AssignmentService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	retries := cfg.MaxCASRetries
	if retries <= 0 {
		retries = 1
	}
	return &AssignmentService{
		tx:         deps.Tx,
		maxRetries: retries,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// WithRoundRobin advances the delivery rotation and runs fn with the chosen
// staff member inside the same transaction. When the cursor write loses a
// race the whole transaction is replayed, up to the configured limit.
func (s *AssignmentService) WithRoundRobin(ctx context.Context, fn func(ctx context.Context, repos repository.Repositories, res Resolution) error) error {
	policy := string(assignment.PolicyRoundRobin)
	for attempt := 1; attempt <= s.maxRetries; attempt++ {
		err := s.tx.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
			staff, err := s.nextInRotation(ctx, repos)
			if err != nil {
				return err
			}
			return fn(ctx, repos, Resolution{Staff: *staff, Policy: assignment.PolicyRoundRobin})
		})
		switch {
		case err == nil:
			s.metrics.RecordAssignment(policy, "assigned")
			return nil
		case errors.Is(err, errRotationLost):
			s.metrics.RecordRotationRetry()
			s.logger.Debug("rotation cursor moved, retrying", zap.Int("attempt", attempt))
			continue
		case apperrors.HasCode(err, apperrors.CodeNoEligibleStaff):
			s.metrics.RecordAssignment(policy, "no_staff")
			return err
		default:
			return err
		}
	}
	s.metrics.RecordAssignment(policy, "conflict")
	return apperrors.NewRotationConflict(s.maxRetries)
}

func (s *AssignmentService) nextInRotation(ctx context.Context, repos repository.Repositories) (*domain.StaffMember, error) {
	pool, err := repos.Staff.ListAssignable(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(pool) == 0 {
		return nil, apperrors.NewNoEligibleStaff(string(assignment.PolicyRoundRobin))
	}
	ids := make([]string, len(pool))
	byID := make(map[string]domain.StaffMember, len(pool))
	for i, m := range pool {
		ids[i] = m.ID
		byID[m.ID] = m
	}

	last := ""
	cursor, err := repos.Rotation.Get(ctx, domain.RotationOrderDelivery)
	switch {
	case err == nil:
		last = cursor.StaffID
	case errors.Is(err, pgx.ErrNoRows):
	default:
		return nil, apperrors.MapError(err)
	}
	if _, ok := byID[last]; last != "" && !ok {
		s.logger.Debug("rotation cursor points at ineligible staff, restarting",
			zap.String("cursor", domain.RotationOrderDelivery),
			zap.String("staff_id", last))
	}

	next, err := assignment.NextAssignee(ids, last)
	if err != nil {
		return nil, apperrors.NewNoEligibleStaff(string(assignment.PolicyRoundRobin))
	}
	swapped, err := repos.Rotation.CompareAndSwap(ctx, domain.RotationOrderDelivery, last, next)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !swapped {
		return nil, errRotationLost
	}
	chosen := byID[next]
	return &chosen, nil
}

// ResolveLeastLoaded picks the assignee for a scheduled task using repos,
// which should be bound to the caller's transaction. A non-empty
// explicitEmail bypasses selection and must name an active staff account.
func (s *AssignmentService) ResolveLeastLoaded(ctx context.Context, repos repository.Repositories, explicitEmail string) (*Resolution, error) {
	if email := strings.TrimSpace(explicitEmail); email != "" {
		res, err := s.resolveExplicit(ctx, repos, email)
		if err != nil {
			if apperrors.HasCode(err, apperrors.CodeAssigneeInvalid) {
				s.metrics.RecordAssignment(string(assignment.PolicyExplicit), "invalid")
			}
			return nil, err
		}
		s.metrics.RecordAssignment(string(assignment.PolicyExplicit), "assigned")
		return res, nil
	}

	policy := string(assignment.PolicyLeastLoaded)
	pool, err := repos.Staff.ListAssignable(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if len(pool) == 0 {
		s.metrics.RecordAssignment(policy, "no_staff")
		return nil, apperrors.NewNoEligibleStaff(policy)
	}
	ids := make([]string, len(pool))
	for i, m := range pool {
		ids[i] = m.ID
	}
	counts, err := repos.Tasks.CountPendingByAssignee(ctx, ids)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	chosenID, err := assignment.LeastLoaded(ids, counts)
	if err != nil {
		return nil, apperrors.NewNoEligibleStaff(policy)
	}
	for _, m := range pool {
		if m.ID == chosenID {
			s.metrics.RecordAssignment(policy, "assigned")
			return &Resolution{Staff: m, Policy: assignment.PolicyLeastLoaded}, nil
		}
	}
	return nil, apperrors.NewInternalError(errors.New("least loaded pick outside pool"))
}

func (s *AssignmentService) resolveExplicit(ctx context.Context, repos repository.Repositories, email string) (*Resolution, error) {
	staff, err := repos.Staff.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewAssigneeInvalid(email)
		}
		return nil, apperrors.MapError(err)
	}
	if !staff.Assignable() {
		return nil, apperrors.NewAssigneeInvalid(email)
	}
	return &Resolution{Staff: *staff, Policy: assignment.PolicyExplicit}, nil
}
