package reset

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/exceptions"
	"github.com/lineops/lineops/internal/notifications"
	"go.uber.org/zap"
)

// Sweeper runs the once-a-business-day reset across every tenant. It is
// stateless: no run ledger exists, and because every scheduled action is
// an unconditional purge or an idempotent flag clear, re-running within
// the same day is safe.
type Sweeper struct {
	Records   data.RecordRepository
	Tenants   data.TenantRepository
	Logger    *zap.Logger
	Publisher notifications.RunPublisher
	Clock     func() time.Time
}

func NewSweeper(records data.RecordRepository, tenants data.TenantRepository, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		Records: records,
		Tenants: tenants,
		Logger:  logger,
		Clock:   time.Now,
	}
}

func (s *Sweeper) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

// TenantSummary is the synchronous result of resetting one tenant,
// returned to the manual trigger caller.
type TenantSummary struct {
	TenantId string           `json:"tenantId"`
	Deleted  int              `json:"deleted"`
	Reset    int              `json:"reset"`
	Failures map[string]error `json:"-"`
}

// ResetTenant applies every scheduled policy to one tenant. A failing
// list type is logged and skipped; the remaining list types still run.
// When any list failed the summary is returned together with a
// PartialResetError carrying the per-list causes.
func (s *Sweeper) ResetTenant(ctx context.Context, tenantId string) (TenantSummary, error) {
	now := s.now()
	summary := TenantSummary{
		TenantId: tenantId,
		Failures: make(map[string]error),
	}
	for _, policy := range ScheduledPolicies() {
		outcome, err := ApplyPolicy(ctx, s.Records, tenantId, policy.ListType, policy.Action, now)
		if err != nil {
			s.Logger.Error("List reset failed",
				zap.String("tenant", tenantId),
				zap.String("list", string(policy.ListType)),
				zap.String("action", policy.Action.String()),
				zap.Error(err),
			)
			summary.Failures[string(policy.ListType)] = err
			continue
		}
		summary.Deleted += outcome.Deleted
		summary.Reset += outcome.Reset
		s.Logger.Debug("List reset applied",
			zap.String("tenant", tenantId),
			zap.String("list", string(policy.ListType)),
			zap.String("action", policy.Action.String()),
			zap.Int("matched", outcome.Matched),
			zap.Int("deleted", outcome.Deleted),
		)
	}
	if len(summary.Failures) > 0 {
		return summary, exceptions.PartialReset(tenantId, summary.Failures)
	}
	return summary, nil
}

// RunSummary aggregates one full daily run.
type RunSummary struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Tenants    int
	Deleted    int
	Reset      int
	Failures   []string
}

// RunDailyReset enumerates every tenant and resets each concurrently,
// waiting for all of them before returning. Tenant enumeration failing
// is the only error that aborts the run; per-tenant and per-list
// failures are isolated, logged, and collected into the summary. The
// fan-out is unbounded: one goroutine per tenant, no pagination, so the
// platform invocation timeout is the effective bound on registry size.
func (s *Sweeper) RunDailyReset(ctx context.Context) (RunSummary, error) {
	summary := RunSummary{StartedAt: s.now()}
	tenants, err := s.Tenants.ListAll(ctx)
	if err != nil {
		return summary, exceptions.TenantEnumeration(err)
	}
	summary.Tenants = len(tenants)
	s.Logger.Info("Starting daily reset", zap.Int("tenants", len(tenants)))

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, tenant := range tenants {
		tenantId := tenant.SK
		wg.Add(1)
		go func() {
			defer wg.Done()
			tenantSummary, err := s.ResetTenant(ctx, tenantId)
			mu.Lock()
			defer mu.Unlock()
			summary.Deleted += tenantSummary.Deleted
			summary.Reset += tenantSummary.Reset
			if err != nil {
				for list, cause := range tenantSummary.Failures {
					summary.Failures = append(summary.Failures, fmt.Sprintf("%s/%s: %s", tenantId, list, cause))
				}
			}
		}()
	}
	wg.Wait()
	sort.Strings(summary.Failures)
	summary.FinishedAt = s.now()

	s.Logger.Info("Daily reset finished",
		zap.Int("tenants", summary.Tenants),
		zap.Int("deleted", summary.Deleted),
		zap.Int("reset", summary.Reset),
		zap.Int("failures", len(summary.Failures)),
	)
	s.publish(summary)
	return summary, nil
}

func (s *Sweeper) publish(summary RunSummary) {
	if s.Publisher == nil {
		return
	}
	report := notifications.RunReport{
		StartedAt:      summary.StartedAt,
		FinishedAt:     summary.FinishedAt,
		Tenants:        summary.Tenants,
		RecordsDeleted: summary.Deleted,
		FlagsReset:     summary.Reset,
		Failures:       summary.Failures,
	}
	if err := s.Publisher.PublishRunReport(report); err != nil {
		s.Logger.Warn("Failed to publish run report", zap.Error(err))
	}
}
