package reset

import (
	"context"
	"time"

	"github.com/lineops/lineops/internal/data"
	"github.com/lineops/lineops/internal/marker"
	"github.com/lineops/lineops/internal/timewindow"
	"go.uber.org/zap"
)

// LazySweeper is the client-side compensation for the scheduled job: the
// job runs in one fixed timezone on its own cadence, so screens re-check
// staleness on every load and patch what the job has not reached yet.
// Everything here is best effort; failures are logged and swallowed,
// never shown to the user. Duplicate sweeps across devices are harmless
// because clearing an already-clear flag changes nothing.
type LazySweeper struct {
	Records    data.RecordRepository
	Markers    marker.Store
	Logger     *zap.Logger
	Clock      func() time.Time
	CutoffHour int
	Location   *time.Location
}

func NewLazySweeper(records data.RecordRepository, markers marker.Store, logger *zap.Logger) *LazySweeper {
	return &LazySweeper{
		Records:    records,
		Markers:    markers,
		Logger:     logger,
		Clock:      time.Now,
		CutoffHour: timewindow.DefaultCutoffHour,
		Location:   time.Local,
	}
}

func (ls *LazySweeper) Now() time.Time {
	var now time.Time
	if ls.Clock != nil {
		now = ls.Clock()
	} else {
		now = time.Now()
	}
	if ls.Location != nil {
		now = now.In(ls.Location)
	}
	return now
}

// SweepStaleCompletions loads one list and clears the completion flag on
// every record completed 24 hours or more ago, returning the refreshed
// view for the screen to render. When the fetch itself fails there is
// nothing to show and the error propagates; a failed patch only logs,
// and the unpatched view is returned so the screen still renders.
func (ls *LazySweeper) SweepStaleCompletions(ctx context.Context, tenantId string, listType data.ListType) ([]data.ListRecordDTO, error) {
	now := ls.Now()
	view, err := ls.Records.ListAll(ctx, tenantId, listType)
	if err != nil {
		ls.Logger.Warn("Lazy sweep could not load list",
			zap.String("tenant", tenantId),
			zap.String("list", string(listType)),
			zap.Error(err),
		)
		return nil, err
	}

	var staleIds []string
	staleIndex := make(map[string]bool)
	for _, record := range view {
		if record.Done && timewindow.StaleCompletion(record.DoneTime, now) {
			staleIds = append(staleIds, record.SK)
			staleIndex[record.SK] = true
		}
	}
	if len(staleIds) == 0 {
		return view, nil
	}

	if _, err := ls.Records.BatchResetFlags(ctx, tenantId, listType, staleIds); err != nil {
		ls.Logger.Warn("Lazy sweep could not reset stale completions",
			zap.String("tenant", tenantId),
			zap.String("list", string(listType)),
			zap.Int("stale", len(staleIds)),
			zap.Error(err),
		)
		return view, nil
	}

	for i := range view {
		if staleIndex[view[i].SK] {
			view[i].Done = false
			view[i].DoneTime = nil
		}
	}
	ls.Logger.Debug("Lazy sweep reset stale completions",
		zap.String("tenant", tenantId),
		zap.String("list", string(listType)),
		zap.Int("reset", len(staleIds)),
	)
	return view, nil
}

// ResetChecklistOncePerDay is the second checklist variant: instead of
// per-record staleness it keeps a device-local marker of the last
// business day a full reset ran, and once the cutoff rolls the day over
// it clears every completed checklist record unconditionally. At most
// one reset per business day per device; the marker is not shared
// between devices.
func (ls *LazySweeper) ResetChecklistOncePerDay(ctx context.Context, tenantId string) (bool, error) {
	now := ls.Now()
	today := timewindow.BusinessDayDate(now, ls.CutoffHour)

	lastReset, err := ls.Markers.LastReset(tenantId)
	if err != nil {
		// A broken marker store degrades to resetting again, which the
		// flag semantics tolerate.
		ls.Logger.Warn("Could not read reset marker", zap.String("tenant", tenantId), zap.Error(err))
		lastReset = ""
	}
	if lastReset == today {
		return false, nil
	}

	completed, err := ls.Records.ListCompleted(ctx, tenantId, data.ListChecklist)
	if err != nil {
		ls.Logger.Warn("Checklist reset could not load records",
			zap.String("tenant", tenantId),
			zap.Error(err),
		)
		return false, nil
	}
	if len(completed) > 0 {
		recordIds := make([]string, len(completed))
		for i, record := range completed {
			recordIds[i] = record.SK
		}
		if _, err := ls.Records.BatchResetFlags(ctx, tenantId, data.ListChecklist, recordIds); err != nil {
			ls.Logger.Warn("Checklist reset could not clear flags",
				zap.String("tenant", tenantId),
				zap.Int("completed", len(recordIds)),
				zap.Error(err),
			)
			return false, nil
		}
	}

	if err := ls.Markers.SetLastReset(tenantId, today); err != nil {
		ls.Logger.Warn("Could not persist reset marker", zap.String("tenant", tenantId), zap.Error(err))
	}
	ls.Logger.Debug("Checklist reset ran",
		zap.String("tenant", tenantId),
		zap.String("businessDay", today),
		zap.Int("cleared", len(completed)),
	)
	return true, nil
}
