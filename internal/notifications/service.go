package notifications

import "time"

// RunReport is the operator-facing summary published after a daily
// reset run.
type RunReport struct {
	StartedAt      time.Time `json:"startedAt"`
	FinishedAt     time.Time `json:"finishedAt"`
	Tenants        int       `json:"tenants"`
	RecordsDeleted int       `json:"recordsDeleted"`
	FlagsReset     int       `json:"flagsReset"`
	Failures       []string  `json:"failures,omitempty"`
}

// RunPublisher delivers run reports to an operations channel. Publishing
// is best effort and carries no record-store side effects; the reset
// actions themselves never notify anyone.
type RunPublisher interface {
	PublishRunReport(report RunReport) error
}
