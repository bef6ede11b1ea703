package domain

import (
	"context"
	"time"
)

// Schedule is a recurring weekly work window for one staff member, expressed
// as minutes of day in the tenant's timezone. Overlapping schedules for the
// same staff and weekday are legal and get merged by the availability pipeline.
type Schedule struct {
	ID          string
	TenantID    string
	StaffID     string
	Weekday     time.Weekday
	StartMinute int // minutes after midnight, tenant-local
	EndMinute   int
	IsActive    bool
}

// BlockingType classifies ad-hoc staff unavailability.
type BlockingType string

const (
	BlockingTypeBlock    BlockingType = "block"
	BlockingTypeAbsence  BlockingType = "absence"
	BlockingTypeVacation BlockingType = "vacation"
)

// Blocking is a one-off unavailability range subtracted from schedules.
type Blocking struct {
	ID       string
	TenantID string
	StaffID  string
	Type     BlockingType
	Reason   string
	StartsAt time.Time
	EndsAt   time.Time
}

// ScheduleRepository defines data access for schedules and blockings.
type ScheduleRepository interface {
	ListActiveSchedules(ctx context.Context, tenantID string, staffIDs []string) ([]*Schedule, error)
	ListBlockings(ctx context.Context, tenantID string, staffIDs []string, from, to time.Time) ([]*Blocking, error)
}
