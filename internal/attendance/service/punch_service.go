package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"punchgate/internal/attendance/domain"
	"punchgate/internal/audit"
	"punchgate/internal/fingerprint"
	"punchgate/internal/telemetry"
	eventdomain "punchgate/internal/telemetry/domain"
)

var (
	// ErrAlreadyComplete is returned when the day is terminal, when an arrival
	// is already committed, or when the ledger holds conflicting records for
	// the day. Refusing beats guessing.
	ErrAlreadyComplete = errors.New("attendance already complete for this day")
	// ErrSignatureRequired is returned when commit is called without a signature artifact.
	ErrSignatureRequired = errors.New("signature artifact required")
	// ErrNoArrival is returned when a departure commit finds no committed arrival.
	ErrNoArrival = errors.New("no arrival committed for this day")
	// ErrInvalidIntent is returned for an intent with an unknown kind.
	ErrInvalidIntent = errors.New("invalid punch intent")
	// ErrRecordNotFound is returned by administrative operations on a missing record.
	ErrRecordNotFound = errors.New("attendance record not found")
	// ErrInvalidStatus is returned when a status override names an unknown status.
	ErrInvalidStatus = errors.New("invalid attendance status")
)

// Intent kinds.
const (
	KindArrival   = "arrival"
	KindDeparture = "departure"
)

// Intent is the outcome of a punch evaluation: which signature the caller must
// capture, for whom, and with what prefilled time. It is discardable; nothing
// is written until Commit.
type Intent struct {
	Kind        string
	EmployeeID  string
	Fingerprint fingerprint.Fingerprint
	Day         time.Time
	// PrefilledAt is captured when the punch was evaluated, not when the
	// signature lands, so slow signing does not drift the recorded time.
	PrefilledAt time.Time
}

// LedgerRepo is the attendance persistence the service needs.
type LedgerRepo interface {
	GetByEmployeeAndDay(ctx context.Context, employeeID string, day time.Time) ([]*domain.Record, error)
	CreateArrival(ctx context.Context, r *domain.Record) (bool, error)
	SetDeparture(ctx context.Context, employeeID string, day time.Time, departureAt time.Time, signature []byte, updatedAt time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (*domain.Record, error)
	ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Record, error)
	UpdateStatus(ctx context.Context, id, status string, updatedAt time.Time) (bool, error)
}

// DeviceStamper marks the device after a successful punch.
type DeviceStamper interface {
	UpdateLastUsed(ctx context.Context, fp fingerprint.Fingerprint, at time.Time) error
}

// PunchService drives the per-day punch state machine:
// no record, then arrived, then departed. Departed is terminal.
type PunchService struct {
	records  LedgerRepo
	devices  DeviceStamper
	auditLog audit.AuditLogger
	events   telemetry.EventEmitter
	loc      *time.Location
	now      func() time.Time
}

// NewPunchService returns a PunchService normalizing days in loc. devices,
// auditLog, and events may be nil; then those side channels are skipped.
func NewPunchService(records LedgerRepo, devices DeviceStamper, auditLog audit.AuditLogger, events telemetry.EventEmitter, loc *time.Location) *PunchService {
	if loc == nil {
		loc = time.UTC
	}
	return &PunchService{
		records:  records,
		devices:  devices,
		auditLog: auditLog,
		events:   events,
		loc:      loc,
		now:      time.Now,
	}
}

// WithClock overrides the service clock. For tests.
func (s *PunchService) WithClock(now func() time.Time) *PunchService {
	s.now = now
	return s
}

// dayOf truncates t to midnight in the service time zone.
func (s *PunchService) dayOf(t time.Time) time.Time {
	t = t.In(s.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, s.loc)
}

// Punch evaluates which punch is legal now for the employee. It never writes;
// the returned intent carries everything Commit needs.
func (s *PunchService) Punch(ctx context.Context, employeeID string, fp fingerprint.Fingerprint) (*Intent, error) {
	now := s.now().In(s.loc)
	day := s.dayOf(now)

	recs, err := s.records.GetByEmployeeAndDay(ctx, employeeID, day)
	if err != nil {
		return nil, fmt.Errorf("punch: read ledger: %w", err)
	}
	if len(recs) > 1 {
		return nil, ErrAlreadyComplete
	}
	kind := KindArrival
	if len(recs) == 1 {
		rec := recs[0]
		if rec.Terminal() || rec.ArrivalTime == nil {
			// ArrivalTime == nil should not happen (arrivals insert with the
			// time set); refuse rather than guess.
			return nil, ErrAlreadyComplete
		}
		kind = KindDeparture
	}
	return &Intent{
		Kind:        kind,
		EmployeeID:  employeeID,
		Fingerprint: fp,
		Day:         day,
		PrefilledAt: now,
	}, nil
}

// Commit performs the write the intent describes. The signature artifact is
// mandatory; a transition without it never reaches the ledger.
//
// Commit re-reads state instead of trusting the intent: when a concurrent
// commit won in the meantime, the loser gets ErrAlreadyComplete and no
// duplicate record.
func (s *PunchService) Commit(ctx context.Context, intent *Intent, signature []byte) (*domain.Record, error) {
	if intent == nil {
		return nil, ErrInvalidIntent
	}
	if len(signature) == 0 {
		return nil, ErrSignatureRequired
	}
	switch intent.Kind {
	case KindArrival:
		return s.commitArrival(ctx, intent, signature)
	case KindDeparture:
		return s.commitDeparture(ctx, intent, signature)
	default:
		return nil, ErrInvalidIntent
	}
}

func (s *PunchService) commitArrival(ctx context.Context, intent *Intent, signature []byte) (*domain.Record, error) {
	now := s.now().In(s.loc)
	arrivalAt := intent.PrefilledAt
	rec := &domain.Record{
		ID:                uuid.New().String(),
		EmployeeID:        intent.EmployeeID,
		Day:               intent.Day,
		Status:            domain.StatusPresent,
		ArrivalTime:       &arrivalAt,
		ArrivalSignature:  signature,
		DeviceFingerprint: intent.Fingerprint,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	inserted, err := s.records.CreateArrival(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("commit arrival: %w", err)
	}
	if !inserted {
		return nil, ErrAlreadyComplete
	}
	s.afterCommit(ctx, intent, audit.ActionArrival, eventdomain.EventPunchArrival, now)
	return rec, nil
}

func (s *PunchService) commitDeparture(ctx context.Context, intent *Intent, signature []byte) (*domain.Record, error) {
	now := s.now().In(s.loc)
	updated, err := s.records.SetDeparture(ctx, intent.EmployeeID, intent.Day, intent.PrefilledAt, signature, now)
	if err != nil {
		return nil, fmt.Errorf("commit departure: %w", err)
	}
	if !updated {
		recs, err := s.records.GetByEmployeeAndDay(ctx, intent.EmployeeID, intent.Day)
		if err != nil {
			return nil, fmt.Errorf("commit departure: re-read ledger: %w", err)
		}
		if len(recs) == 0 || (len(recs) == 1 && recs[0].ArrivalTime == nil) {
			return nil, ErrNoArrival
		}
		return nil, ErrAlreadyComplete
	}
	recs, err := s.records.GetByEmployeeAndDay(ctx, intent.EmployeeID, intent.Day)
	if err != nil {
		return nil, fmt.Errorf("commit departure: re-read ledger: %w", err)
	}
	if len(recs) == 0 {
		return nil, ErrRecordNotFound
	}
	s.afterCommit(ctx, intent, audit.ActionDeparture, eventdomain.EventPunchDeparture, now)
	return recs[0], nil
}

func (s *PunchService) afterCommit(ctx context.Context, intent *Intent, action, eventType string, now time.Time) {
	if s.devices != nil {
		// Best-effort stamp; the punch already committed.
		if err := s.devices.UpdateLastUsed(ctx, intent.Fingerprint, now); err != nil {
			log.Printf("attendance: update last used: %v", err)
		}
	}
	if s.auditLog != nil {
		s.auditLog.LogEvent(ctx, intent.EmployeeID, action, "presence:"+intent.Day.Format("2006-01-02"), string(intent.Fingerprint))
	}
	telemetry.EmitAsync(s.events, ctx, &eventdomain.Event{
		ID:                uuid.New().String(),
		EmployeeID:        intent.EmployeeID,
		DeviceFingerprint: string(intent.Fingerprint),
		EventType:         eventType,
		Source:            "api",
		Metadata:          map[string]string{"day": intent.Day.Format("2006-01-02")},
		CreatedAt:         now.UTC(),
	})
}

// ListRange returns ledger records for the administrative surface. employeeID
// empty means all employees.
func (s *PunchService) ListRange(ctx context.Context, employeeID string, from, to time.Time) ([]*domain.Record, error) {
	return s.records.ListRange(ctx, employeeID, s.dayOf(from), s.dayOf(to))
}

// OverrideStatus sets the record's status by administrative action.
func (s *PunchService) OverrideStatus(ctx context.Context, id, status string) (*domain.Record, error) {
	if !domain.ValidStatus(status) {
		return nil, ErrInvalidStatus
	}
	now := s.now().In(s.loc)
	updated, err := s.records.UpdateStatus(ctx, id, status, now)
	if err != nil {
		return nil, fmt.Errorf("override status: %w", err)
	}
	if !updated {
		return nil, ErrRecordNotFound
	}
	rec, err := s.records.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("override status: re-read: %w", err)
	}
	if rec == nil {
		return nil, ErrRecordNotFound
	}
	if s.auditLog != nil {
		s.auditLog.LogEvent(ctx, rec.EmployeeID, audit.ActionStatusOverride, "presence:"+rec.ID, status)
	}
	return rec, nil
}
