package allocation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/assetflow-core/internal/infrastructure/database"
)

// Repository defines persistence for allocations.
type Repository interface {
	// GetByID returns ErrAllocationNotFound if the allocation does not exist.
	GetByID(ctx context.Context, id string) (*Allocation, error)

	// GetByRequest returns ErrAllocationNotFound if the request has no allocation.
	GetByRequest(ctx context.Context, requestID string) (*Allocation, error)

	// GetActiveByDevice returns ErrAllocationNotFound if the device has no active allocation.
	GetActiveByDevice(ctx context.Context, deviceID string) (*Allocation, error)

	// List returns allocations in the given state, newest first.
	List(ctx context.Context, state State) ([]Allocation, error)
	ListActiveByEmployee(ctx context.Context, employeeID string) ([]Allocation, error)

	// Create returns ErrDeviceAllocated or ErrRequestAllocated on a unique violation.
	Create(ctx context.Context, a *Allocation) error

	// MarkReturned closes an active allocation. Returns ErrAllocationNotFound
	// or ErrAlreadyReturned when no active row matches.
	MarkReturned(ctx context.Context, id string, condition Condition, note, receivedBy string, at time.Time) error

	// Reopen clears a recorded return. Returns ErrNotReturned for an active allocation.
	Reopen(ctx context.Context, id string) error

	Delete(ctx context.Context, id string) error

	Count(ctx context.Context, state State) (int, error)
	ExistsActiveForDevice(ctx context.Context, deviceID string) (bool, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates an allocation repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const selectAllocation = `
	SELECT id, request_id, device_id, employee_id, return_status, condition, return_note,
	       issued_by, received_by, allocated_at, returned_at
	FROM allocations`

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Allocation, error) {
	return r.getOne(ctx, selectAllocation+` WHERE id = ?`, id)
}

func (r *SQLiteRepository) GetByRequest(ctx context.Context, requestID string) (*Allocation, error) {
	return r.getOne(ctx, selectAllocation+` WHERE request_id = ?`, requestID)
}

func (r *SQLiteRepository) GetActiveByDevice(ctx context.Context, deviceID string) (*Allocation, error) {
	return r.getOne(ctx, selectAllocation+` WHERE device_id = ? AND return_status = 'not_returned'`, deviceID)
}

func (r *SQLiteRepository) List(ctx context.Context, state State) ([]Allocation, error) {
	where, args := stateClause(state)
	return r.query(ctx, selectAllocation+where+` ORDER BY allocated_at DESC, id`, args...)
}

func (r *SQLiteRepository) ListActiveByEmployee(ctx context.Context, employeeID string) ([]Allocation, error) {
	return r.query(ctx, selectAllocation+
		` WHERE employee_id = ? AND return_status = 'not_returned' ORDER BY allocated_at DESC, id`, employeeID)
}

func (r *SQLiteRepository) Create(ctx context.Context, a *Allocation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO allocations (id, request_id, device_id, employee_id, return_status,
			issued_by, allocated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.RequestID, a.DeviceID, a.EmployeeID, string(a.ReturnStatus),
		a.IssuedBy, database.FormatTime(a.AllocatedAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "request_id") {
				return ErrRequestAllocated
			}
			return ErrDeviceAllocated
		}
		return fmt.Errorf("inserting allocation: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) MarkReturned(ctx context.Context, id string, condition Condition, note, receivedBy string, at time.Time) error {
	return r.setReturn(ctx, id, returnFields{
		condition:  string(condition),
		note:       note,
		receivedBy: receivedBy,
		at:         &at,
	}, ErrAlreadyReturned)
}

func (r *SQLiteRepository) Reopen(ctx context.Context, id string) error {
	return r.setReturn(ctx, id, returnFields{}, ErrNotReturned)
}

// returnFields are the columns written when an allocation is closed. The
// zero value reopens it.
type returnFields struct {
	condition  string
	note       string
	receivedBy string
	at         *time.Time
}

func (f returnFields) closing() bool { return f.at != nil }

// setReturn flips an allocation between active and returned. noop is
// returned when the allocation exists but is already in the target state.
func (r *SQLiteRepository) setReturn(ctx context.Context, id string, f returnFields, noop error) error {
	from, to := "returned", "not_returned"
	if f.closing() {
		from, to = "not_returned", "returned"
	}

	result, err := r.db.ExecContext(ctx, `
		UPDATE allocations
		SET return_status = ?, condition = ?, return_note = ?, received_by = ?, returned_at = ?
		WHERE id = ? AND return_status = ?`,
		to, database.NullString(f.condition), database.NullString(f.note),
		database.NullString(f.receivedBy), database.NullTime(f.at), id, from,
	)
	if err != nil {
		if !f.closing() && database.IsUniqueViolation(err) {
			return ErrDeviceAllocated
		}
		if f.closing() {
			return fmt.Errorf("recording return: %w", err)
		}
		return fmt.Errorf("reopening allocation: %w", err)
	}
	return r.explainNoop(ctx, result, id, noop)
}

func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM allocations WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting allocation: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrAllocationNotFound
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context, state State) (int, error) {
	where, args := stateClause(state)
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM allocations`+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting allocations: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) ExistsActiveForDevice(ctx context.Context, deviceID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM allocations WHERE device_id = ? AND return_status = 'not_returned'`,
		deviceID).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking active allocation: %w", err)
	}
	return n > 0, nil
}

// explainNoop turns a conditional update that touched no rows into either
// ErrAllocationNotFound or wrongState.
func (r *SQLiteRepository) explainNoop(ctx context.Context, result sql.Result, id string, wrongState error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return wrongState
}

func (r *SQLiteRepository) getOne(ctx context.Context, q string, args ...any) (*Allocation, error) {
	a, err := scanAllocation(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAllocationNotFound
		}
		return nil, fmt.Errorf("querying allocation: %w", err)
	}
	return a, nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]Allocation, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying allocations: %w", err)
	}
	defer rows.Close()

	allocations := []Allocation{}
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning allocation: %w", err)
		}
		allocations = append(allocations, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating allocations: %w", err)
	}
	return allocations, nil
}

func stateClause(state State) (string, []any) {
	switch state {
	case StateActive:
		return ` WHERE return_status = ?`, []any{string(ReturnStatusNotReturned)}
	case StateReturned:
		return ` WHERE return_status = ?`, []any{string(ReturnStatusReturned)}
	default:
		return "", nil
	}
}

func scanAllocation(s database.RowScanner) (*Allocation, error) {
	var a Allocation
	var returnStatus, allocatedAt string
	var condition, note, receivedBy, returnedAt sql.NullString

	if err := s.Scan(&a.ID, &a.RequestID, &a.DeviceID, &a.EmployeeID, &returnStatus,
		&condition, &note, &a.IssuedBy, &receivedBy, &allocatedAt, &returnedAt); err != nil {
		return nil, err
	}

	a.ReturnStatus = ReturnStatus(returnStatus)
	a.Condition = Condition(condition.String)
	a.ReturnNote = note.String
	a.ReceivedBy = receivedBy.String

	var err error
	if a.AllocatedAt, err = database.ParseTime(allocatedAt); err != nil {
		return nil, err
	}
	if returnedAt.Valid {
		t, err := database.ParseTime(returnedAt.String)
		if err != nil {
			return nil, err
		}
		a.ReturnedAt = &t
	}
	return &a, nil
}
