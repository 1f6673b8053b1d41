package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/assetflow-core/internal/infrastructure/database"
)

// Repository defines persistence for requests.
type Repository interface {
	// GetByID returns ErrRequestNotFound if the request does not exist.
	GetByID(ctx context.Context, id string) (*Request, error)

	// List returns all requests, newest first.
	List(ctx context.Context) ([]Request, error)
	ListByDevice(ctx context.Context, deviceID string) ([]Request, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]Request, error)
	ListByStatus(ctx context.Context, status Status) ([]Request, error)

	// SearchByReason matches a case-insensitive substring of the reason.
	SearchByReason(ctx context.Context, substring string) ([]Request, error)

	Create(ctx context.Context, r *Request) error

	// UpdateStatus returns ErrRequestNotFound if the request does not exist.
	UpdateStatus(ctx context.Context, id string, status Status) error

	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status Status) (int, error)
	CountByEmployee(ctx context.Context, employeeID string) (int, error)
	CountByDevice(ctx context.Context, deviceID string) (int, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a request repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const (
	selectRequest = `SELECT id, device_id, employee_id, reason, status, created_at, updated_at FROM requests`
	newestFirst   = ` ORDER BY created_at DESC, id`
)

func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Request, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, selectRequest+` WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("querying request: %w", err)
	}
	return req, nil
}

func (r *SQLiteRepository) List(ctx context.Context) ([]Request, error) {
	return r.query(ctx, selectRequest+newestFirst)
}

func (r *SQLiteRepository) ListByDevice(ctx context.Context, deviceID string) ([]Request, error) {
	return r.query(ctx, selectRequest+` WHERE device_id = ?`+newestFirst, deviceID)
}

func (r *SQLiteRepository) ListByEmployee(ctx context.Context, employeeID string) ([]Request, error) {
	return r.query(ctx, selectRequest+` WHERE employee_id = ?`+newestFirst, employeeID)
}

func (r *SQLiteRepository) ListByStatus(ctx context.Context, status Status) ([]Request, error) {
	return r.query(ctx, selectRequest+` WHERE status = ?`+newestFirst, string(status))
}

func (r *SQLiteRepository) SearchByReason(ctx context.Context, substring string) ([]Request, error) {
	return r.query(ctx, selectRequest+` WHERE reason LIKE ? ESCAPE '\'`+newestFirst,
		database.LikeContains(substring))
}

func (r *SQLiteRepository) Create(ctx context.Context, req *Request) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO requests (id, device_id, employee_id, reason, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.DeviceID, req.EmployeeID, req.Reason, string(req.Status),
		database.FormatTime(req.CreatedAt), database.FormatTime(req.UpdatedAt),
	)
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return ErrRequestExists
		case database.IsForeignKeyViolation(err):
			return fmt.Errorf("%w: device or employee removed", ErrUnknownDevice)
		}
		return fmt.Errorf("inserting request: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE requests SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), database.FormatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating request status: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrRequestNotFound
	}
	return nil
}

func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM requests`)
}

func (r *SQLiteRepository) CountByStatus(ctx context.Context, status Status) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM requests WHERE status = ?`, string(status))
}

func (r *SQLiteRepository) CountByEmployee(ctx context.Context, employeeID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM requests WHERE employee_id = ?`, employeeID)
}

func (r *SQLiteRepository) CountByDevice(ctx context.Context, deviceID string) (int, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM requests WHERE device_id = ?`, deviceID)
}

func (r *SQLiteRepository) count(ctx context.Context, q string, args ...any) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting requests: %w", err)
	}
	return n, nil
}

func (r *SQLiteRepository) query(ctx context.Context, q string, args ...any) ([]Request, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("querying requests: %w", err)
	}
	defer rows.Close()

	requests := []Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning request: %w", err)
		}
		requests = append(requests, *req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating requests: %w", err)
	}
	return requests, nil
}

func scanRequest(s database.RowScanner) (*Request, error) {
	var req Request
	var status, createdAt, updatedAt string
	if err := s.Scan(&req.ID, &req.DeviceID, &req.EmployeeID, &req.Reason,
		&status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	req.Status = Status(status)

	var err error
	if req.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, err
	}
	if req.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, err
	}
	return &req, nil
}
