package device

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nerrad567/assetflow-core/internal/infrastructure/database"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a device by its unique identifier.
	// Returns ErrDeviceNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// List retrieves all devices ordered by name.
	List(ctx context.Context) ([]Device, error)

	// ListByStatus retrieves all devices with the given status.
	ListByStatus(ctx context.Context, status Status) ([]Device, error)

	// ListByType retrieves all devices of a type (case-insensitive exact match).
	ListByType(ctx context.Context, deviceType string) ([]Device, error)

	// ListByName retrieves devices whose name contains the substring (case-insensitive).
	ListByName(ctx context.Context, substring string) ([]Device, error)

	// Create inserts a new device.
	// Returns ErrDuplicateSerial or ErrDeviceExists on a unique violation.
	Create(ctx context.Context, device *Device) error

	// Update modifies the descriptive fields of an existing device. Status is not touched.
	// Returns ErrDeviceNotFound if the device does not exist.
	Update(ctx context.Context, device *Device) error

	// UpdateStatus sets only the status column.
	// Returns ErrDeviceNotFound if the device does not exist.
	UpdateStatus(ctx context.Context, id string, status Status) error

	// Delete removes a device by ID.
	// Returns ErrDeviceNotFound if the device does not exist.
	Delete(ctx context.Context, id string) error

	// Count returns the total number of devices.
	Count(ctx context.Context) (int, error)

	// CountByStatus returns the number of devices with the given status.
	CountByStatus(ctx context.Context, status Status) (int, error)

	// ExistsBySerial reports whether a device other than excludeID owns the serial number.
	ExistsBySerial(ctx context.Context, serial, excludeID string) (bool, error)
}

const selectDevice = `
	SELECT id, name, type, manufacturer, serial_number, status, created_at, updated_at
	FROM devices`

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// GetByID retrieves a device by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx, selectDevice+` WHERE id = ?`, id)
	d, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrDeviceNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return d, nil
}

// List retrieves all devices.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+` ORDER BY name, id`)
}

// ListByStatus retrieves all devices with the given status.
func (r *SQLiteRepository) ListByStatus(ctx context.Context, status Status) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+` WHERE status = ? ORDER BY name, id`, string(status))
}

// ListByType retrieves all devices of a type.
func (r *SQLiteRepository) ListByType(ctx context.Context, deviceType string) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+` WHERE type = ? COLLATE NOCASE ORDER BY name, id`,
		strings.TrimSpace(deviceType))
}

// ListByName retrieves devices whose name contains substring.
func (r *SQLiteRepository) ListByName(ctx context.Context, substring string) ([]Device, error) {
	return r.queryDevices(ctx, selectDevice+` WHERE name LIKE ? ESCAPE '\' ORDER BY name, id`,
		database.LikeContains(substring))
}

// Create inserts a new device.
func (r *SQLiteRepository) Create(ctx context.Context, d *Device) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO devices (id, name, type, manufacturer, serial_number, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID,
		d.Name,
		d.Type,
		database.NullString(d.Manufacturer),
		database.NullString(d.SerialNumber),
		string(d.Status),
		database.FormatTime(d.CreatedAt),
		database.FormatTime(d.UpdatedAt),
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			if strings.Contains(err.Error(), "serial_number") {
				return ErrDuplicateSerial
			}
			return ErrDeviceExists
		}
		return fmt.Errorf("inserting device: %w", err)
	}
	return nil
}

// Update modifies the descriptive fields of an existing device.
func (r *SQLiteRepository) Update(ctx context.Context, d *Device) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE devices
		SET name = ?, type = ?, manufacturer = ?, serial_number = ?, updated_at = ?
		WHERE id = ?`,
		d.Name,
		d.Type,
		database.NullString(d.Manufacturer),
		database.NullString(d.SerialNumber),
		database.FormatTime(d.UpdatedAt),
		d.ID,
	)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return ErrDuplicateSerial
		}
		return fmt.Errorf("updating device: %w", err)
	}
	return expectOneRow(result)
}

// UpdateStatus sets only the status column.
func (r *SQLiteRepository) UpdateStatus(ctx context.Context, id string, status Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE devices SET status = ?, updated_at = ? WHERE id = ?`,
		string(status), database.FormatTime(time.Now()), id,
	)
	if err != nil {
		return fmt.Errorf("updating device status: %w", err)
	}
	return expectOneRow(result)
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device: %w", err)
	}
	return expectOneRow(result)
}

// Count returns the total number of devices.
func (r *SQLiteRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices").Scan(&n); err != nil {
		return 0, fmt.Errorf("counting devices: %w", err)
	}
	return n, nil
}

// CountByStatus returns the number of devices with the given status.
func (r *SQLiteRepository) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM devices WHERE status = ?", string(status)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting devices by status: %w", err)
	}
	return n, nil
}

// ExistsBySerial reports whether another device owns the serial number.
func (r *SQLiteRepository) ExistsBySerial(ctx context.Context, serial, excludeID string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM devices WHERE serial_number = ? AND id != ?",
		serial, excludeID,
	).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking serial number: %w", err)
	}
	return n > 0, nil
}

func (r *SQLiteRepository) queryDevices(ctx context.Context, query string, args ...any) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	devices := []Device{}
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device: %w", err)
		}
		devices = append(devices, *d)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating devices: %w", err)
	}
	return devices, nil
}

// scanDevice scans a row or rows result into a Device.
func scanDevice(scanner database.RowScanner) (*Device, error) {
	var d Device
	var manufacturer, serial sql.NullString
	var status, createdAt, updatedAt string

	if err := scanner.Scan(&d.ID, &d.Name, &d.Type, &manufacturer, &serial,
		&status, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	d.Manufacturer = manufacturer.String
	d.SerialNumber = serial.String
	d.Status = Status(status)

	var err error
	if d.CreatedAt, err = database.ParseTime(createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if d.UpdatedAt, err = database.ParseTime(updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &d, nil
}

func expectOneRow(result sql.Result) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrDeviceNotFound
	}
	return nil
}
