package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/nerrad567/cloudbridge/internal/cloud"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a device by its unique identifier.
	// Returns ErrNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// List retrieves all cached devices.
	List(ctx context.Context) ([]Device, error)

	// Upsert inserts or replaces a device row.
	Upsert(ctx context.Context, d *Device) error

	// UpdateState updates only the state, status, and last_updated
	// columns. This is optimised for frequent poll updates.
	UpdateState(ctx context.Context, id string, state cloud.DeviceState, status string, updated time.Time) error

	// Delete removes a device by ID.
	// Returns ErrNotFound if the device does not exist.
	Delete(ctx context.Context, id string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a device repository backed by the given
// database connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `id, name, type, model, location, status, state_json, capabilities_json, last_updated`

// GetByID retrieves a device by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+deviceColumns+" FROM devices WHERE id = ?", id)

	d, err := scanDevice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying device %s: %w", id, err)
	}
	return d, nil
}

// List retrieves all cached devices ordered by name.
func (r *SQLiteRepository) List(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+deviceColumns+" FROM devices ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	var devices []Device
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

// Upsert inserts or replaces a device row.
func (r *SQLiteRepository) Upsert(ctx context.Context, d *Device) error {
	if err := d.Validate(); err != nil {
		return err
	}

	stateJSON, err := json.Marshal(d.State)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}
	capsJSON, err := json.Marshal(d.Capabilities)
	if err != nil {
		return fmt.Errorf("marshalling capabilities: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO devices (id, name, type, model, location, status, state_json, capabilities_json, last_updated)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			type = excluded.type,
			model = excluded.model,
			location = excluded.location,
			status = excluded.status,
			state_json = excluded.state_json,
			capabilities_json = excluded.capabilities_json,
			last_updated = excluded.last_updated`,
		d.ID, d.Name, d.Type, d.Model, d.Location, d.Status,
		string(stateJSON), string(capsJSON), d.LastUpdated.UTC(),
	)
	if err != nil {
		return fmt.Errorf("upserting device %s: %w", d.ID, err)
	}
	return nil
}

// UpdateState updates the state, status, and last_updated columns.
func (r *SQLiteRepository) UpdateState(ctx context.Context, id string, state cloud.DeviceState, status string, updated time.Time) error {
	stateJSON, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshalling state: %w", err)
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE devices SET state_json = ?, status = ?, last_updated = ? WHERE id = ?",
		string(stateJSON), status, updated.UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("updating device state %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a device by ID.
func (r *SQLiteRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM devices WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting device %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking delete result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for scanDevice.
type scanner interface {
	Scan(dest ...any) error
}

// scanDevice reads one device row. The last_updated column is declared
// TIMESTAMP, so the driver hands us a time.Time directly.
func scanDevice(s scanner) (*Device, error) {
	var d Device
	var stateJSON, capsJSON string
	var lastUpdated time.Time

	if err := s.Scan(&d.ID, &d.Name, &d.Type, &d.Model, &d.Location,
		&d.Status, &stateJSON, &capsJSON, &lastUpdated); err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(stateJSON), &d.State); err != nil {
		return nil, fmt.Errorf("unmarshalling state: %w", err)
	}
	if err := json.Unmarshal([]byte(capsJSON), &d.Capabilities); err != nil {
		return nil, fmt.Errorf("unmarshalling capabilities: %w", err)
	}
	d.LastUpdated = lastUpdated.UTC()

	return &d, nil
}
