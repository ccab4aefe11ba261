package booking

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLRepository persists bookings in Postgres. Note the update query
// never touches the price column: the price frozen at creation cannot
// be changed through the store.
type SQLRepository struct {
	db *sqlx.DB
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, b *Booking) error {
	err := r.db.GetContext(ctx, b, createBookingQuery,
		b.ID, b.Reference, b.UserID, b.LocationID, b.Location, b.Slot,
		b.StartTime, b.EndTime, b.Status, b.Price, b.VehicleType, b.CreatedAt, b.Shuttle)
	return mapErr(err)
}

const createBookingQuery = `
INSERT INTO bookings (id, reference, user_id, location_id, location, slot,
                      start_time, end_time, status, price, vehicle_type, created_at, shuttle)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
RETURNING *
`

func (r *SQLRepository) GetAll(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, getAllQuery)
	return bookings, mapErr(err)
}

const getAllQuery = `SELECT * FROM bookings ORDER BY start_time ASC, created_at ASC`

func (r *SQLRepository) GetByUser(ctx context.Context, userID string) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, getByUserQuery, userID)
	return bookings, mapErr(err)
}

const getByUserQuery = `SELECT * FROM bookings WHERE user_id = $1 ORDER BY start_time ASC, created_at ASC`

func (r *SQLRepository) GetByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, getByIDQuery, id)
	return b, mapErr(err)
}

const getByIDQuery = `SELECT * FROM bookings WHERE id = $1`

func (r *SQLRepository) Update(ctx context.Context, id uuid.UUID, upd Update) (Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, updateBookingQuery,
		id, upd.Status, upd.Slot, upd.StartTime, upd.EndTime, upd.SpecialRequests)
	return b, mapErr(err)
}

const updateBookingQuery = `
UPDATE bookings SET
  status     = COALESCE($2::text, status),
  slot       = COALESCE($3::text, slot),
  start_time = COALESCE($4::timestamptz, start_time),
  end_time   = COALESCE($5::timestamptz, end_time),
  shuttle    = CASE WHEN $6::text IS NULL OR shuttle IS NULL THEN shuttle
                    ELSE jsonb_set(shuttle, '{specialRequests}', to_jsonb($6::text)) END
WHERE id = $1
RETURNING *
`

func (r *SQLRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteBookingQuery, id)
	if err != nil {
		return mapErr(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const deleteBookingQuery = `DELETE FROM bookings WHERE id = $1`

// mapErr folds driver-level failures into the store error taxonomy.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) || errors.As(err, &netErr) {
		return ErrUnavailable
	}
	return err
}
