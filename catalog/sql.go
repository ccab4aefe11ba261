package catalog

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jmoiron/sqlx"
)

// Repository loads the reference data from Postgres. The tables are
// seeded out of band; the loaded catalog is treated as immutable for
// the lifetime of the process.
type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

type locationRow struct {
	ID              string       `db:"id"`
	Name            string       `db:"name"`
	BaseRate        float64      `db:"base_rate"`
	PeakMultiplier  float64      `db:"peak_multiplier"`
	Location        pgtype.Point `db:"location"`
	TotalSpaces     int          `db:"total_spaces"`
	AvailableSpaces int          `db:"available_spaces"`
}

// Load reads the full catalog in one pass.
func (r *Repository) Load(ctx context.Context) (*Catalog, error) {
	var rows []locationRow
	if err := r.db.SelectContext(ctx, &rows, getLocations); err != nil {
		return nil, err
	}
	locations := make([]Location, 0, len(rows))
	for _, row := range rows {
		locations = append(locations, Location{
			ID:              row.ID,
			Name:            row.Name,
			BaseRate:        row.BaseRate,
			PeakMultiplier:  row.PeakMultiplier,
			Lat:             row.Location.P.X,
			Lng:             row.Location.P.Y,
			TotalSpaces:     row.TotalSpaces,
			AvailableSpaces: row.AvailableSpaces,
		})
	}

	var vehicleTypes []VehicleType
	if err := r.db.SelectContext(ctx, &vehicleTypes, getVehicleTypes); err != nil {
		return nil, err
	}

	var services []Service
	if err := r.db.SelectContext(ctx, &services, getServices); err != nil {
		return nil, err
	}

	var discounts []DiscountCode
	if err := r.db.SelectContext(ctx, &discounts, getDiscountCodes); err != nil {
		return nil, err
	}

	var shuttles []Shuttle
	if err := r.db.SelectContext(ctx, &shuttles, getShuttles); err != nil {
		return nil, err
	}

	return New(locations, vehicleTypes, services, discounts, shuttles), nil
}

const getLocations = `SELECT * FROM locations ORDER BY id`

const getVehicleTypes = `SELECT * FROM vehicle_types ORDER BY id`

const getServices = `SELECT * FROM services ORDER BY id`

const getDiscountCodes = `SELECT * FROM discount_codes ORDER BY code`

const getShuttles = `SELECT * FROM shuttles ORDER BY id`

// UpdateAvailableSpaces adjusts the live occupancy counter for a
// location by delta (negative on check-in, positive on check-out).
func (r *Repository) UpdateAvailableSpaces(ctx context.Context, locationID string, delta int) error {
	_, err := r.db.ExecContext(ctx, updateAvailableSpaces, delta, locationID)
	return err
}

const updateAvailableSpaces = `
UPDATE locations
SET available_spaces = GREATEST(0, LEAST(total_spaces, available_spaces + $1))
WHERE id = $2
`
