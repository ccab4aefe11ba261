package customer

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type SQLRepository struct {
	db *sqlx.DB
}

var _ Repository = (*SQLRepository)(nil)

func NewSQLRepository(db *sqlx.DB) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) GetBySubject(ctx context.Context, subject string) (*Customer, error) {
	var c Customer
	err := r.db.GetContext(ctx, &c, getBySubjectQuery, subject)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

const getBySubjectQuery = `SELECT * FROM customers WHERE subject = $1`

func (r *SQLRepository) Create(ctx context.Context, subject string) (*Customer, error) {
	var c Customer
	err := r.db.GetContext(ctx, &c, createCustomerQuery, uuid.New(), subject)
	return &c, err
}

const createCustomerQuery = `INSERT INTO customers (id, subject) VALUES ($1, $2) RETURNING *`

func (r *SQLRepository) UpdateProfile(ctx context.Context, subject string, p Profile) error {
	_, err := r.db.ExecContext(ctx, updateProfileQuery, p.Email, p.Name, p.VehiclePlate, subject)
	return err
}

const updateProfileQuery = `
UPDATE customers
SET email = NULLIF($1, ''), name = NULLIF($2, ''), vehicle_plate = NULLIF($3, '')
WHERE subject = $4
`

func (r *SQLRepository) AddPoints(ctx context.Context, subject string, points int) error {
	_, err := r.db.ExecContext(ctx, addPointsQuery, points, subject)
	return err
}

const addPointsQuery = `UPDATE customers SET loyalty_points = loyalty_points + $1 WHERE subject = $2`
