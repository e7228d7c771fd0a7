package repositories

import (
	"context"

	"shopmart/internal/models"

	"github.com/google/uuid"
)

type AddressRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error)
}

type addressRepo struct {
	db Database
}

func NewAddressRepo(db Database) AddressRepository {
	return &addressRepo{db: db}
}

func (r *addressRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Address, error) {
	address := &models.Address{}
	query := `
		SELECT id, user_id, name, line1, line2, city, state, pincode, phone, is_default, created_at, updated_at
		FROM addresses
		WHERE id = $1
	`
	err := r.db.QueryRow(ctx, query, id).Scan(&address.ID, &address.UserID, &address.Name, &address.Line1, &address.Line2, &address.City, &address.State, &address.Pincode, &address.Phone, &address.IsDefault, &address.CreatedAt, &address.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return address, nil
}
