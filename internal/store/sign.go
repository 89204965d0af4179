package store

import (
	"database/sql"
	"errors"
	"time"
)

// Sign categories. The alphabet is the initial curriculum; greetings and
// phrases come from the extended collection sets.
const (
	CategoryAlphabet = "alphabet"
	CategoryGreeting = "greeting"
	CategoryPhrase   = "phrase"
)

// Sign represents one trainable Libras sign in the catalog.
type Sign struct {
	ID        string
	Name      string
	Category  string
	Samples   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// SignRepository provides CRUD operations for signs.
type SignRepository struct {
	db *sql.DB
}

// Signs returns the sign repository for this store.
func (s *Store) Signs() *SignRepository {
	return &SignRepository{db: s.db}
}

// Create inserts a new sign into the database.
func (r *SignRepository) Create(sign *Sign) error {
	now := time.Now()
	sign.CreatedAt = now
	sign.UpdatedAt = now
	if sign.Category == "" {
		sign.Category = CategoryAlphabet
	}

	_, err := r.db.Exec(
		`INSERT INTO signs (id, name, category, samples, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		sign.ID, sign.Name, sign.Category, sign.Samples, sign.CreatedAt, sign.UpdatedAt,
	)
	return err
}

// GetByID retrieves a sign by its ID.
func (r *SignRepository) GetByID(id string) (*Sign, error) {
	sign := &Sign{}

	err := r.db.QueryRow(
		`SELECT id, name, category, samples, created_at, updated_at
		 FROM signs WHERE id = ?`,
		id,
	).Scan(&sign.ID, &sign.Name, &sign.Category, &sign.Samples, &sign.CreatedAt, &sign.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return sign, nil
}

// GetByName retrieves a sign by its name.
func (r *SignRepository) GetByName(name string) (*Sign, error) {
	sign := &Sign{}

	err := r.db.QueryRow(
		`SELECT id, name, category, samples, created_at, updated_at
		 FROM signs WHERE name = ?`,
		name,
	).Scan(&sign.ID, &sign.Name, &sign.Category, &sign.Samples, &sign.CreatedAt, &sign.UpdatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return sign, nil
}

// List retrieves all signs ordered by name.
func (r *SignRepository) List() ([]*Sign, error) {
	rows, err := r.db.Query(
		`SELECT id, name, category, samples, created_at, updated_at
		 FROM signs ORDER BY name`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var signs []*Sign
	for rows.Next() {
		sign := &Sign{}
		if err := rows.Scan(&sign.ID, &sign.Name, &sign.Category, &sign.Samples,
			&sign.CreatedAt, &sign.UpdatedAt); err != nil {
			return nil, err
		}
		signs = append(signs, sign)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return signs, nil
}

// Update updates an existing sign.
func (r *SignRepository) Update(sign *Sign) error {
	sign.UpdatedAt = time.Now()

	result, err := r.db.Exec(
		`UPDATE signs SET name = ?, category = ?, samples = ?, updated_at = ?
		 WHERE id = ?`,
		sign.Name, sign.Category, sign.Samples, sign.UpdatedAt, sign.ID,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}

// Delete removes a sign by its ID. Samples cascade.
func (r *SignRepository) Delete(id string) error {
	result, err := r.db.Exec(`DELETE FROM signs WHERE id = ?`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
