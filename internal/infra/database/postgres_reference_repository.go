package database

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq" // For pq.Array

	"shift_report_bot/internal/domain/reference"
)

var _ reference.Repository = (*PostgresReferenceRepository)(nil)

type PostgresReferenceRepository struct {
	db *sql.DB
}

func NewPostgresReferenceRepository(db *sql.DB) *PostgresReferenceRepository {
	return &PostgresReferenceRepository{db: db}
}

func (r *PostgresReferenceRepository) ListLocations(ctx context.Context) ([]*reference.Location, error) {
	query := `SELECT title, chat_id, created_at FROM places ORDER BY title ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("error listing places: %w", err)
	}
	defer rows.Close()

	var locations []*reference.Location
	for rows.Next() {
		l := &reference.Location{}
		if err := rows.Scan(&l.Title, &l.ChatID, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning place row: %w", err)
		}
		locations = append(locations, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating place rows: %w", err)
	}
	return locations, nil
}

func (r *PostgresReferenceRepository) ListPersonsByRole(ctx context.Context, roles ...reference.Role) ([]*reference.Person, error) {
	query := `SELECT user_id, full_name, username, role, created_at, updated_at
               FROM persons WHERE role = ANY($1) ORDER BY full_name ASC`
	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	rows, err := r.db.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, fmt.Errorf("error listing persons by role: %w", err)
	}
	defer rows.Close()

	var persons []*reference.Person
	for rows.Next() {
		p := &reference.Person{}
		if err := rows.Scan(&p.UserID, &p.FullName, &p.Username, &p.Role, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("error scanning person row: %w", err)
		}
		persons = append(persons, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating person rows: %w", err)
	}
	return persons, nil
}

func (r *PostgresReferenceRepository) GetFullName(ctx context.Context, userID int64) (string, error) {
	var name string
	err := r.db.QueryRowContext(ctx, `SELECT full_name FROM persons WHERE user_id = $1`, userID).Scan(&name)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", reference.ErrPersonNotFound
		}
		return "", fmt.Errorf("error getting full name: %w", err)
	}
	return name, nil
}

// UpsertPerson inserts p or updates the existing row with the same user id.
func (r *PostgresReferenceRepository) UpsertPerson(ctx context.Context, p *reference.Person) error {
	query := `INSERT INTO persons (user_id, full_name, username, role)
               VALUES ($1, $2, $3, $4)
               ON CONFLICT (user_id) DO UPDATE
               SET full_name = EXCLUDED.full_name, username = EXCLUDED.username,
                   role = EXCLUDED.role, updated_at = NOW()
               RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query, p.UserID, p.FullName, p.Username, p.Role).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("error upserting person: %w", err)
	}
	return nil
}

func (r *PostgresReferenceRepository) DeletePerson(ctx context.Context, userID int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM persons WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("error deleting person: %w", err)
	}
	return expectAffected(result, reference.ErrPersonNotFound)
}

func (r *PostgresReferenceRepository) UpsertLocation(ctx context.Context, l *reference.Location) error {
	query := `INSERT INTO places (title, chat_id)
               VALUES ($1, $2)
               ON CONFLICT (title) DO UPDATE SET chat_id = EXCLUDED.chat_id
               RETURNING created_at`
	if err := r.db.QueryRowContext(ctx, query, l.Title, l.ChatID).Scan(&l.CreatedAt); err != nil {
		return fmt.Errorf("error upserting place: %w", err)
	}
	return nil
}

func (r *PostgresReferenceRepository) DeleteLocation(ctx context.Context, title string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM places WHERE title = $1`, title)
	if err != nil {
		return fmt.Errorf("error deleting place: %w", err)
	}
	return expectAffected(result, reference.ErrLocationNotFound)
}

func expectAffected(result sql.Result, notFound error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("error checking affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFound
	}
	return nil
}
