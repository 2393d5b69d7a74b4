package reference

import (
	"context"
	"fmt"
)

// Repository defines the operations for reading and administering reference data.
type Repository interface {
	ListLocations(ctx context.Context) ([]*Location, error)
	ListPersonsByRole(ctx context.Context, roles ...Role) ([]*Person, error)
	GetFullName(ctx context.Context, userID int64) (string, error)

	// Administrative writes
	UpsertPerson(ctx context.Context, p *Person) error
	DeletePerson(ctx context.Context, userID int64) error
	UpsertLocation(ctx context.Context, l *Location) error
	DeleteLocation(ctx context.Context, title string) error
}

var (
	ErrPersonNotFound   = fmt.Errorf("person not found")
	ErrLocationNotFound = fmt.Errorf("location not found")
)
