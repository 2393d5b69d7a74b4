package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"shift_report_bot/internal/domain/reference"
)

// Custom application-level errors for admin service
var ErrAdminNotAuthorized = fmt.Errorf("performing user is not authorized as an admin")
var ErrInvalidLocationTitle = fmt.Errorf("location title is empty or too long")
var ErrInvalidFullName = fmt.Errorf("full name must not be empty")

// Location titles travel as inline button data, which Telegram caps at 64 bytes
// together with the button identifier and the answered state.
const maxLocationTitleBytes = 40

// ReferenceReloader is the part of the reference cache the admin surface needs.
type ReferenceReloader interface {
	IsAdmin(userID int64) bool
	Reload(ctx context.Context) error
}

type AdminService struct {
	repo            reference.Repository
	cache           ReferenceReloader
	adminTelegramID int64
}

func NewAdminService(repo reference.Repository, cache ReferenceReloader, adminID int64) *AdminService {
	return &AdminService{
		repo:            repo,
		cache:           cache,
		adminTelegramID: adminID,
	}
}

// IsAdmin reports whether userID may use admin commands. The configured admin
// chat id is always an admin, so the first people can be added.
func (s *AdminService) IsAdmin(userID int64) bool {
	return userID == s.adminTelegramID || s.cache.IsAdmin(userID)
}

func (s *AdminService) authorize(performingAdminID int64) error {
	if !s.IsAdmin(performingAdminID) {
		return ErrAdminNotAuthorized
	}
	return nil
}

// AddPerson registers or updates a person and reloads the cache.
func (s *AdminService) AddPerson(ctx context.Context, performingAdminID, userID int64, fullName, username string, role reference.Role) (*reference.Person, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	fullName = strings.TrimSpace(fullName)
	if fullName == "" {
		return nil, ErrInvalidFullName
	}

	p := &reference.Person{
		UserID:   userID,
		FullName: fullName,
		Username: sql.NullString{String: strings.TrimPrefix(username, "@"), Valid: username != ""},
		Role:     role,
	}
	if err := s.repo.UpsertPerson(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to save person: %w", err)
	}
	return p, s.reload(ctx)
}

// RemovePerson deletes a person. Returns reference.ErrPersonNotFound when there is nobody to delete.
func (s *AdminService) RemovePerson(ctx context.Context, performingAdminID, userID int64) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	if err := s.repo.DeletePerson(ctx, userID); err != nil {
		if errors.Is(err, reference.ErrPersonNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete person: %w", err)
	}
	return s.reload(ctx)
}

func (s *AdminService) ListPersons(ctx context.Context, performingAdminID int64) ([]*reference.Person, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	persons, err := s.repo.ListPersonsByRole(ctx, reference.RoleEmployee, reference.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to list persons: %w", err)
	}
	return persons, nil
}

// AddLocation registers a rental point or moves it to another report chat.
func (s *AdminService) AddLocation(ctx context.Context, performingAdminID int64, title string, chatID int64) (*reference.Location, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" || len(title) > maxLocationTitleBytes {
		return nil, ErrInvalidLocationTitle
	}

	l := &reference.Location{Title: title, ChatID: chatID}
	if err := s.repo.UpsertLocation(ctx, l); err != nil {
		return nil, fmt.Errorf("failed to save location: %w", err)
	}
	return l, s.reload(ctx)
}

func (s *AdminService) RemoveLocation(ctx context.Context, performingAdminID int64, title string) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	if err := s.repo.DeleteLocation(ctx, strings.TrimSpace(title)); err != nil {
		if errors.Is(err, reference.ErrLocationNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete location: %w", err)
	}
	return s.reload(ctx)
}

func (s *AdminService) ListLocations(ctx context.Context, performingAdminID int64) ([]*reference.Location, error) {
	if err := s.authorize(performingAdminID); err != nil {
		return nil, err
	}
	locations, err := s.repo.ListLocations(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	return locations, nil
}

// Reload refreshes the reference cache on request.
func (s *AdminService) Reload(ctx context.Context, performingAdminID int64) error {
	if err := s.authorize(performingAdminID); err != nil {
		return err
	}
	return s.reload(ctx)
}

func (s *AdminService) reload(ctx context.Context) error {
	if err := s.cache.Reload(ctx); err != nil {
		return fmt.Errorf("saved, but failed to reload reference data: %w", err)
	}
	return nil
}
