package cache

import (
	"context"
	"fmt"
	"sort"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"

	"shift_report_bot/internal/domain/reference"
)

// snapshot is never modified after it has been published.
type snapshot struct {
	locations map[string]*reference.Location
	titles    []string
	persons   map[int64]*reference.Person
}

func emptySnapshot() *snapshot {
	return &snapshot{
		locations: map[string]*reference.Location{},
		persons:   map[int64]*reference.Person{},
	}
}

// ReferenceCache serves locations and persons from memory. Readers always see
// a complete snapshot; Reload swaps it atomically.
type ReferenceCache struct {
	repo   reference.Repository
	logger *logrus.Entry
	snap   atomic.Pointer[snapshot]
	group  singleflight.Group
}

func NewReferenceCache(repo reference.Repository, logger *logrus.Entry) *ReferenceCache {
	c := &ReferenceCache{repo: repo, logger: logger}
	c.snap.Store(emptySnapshot())
	return c
}

// Reload fetches every location and person and publishes a new snapshot.
// Concurrent calls share one fetch. On error the previous snapshot stays.
func (c *ReferenceCache) Reload(ctx context.Context) error {
	_, err, shared := c.group.Do("reload", func() (interface{}, error) {
		return nil, c.reload(ctx)
	})
	if shared {
		c.logger.Debug("Reference reload coalesced with a concurrent call")
	}
	return err
}

func (c *ReferenceCache) reload(ctx context.Context) error {
	locations, err := c.repo.ListLocations(ctx)
	if err != nil {
		return fmt.Errorf("failed to load locations: %w", err)
	}
	persons, err := c.repo.ListPersonsByRole(ctx, reference.RoleEmployee, reference.RoleAdmin)
	if err != nil {
		return fmt.Errorf("failed to load persons: %w", err)
	}

	s := &snapshot{
		locations: make(map[string]*reference.Location, len(locations)),
		titles:    make([]string, 0, len(locations)),
		persons:   make(map[int64]*reference.Person, len(persons)),
	}
	for _, l := range locations {
		loc := *l
		s.locations[loc.Title] = &loc
		s.titles = append(s.titles, loc.Title)
	}
	sort.Strings(s.titles)
	for _, p := range persons {
		person := *p
		s.persons[person.UserID] = &person
	}
	c.snap.Store(s)

	c.logger.WithFields(logrus.Fields{
		"locations": len(s.locations),
		"persons":   len(s.persons),
	}).Info("Reference data reloaded")
	return nil
}

func (c *ReferenceCache) HasLocation(title string) bool {
	_, ok := c.snap.Load().locations[title]
	return ok
}

// LocationTitles returns the titles of all locations in a stable order.
func (c *ReferenceCache) LocationTitles() []string {
	return append([]string(nil), c.snap.Load().titles...)
}

// ChannelFor returns the chat that reports for the location are sent to.
func (c *ReferenceCache) ChannelFor(title string) (int64, error) {
	l, ok := c.snap.Load().locations[title]
	if !ok {
		return 0, fmt.Errorf("%w: %q", reference.ErrLocationNotFound, title)
	}
	return l.ChatID, nil
}

func (c *ReferenceCache) IsAdmin(userID int64) bool {
	p, ok := c.snap.Load().persons[userID]
	return ok && p.Role == reference.RoleAdmin
}

// IsEmployee reports whether userID may file reports. Admins may as well.
func (c *ReferenceCache) IsEmployee(userID int64) bool {
	_, ok := c.snap.Load().persons[userID]
	return ok
}

// Employees returns the ids of everyone with the employee role, sorted.
func (c *ReferenceCache) Employees() []int64 {
	s := c.snap.Load()
	ids := make([]int64, 0, len(s.persons))
	for id, p := range s.persons {
		if p.Role == reference.RoleEmployee {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (c *ReferenceCache) FullName(userID int64) (string, bool) {
	p, ok := c.snap.Load().persons[userID]
	if !ok {
		return "", false
	}
	return p.FullName, true
}

// ResolveFullName returns the person's name from the snapshot and falls back
// to the repository for people added since the last reload.
func (c *ReferenceCache) ResolveFullName(ctx context.Context, userID int64) (string, error) {
	if name, ok := c.FullName(userID); ok {
		return name, nil
	}
	name, err := c.repo.GetFullName(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to resolve full name of %d: %w", userID, err)
	}
	return name, nil
}
