package reference

import (
	"database/sql"
	"time"
)

// Role is the authorization level of a person.
type Role string

const (
	RoleEmployee Role = "employee"
	RoleAdmin    Role = "admin"
)

// Person is a known user of the bot.
type Person struct {
	UserID    int64
	FullName  string
	Username  sql.NullString // Telegram @username is optional
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Location is a rental point and the chat its reports are delivered to.
type Location struct {
	Title     string
	ChatID    int64
	CreatedAt time.Time
}
