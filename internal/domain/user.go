package domain

import "time"

// User is the slice of the identity record the participation rules read
type User struct {
	ID        string
	Email     string
	Name      string
	IsVetted  bool
	IsActive  bool
	CreatedAt time.Time
}
