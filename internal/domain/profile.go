package domain

import "time"

// ProfileType distinguishes the two sides of a contract.
type ProfileType string

const (
	ProfileTypeClient     ProfileType = "client"
	ProfileTypeContractor ProfileType = "contractor"
)

// Profile is an account that holds a balance.
type Profile struct {
	ID         int64
	FirstName  string
	LastName   string
	Profession string
	Balance    Money
	Type       ProfileType
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// FullName joins first and last name.
func (p *Profile) FullName() string {
	if p.LastName == "" {
		return p.FirstName
	}
	return p.FirstName + " " + p.LastName
}
