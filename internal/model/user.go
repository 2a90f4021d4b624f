package model

import "time"

// Role is the access level of a user.
type Role string

const (
	RoleFarmer  Role = "farmer"
	RoleOfficer Role = "officer"
	RoleAdmin   Role = "admin"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleFarmer, RoleOfficer, RoleAdmin:
		return true
	}
	return false
}

// Locale is a supported UI language.
type Locale string

const (
	LocaleEnglish   Locale = "en"
	LocaleMalayalam Locale = "ml"
)

// DefaultLocale is used when no preference has been stored.
const DefaultLocale = LocaleMalayalam

// Valid reports whether l is a supported locale.
func (l Locale) Valid() bool {
	return l == LocaleEnglish || l == LocaleMalayalam
}

// User represents a farmer, officer or admin account.
// JSON names match the layout persisted under the "user" key.
type User struct {
	ID               string    `json:"id"`
	Role             Role      `json:"role"`
	Phone            string    `json:"phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	PasswordHash     string    `json:"-"` // Never persisted client-side
	Name             string    `json:"name,omitempty"`
	Panchayat        string    `json:"panchayat,omitempty"`
	District         string    `json:"district,omitempty"`
	PrimaryCrops     []string  `json:"primaryCrops,omitempty"`
	LandSize         *float64  `json:"landSize,omitempty"`   // Acres
	Experience       *int      `json:"experience,omitempty"` // Years
	ProfileCompleted bool      `json:"profileCompleted"`
	Locale           Locale    `json:"locale"`
	CreatedAt        time.Time `json:"-"`
	UpdatedAt        time.Time `json:"-"`
}

// Clone returns a deep copy of u.
func (u *User) Clone() *User {
	if u == nil {
		return nil
	}
	c := *u
	if u.PrimaryCrops != nil {
		c.PrimaryCrops = append([]string(nil), u.PrimaryCrops...)
	}
	if u.LandSize != nil {
		v := *u.LandSize
		c.LandSize = &v
	}
	if u.Experience != nil {
		v := *u.Experience
		c.Experience = &v
	}
	return &c
}

// NeedsProfileSetup reports whether profile-dependent features must stay gated.
func (u *User) NeedsProfileSetup() bool {
	return u != nil && !u.ProfileCompleted
}

// ProfileUpdate carries a partial profile change. Nil fields are left untouched.
type ProfileUpdate struct {
	Name             *string   `json:"name,omitempty"`
	Panchayat        *string   `json:"panchayat,omitempty"`
	District         *string   `json:"district,omitempty"`
	PrimaryCrops     *[]string `json:"primaryCrops,omitempty"`
	LandSize         *float64  `json:"landSize,omitempty" binding:"omitempty,gte=0"`
	Experience       *int      `json:"experience,omitempty" binding:"omitempty,gte=0"`
	ProfileCompleted *bool     `json:"profileCompleted,omitempty"`
	Locale           *Locale   `json:"locale,omitempty" binding:"omitempty,oneof=en ml"`
}

// Apply merges the set fields of p into u in place.
func (p ProfileUpdate) Apply(u *User) {
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Panchayat != nil {
		u.Panchayat = *p.Panchayat
	}
	if p.District != nil {
		u.District = *p.District
	}
	if p.PrimaryCrops != nil {
		u.PrimaryCrops = append([]string(nil), (*p.PrimaryCrops)...)
	}
	if p.LandSize != nil {
		v := *p.LandSize
		u.LandSize = &v
	}
	if p.Experience != nil {
		v := *p.Experience
		u.Experience = &v
	}
	if p.ProfileCompleted != nil {
		u.ProfileCompleted = *p.ProfileCompleted
	}
	if p.Locale != nil {
		u.Locale = *p.Locale
	}
}
