package model

import "time"

// User is a practitioner account. PasswordHash is the only field that
// changes after registration.
type User struct {
	Base
	Username         string    `json:"username" db:"username"`
	FullName         string    `json:"fullName" db:"full_name"`
	Email            string    `json:"email" db:"email"`
	Specialty        string    `json:"specialty" db:"specialty"`
	LicenseNumber    string    `json:"licenseNumber" db:"license_number"`
	PasswordHash     string    `json:"-" db:"password_hash"`
	SecurityQuestion string    `json:"securityQuestion" db:"security_question"`
	SecurityAnswer   string    `json:"-" db:"security_answer"`
	CreatedAt        time.Time `json:"createdAt" db:"created_at"`
}

// UserSummary is the public part of a User, as carried by backups.
type UserSummary struct {
	Username      string `json:"username"`
	FullName      string `json:"fullName"`
	Email         string `json:"email"`
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"licenseNumber"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{
		Username:      u.Username,
		FullName:      u.FullName,
		Email:         u.Email,
		Specialty:     u.Specialty,
		LicenseNumber: u.LicenseNumber,
	}
}
