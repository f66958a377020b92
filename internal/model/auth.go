package model

// RegisterRequest carries everything needed to open a practitioner account.
type RegisterRequest struct {
	Username         string `json:"username" validate:"required"`
	Password         string `json:"password" validate:"required"`
	Email            string `json:"email" validate:"required,email"`
	FullName         string `json:"fullName" validate:"required"`
	Specialty        string `json:"specialty" validate:"required"`
	LicenseNumber    string `json:"licenseNumber" validate:"required"`
	SecurityQuestion string `json:"securityQuestion" validate:"required"`
	SecurityAnswer   string `json:"securityAnswer" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RecoverPasswordRequest struct {
	Username        string `json:"username" binding:"required"`
	SecurityAnswer  string `json:"securityAnswer" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required"`
	ConfirmPassword string `json:"confirmPassword" binding:"required,eqfield=NewPassword"`
}
