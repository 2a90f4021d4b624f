package model

const (
	CredentialsPhone = "phone"
	CredentialsEmail = "email"
)

// Credentials is the login input. Phone credentials carry a passcode,
// email credentials carry a password and the role being signed in as.
type Credentials struct {
	Type     string `json:"type" binding:"required,oneof=phone email"`
	Phone    string `json:"phone"`
	Code     string `json:"otp"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
}
