package types

import "time"

// Gender values accepted at registration.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// ValidGender reports whether g is one of the accepted gender values.
func ValidGender(g string) bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// User represents a registered account in the system.
type User struct {
	// ID is the unique identifier of the user.
	ID int `json:"id" db:"id"`

	// FullName is the user's full display name.
	FullName string `json:"fullname" db:"fullname"`

	// Email is the user's email address. It is globally unique and
	// acts as the login identifier.
	Email string `json:"email" db:"email"`

	// PasswordHash stores the bcrypt hash of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// Age is the user's age in years, if supplied at registration.
	Age *int `json:"age,omitempty" db:"age"`

	// Gender is one of "male", "female", or "other", if supplied.
	Gender *string `json:"gender,omitempty" db:"gender"`

	// ProfileImage is the stored filename of the uploaded profile
	// image, if one was provided. The file itself lives in upload
	// storage, not in the database.
	ProfileImage *string `json:"profile_image,omitempty" db:"profile_image"`

	// CVFilename is the stored filename of the uploaded CV (PDF),
	// if one was provided.
	CVFilename *string `json:"cv_filename,omitempty" db:"cv_filename"`

	// RegDate is the timestamp when the account was created.
	// It is set once and never updated.
	RegDate time.Time `json:"reg_date" db:"reg_date"`
}
