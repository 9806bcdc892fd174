package models

// User is a registered account. Passwords are stored as bcrypt hashes only.
// Records are created on signup and never updated.
type User struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	Email        string `gorm:"size:320;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
}
