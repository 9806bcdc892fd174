package models

// MaxPostBytes is the largest accepted post body, measured in UTF-8 bytes as
// sent. The column is unbounded text because sanitizing may lengthen it.
const MaxPostBytes = 1_000_000

// Post is a short text owned by exactly one user. OwnerID never changes.
// The JSON form is also the cache serialization, so it carries exactly the
// fields a store query returns.
type Post struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Text    string `gorm:"not null" json:"text"`
	OwnerID uint   `gorm:"index;not null" json:"owner_id"`
}
