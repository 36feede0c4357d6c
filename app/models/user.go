package models

// User is an admin account. Password holds a bcrypt hash and is stored, but
// User values are never written to HTTP responses.
type User struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"       json:"id"`
	Username string `gorm:"size:50;uniqueIndex;not null"  json:"username"`
	Password string `gorm:"size:255;not null"             json:"password"`
}

func (User) TableName() string { return "users" }
