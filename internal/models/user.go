package models

import (
	"strconv"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// User is an administrative account. It is unrelated to study data.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"size:150;uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"size:255;not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// SetPassword stores the bcrypt hash of plain. The plain password is never kept.
func (u *User) SetPassword(plain string) error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashed)
	return nil
}

func (u *User) CheckPassword(plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(plain)) == nil
}

// SessionID is the identifier stored in the login session.
func (u *User) SessionID() string {
	return strconv.FormatUint(uint64(u.ID), 10)
}
