package db

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Author owns posts and series. Authors with a username double as admin accounts.
type Author struct {
	gorm.Model
	Name      string `gorm:"size:100;not null"`
	Username  string `gorm:"size:100;uniqueIndex"`
	Password  string
	Bio       string `gorm:"type:text"`
	Avatar    string
	// Not unique: authors may be created without an email, and sqlite
	// treats two empty strings as a unique-index collision.
	Email     string `gorm:"size:200"`
	Website   string
	Twitter   string
	Instagram string
	Verified  bool `gorm:"default:false"`
}

// EnsureRootAuthor creates a bcrypt-hashed admin author when the given
// credentials are non-empty and no account with that username exists yet.
func EnsureRootAuthor(gdb *gorm.DB, username, password string) error {
	trimmedUser := strings.TrimSpace(username)
	trimmedPassword := strings.TrimSpace(password)
	if trimmedUser == "" || trimmedPassword == "" {
		return nil
	}

	var existing Author
	if err := gdb.Where("username = ?", trimmedUser).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		return gdb.Create(&Author{
			Name:     trimmedUser,
			Username: trimmedUser,
			Password: string(hashed),
			Email:    trimmedUser + "@localhost",
			Verified: true,
		}).Error
	}

	return nil
}
