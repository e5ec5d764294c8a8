package service

import (
	"errors"
	"strings"

	"github.com/letopis/letopis/internal/db"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrAuthorNotFound    = errors.New("author not found")
	ErrAuthorNameTaken   = errors.New("author name or email already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// AuthorService wraps author profiles and admin authentication.
type AuthorService struct {
	db *gorm.DB
}

// NewAuthorService creates an AuthorService instance.
func NewAuthorService(gdb *gorm.DB) *AuthorService {
	return &AuthorService{db: gdb}
}

// AuthorInput represents profile fields of an author.
type AuthorInput struct {
	Name      string
	Bio       string
	Avatar    string
	Email     string
	Website   string
	Twitter   string
	Instagram string
	Verified  bool
}

// ListAll returns all authors ordered by name.
func (s *AuthorService) ListAll() ([]db.Author, error) {
	var authors []db.Author
	if err := s.db.Order("name asc").Find(&authors).Error; err != nil {
		return nil, err
	}
	return authors, nil
}

// Get fetches an author by id.
func (s *AuthorService) Get(id uint) (*db.Author, error) {
	var author db.Author
	if err := s.db.First(&author, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAuthorNotFound
		}
		return nil, err
	}
	return &author, nil
}

// UpdateProfile applies profile fields to an existing author.
func (s *AuthorService) UpdateProfile(id uint, input AuthorInput) (*db.Author, error) {
	author, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if name := strings.TrimSpace(input.Name); name != "" {
		author.Name = name
	}
	author.Bio = strings.TrimSpace(input.Bio)
	author.Avatar = strings.TrimSpace(input.Avatar)
	if email := strings.TrimSpace(input.Email); email != "" {
		author.Email = email
	}
	author.Website = strings.TrimSpace(input.Website)
	author.Twitter = strings.TrimSpace(input.Twitter)
	author.Instagram = strings.TrimSpace(input.Instagram)
	author.Verified = input.Verified

	if err := s.db.Save(author).Error; err != nil {
		return nil, err
	}
	return author, nil
}

// Authenticate checks admin credentials and returns the matching author.
func (s *AuthorService) Authenticate(username, password string) (*db.Author, error) {
	var author db.Author
	if err := s.db.Where("username = ?", strings.TrimSpace(username)).First(&author).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredential
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(author.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}
	return &author, nil
}
