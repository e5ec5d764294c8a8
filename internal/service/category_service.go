package service

import (
	"errors"
	"strings"

	"github.com/letopis/letopis/internal/db"
	"github.com/letopis/letopis/internal/slug"
	"gorm.io/gorm"
)

var (
	ErrCategoryNameRequired = errors.New("category name is required")
	ErrCategoryNameTaken    = errors.New("category name already exists")
)

// CategoryService wraps category related database operations.
type CategoryService struct {
	db *gorm.DB
}

// NewCategoryService creates a CategoryService instance.
func NewCategoryService(gdb *gorm.DB) *CategoryService {
	return &CategoryService{db: gdb}
}

// CategoryInput represents fields accepted when creating or updating a category.
type CategoryInput struct {
	Name        string
	Description string
	Color       string
	Icon        string
}

// ListAll returns all categories ordered by name.
func (s *CategoryService) ListAll() ([]db.Category, error) {
	var categories []db.Category
	if err := s.db.Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// Get fetches a category by id.
func (s *CategoryService) Get(id uint) (*db.Category, error) {
	var category db.Category
	if err := s.db.First(&category, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// GetBySlug fetches a category by its slug.
func (s *CategoryService) GetBySlug(categorySlug string) (*db.Category, error) {
	var category db.Category
	if err := s.db.Where("slug = ?", categorySlug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// Create persists a category with a unique name and slug.
func (s *CategoryService) Create(input CategoryInput) (*db.Category, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	var count int64
	if err := s.db.Model(&db.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryNameTaken
	}

	category := db.Category{
		Name:        name,
		Slug:        slug.Make(name),
		Description: strings.TrimSpace(input.Description),
		Color:       strings.TrimSpace(input.Color),
		Icon:        strings.TrimSpace(input.Icon),
	}
	if err := s.db.Create(&category).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

// Update renames a category, keeping its slug in step with the name.
func (s *CategoryService) Update(id uint, input CategoryInput) (*db.Category, error) {
	category, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrCategoryNameRequired
	}

	var count int64
	if err := s.db.Model(&db.Category{}).
		Where("name = ? AND id <> ?", name, id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrCategoryNameTaken
	}

	category.Name = name
	category.Slug = slug.Make(name)
	category.Description = strings.TrimSpace(input.Description)
	category.Color = strings.TrimSpace(input.Color)
	category.Icon = strings.TrimSpace(input.Icon)

	if err := s.db.Save(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category and its post associations.
func (s *CategoryService) Delete(id uint) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var category db.Category
		if err := tx.First(&category, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCategoryNotFound
			}
			return err
		}
		if err := tx.Model(&category).Association("Posts").Clear(); err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}

// PostCountMap returns published-post counts per category id.
func (s *CategoryService) PostCountMap() (map[uint]int64, error) {
	var rows []struct {
		CategoryID uint
		Count      int64
	}
	if err := s.db.Table("post_categories").
		Select("post_categories.category_id, COUNT(*) AS count").
		Joins("JOIN posts ON posts.id = post_categories.post_id").
		Where("posts.status = ? AND posts.deleted_at IS NULL", db.PostStatusPublished).
		Group("post_categories.category_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	result := make(map[uint]int64, len(rows))
	for _, row := range rows {
		result[row.CategoryID] = row.Count
	}
	return result, nil
}
