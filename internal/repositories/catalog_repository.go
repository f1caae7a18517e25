package repositories

import (
	"yamdb/internal/models"
)

// CategoryRepository defines the interface for category data access.
type CategoryRepository interface {
	List(search string) ([]models.Category, error)
	GetBySlug(slug string) (*models.Category, error)
	Create(category *models.Category) error
	DeleteBySlug(slug string) error
}

// GenreRepository defines the interface for genre data access.
type GenreRepository interface {
	List(search string) ([]models.Genre, error)
	GetBySlug(slug string) (*models.Genre, error)
	GetBySlugs(slugs []string) ([]models.Genre, error)
	Create(genre *models.Genre) error
	DeleteBySlug(slug string) error
}
