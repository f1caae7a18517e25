package repositories

import (
	"fmt"
	"strings"

	"yamdb/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{db: db}
}

// List retrieves categories ordered by name, optionally filtered by a name substring.
func (r *GORMCategoryRepository) List(search string) ([]models.Category, error) {
	var categories []models.Category
	if err := nameSearch(r.db, search).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

// GetBySlug retrieves a single category by its slug.
func (r *GORMCategoryRepository) GetBySlug(slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("category with slug %s", slug))
	}
	return &category, nil
}

// Create creates a new category in the database.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.Create(category).Error; err != nil {
		return translate(err, fmt.Sprintf("category with slug %s", category.Slug))
	}
	return nil
}

// DeleteBySlug deletes a category; titles in it keep existing without a category.
func (r *GORMCategoryRepository) DeleteBySlug(slug string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "slug = ?", slug).Error; err != nil {
			return translate(err, fmt.Sprintf("category with slug %s", slug))
		}
		if err := tx.Model(&models.Title{}).Where("category_id = ?", category.ID).Update("category_id", nil).Error; err != nil {
			return fmt.Errorf("failed to detach titles from category %s: %w", slug, err)
		}
		if err := tx.Delete(&category).Error; err != nil {
			return fmt.Errorf("failed to delete category %s: %w", slug, err)
		}
		return nil
	})
}

// GORMGenreRepository is a GORM implementation of GenreRepository.
type GORMGenreRepository struct {
	db *gorm.DB
}

// NewGORMGenreRepository creates a new instance of GORMGenreRepository.
func NewGORMGenreRepository(db *gorm.DB) *GORMGenreRepository {
	return &GORMGenreRepository{db: db}
}

// List retrieves genres ordered by name, optionally filtered by a name substring.
func (r *GORMGenreRepository) List(search string) ([]models.Genre, error) {
	var genres []models.Genre
	if err := nameSearch(r.db, search).Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

// GetBySlug retrieves a single genre by its slug.
func (r *GORMGenreRepository) GetBySlug(slug string) (*models.Genre, error) {
	var genre models.Genre
	if err := r.db.First(&genre, "slug = ?", slug).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("genre with slug %s", slug))
	}
	return &genre, nil
}

// GetBySlugs returns the genres matching slugs; unknown slugs are simply absent.
func (r *GORMGenreRepository) GetBySlugs(slugs []string) ([]models.Genre, error) {
	genres := []models.Genre{}
	if len(slugs) == 0 {
		return genres, nil
	}
	if err := r.db.Where("slug IN ?", slugs).Order("slug").Find(&genres).Error; err != nil {
		return nil, fmt.Errorf("failed to get genres by slug: %w", err)
	}
	return genres, nil
}

// Create creates a new genre in the database.
func (r *GORMGenreRepository) Create(genre *models.Genre) error {
	if genre.ID == "" {
		genre.ID = uuid.New().String()
	}
	if err := r.db.Create(genre).Error; err != nil {
		return translate(err, fmt.Sprintf("genre with slug %s", genre.Slug))
	}
	return nil
}

// DeleteBySlug deletes a genre and unlinks it from every title.
func (r *GORMGenreRepository) DeleteBySlug(slug string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var genre models.Genre
		if err := tx.First(&genre, "slug = ?", slug).Error; err != nil {
			return translate(err, fmt.Sprintf("genre with slug %s", slug))
		}
		if err := tx.Exec("DELETE FROM genre_titles WHERE genre_id = ?", genre.ID).Error; err != nil {
			return fmt.Errorf("failed to unlink genre %s: %w", slug, err)
		}
		if err := tx.Delete(&genre).Error; err != nil {
			return fmt.Errorf("failed to delete genre %s: %w", slug, err)
		}
		return nil
	})
}

func nameSearch(db *gorm.DB, search string) *gorm.DB {
	q := db.Order("name")
	if search != "" {
		q = q.Where("LOWER(name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	return q
}
