package repositories

import (
	"fmt"
	"strings"

	"yamdb/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const ratingColumn = "(SELECT AVG(reviews.score) FROM reviews WHERE reviews.title_id = titles.id) AS rating"

// GORMTitleRepository is a GORM implementation of TitleRepository.
type GORMTitleRepository struct {
	db *gorm.DB
}

// NewGORMTitleRepository creates a new instance of GORMTitleRepository.
func NewGORMTitleRepository(db *gorm.DB) *GORMTitleRepository {
	return &GORMTitleRepository{db: db}
}

// withRating selects titles together with their average score in one query
// and preloads the category and genres.
func (r *GORMTitleRepository) withRating() *gorm.DB {
	return r.db.Model(&models.Title{}).
		Select("titles.*, "+ratingColumn).
		Preload("Category").
		Preload("Genres", func(db *gorm.DB) *gorm.DB { return db.Order("genres.slug") })
}

// List retrieves titles ordered by name.
func (r *GORMTitleRepository) List(filter TitleFilter) ([]models.Title, error) {
	q := r.withRating()
	if filter.Category != "" {
		q = q.Where("titles.category_id IN (?)",
			r.db.Model(&models.Category{}).Select("id").Where("slug = ?", filter.Category))
	}
	if filter.Genre != "" {
		q = q.Where("titles.id IN (?)",
			r.db.Table("genre_titles").Select("genre_titles.title_id").
				Joins("JOIN genres ON genres.id = genre_titles.genre_id").
				Where("genres.slug = ?", filter.Genre))
	}
	if filter.Name != "" {
		q = q.Where("LOWER(titles.name) LIKE ?", "%"+strings.ToLower(filter.Name)+"%")
	}
	if filter.Year != 0 {
		q = q.Where("titles.year = ?", filter.Year)
	}

	var titles []models.Title
	if err := q.Order("titles.name").Find(&titles).Error; err != nil {
		return nil, fmt.Errorf("failed to list titles: %w", err)
	}
	for i := range titles {
		normalizeGenres(&titles[i])
	}
	return titles, nil
}

// GetByID retrieves a single title by its ID.
func (r *GORMTitleRepository) GetByID(id string) (*models.Title, error) {
	var title models.Title
	if err := r.withRating().First(&title, "titles.id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("title with ID %s", id))
	}
	normalizeGenres(&title)
	return &title, nil
}

// Create inserts the title and links it to already stored genres.
func (r *GORMTitleRepository) Create(title *models.Title) error {
	if title.ID == "" {
		title.ID = uuid.New().String()
	}
	if err := r.db.Omit("Category", "Genres.*").Create(title).Error; err != nil {
		return translate(err, fmt.Sprintf("title %s", title.Name))
	}
	return nil
}

// Update writes the scalar fields and replaces the genre links.
func (r *GORMTitleRepository) Update(title *models.Title) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Title{}).Where("id = ?", title.ID).Updates(map[string]interface{}{
			"name":        title.Name,
			"year":        title.Year,
			"description": title.Description,
			"category_id": title.CategoryID,
		})
		if res.Error != nil {
			return translate(res.Error, fmt.Sprintf("title with ID %s", title.ID))
		}
		if res.RowsAffected == 0 {
			return notFound(fmt.Sprintf("title with ID %s", title.ID))
		}
		genres := title.Genres
		if genres == nil {
			genres = []models.Genre{}
		}
		if err := tx.Model(&models.Title{ID: title.ID}).Omit("Genres.*").Association("Genres").Replace(genres); err != nil {
			return fmt.Errorf("failed to update genres of title %s: %w", title.ID, err)
		}
		return nil
	})
}

// Delete removes a title along with its reviews, their comments and its genre links.
func (r *GORMTitleRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		reviews := tx.Model(&models.Review{}).Select("id").Where("title_id = ?", id)
		if err := tx.Where("review_id IN (?)", reviews).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of title %s: %w", id, err)
		}
		if err := tx.Where("title_id = ?", id).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of title %s: %w", id, err)
		}
		if err := tx.Exec("DELETE FROM genre_titles WHERE title_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to unlink genres of title %s: %w", id, err)
		}
		res := tx.Delete(&models.Title{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete title %s: %w", id, res.Error)
		}
		if res.RowsAffected == 0 {
			return notFound(fmt.Sprintf("title with ID %s", id))
		}
		return nil
	})
}

func normalizeGenres(title *models.Title) {
	if title.Genres == nil {
		title.Genres = []models.Genre{}
	}
}
