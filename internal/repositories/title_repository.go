package repositories

import "yamdb/internal/models"

// TitleFilter narrows a title listing. Zero values are ignored.
type TitleFilter struct {
	Category string // category slug
	Genre    string // genre slug
	Name     string // case-insensitive substring
	Year     int
}

// TitleRepository defines the interface for title data access. Every read
// returns titles with Category, Genres and the aggregate Rating populated.
type TitleRepository interface {
	List(filter TitleFilter) ([]models.Title, error)
	GetByID(id string) (*models.Title, error)
	Create(title *models.Title) error
	Update(title *models.Title) error
	Delete(id string) error
}
