package models

// Category groups titles by kind (film, book, music, ...).
type Category struct {
	ID   string `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(256);not null;uniqueIndex"`
	Slug string `json:"slug" gorm:"type:varchar(50);not null;uniqueIndex"`
}

// Genre tags a title; a title may carry any number of genres.
type Genre struct {
	ID   string `json:"-" gorm:"primaryKey;type:varchar(36)"`
	Name string `json:"name" gorm:"type:varchar(256);not null"`
	Slug string `json:"slug" gorm:"type:varchar(50);not null;uniqueIndex"`
}

// Title is a catalogued work that users review.
// Rating is filled by the repository's aggregate select and never written.
type Title struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name        string    `json:"name" gorm:"type:varchar(256);not null;index"`
	Year        int       `json:"year" gorm:"not null;index"`
	Description string    `json:"description" gorm:"type:text"`
	CategoryID  *string   `json:"-" gorm:"type:varchar(36);index"`
	Category    *Category `json:"category" gorm:"constraint:OnDelete:SET NULL"`
	Genres      []Genre   `json:"genre" gorm:"many2many:genre_titles;constraint:OnDelete:CASCADE"`
	Rating      *float64  `json:"rating" gorm:"->;-:migration"`
}
