package services

import (
	"errors"
	"fmt"
	"strings"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"

	"github.com/go-playground/validator/v10"
)

// TitleInput is the write payload of a title. Category and genres are
// referenced by slug.
type TitleInput struct {
	Name        string   `json:"name" validate:"required,max=256"`
	Year        int      `json:"year" validate:"required,gte=1,notfuture"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" validate:"dive,slug"`
	Category    string   `json:"category" validate:"omitempty,slug"`
}

// TitlePatch is a partial TitleInput; nil fields keep their stored value.
type TitlePatch struct {
	Name        *string   `json:"name"`
	Year        *int      `json:"year"`
	Description *string   `json:"description"`
	Genre       *[]string `json:"genre"`
	Category    *string   `json:"category"`
}

// TitleService handles business logic for titles.
type TitleService struct {
	titleRepo    repositories.TitleRepository
	categoryRepo repositories.CategoryRepository
	genreRepo    repositories.GenreRepository
	validate     *validator.Validate
}

// NewTitleService creates a new TitleService.
func NewTitleService(titleRepo repositories.TitleRepository, categoryRepo repositories.CategoryRepository, genreRepo repositories.GenreRepository) *TitleService {
	return &TitleService{
		titleRepo:    titleRepo,
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		validate:     validation.New(),
	}
}

// ListTitles retrieves titles matching filter, each with its rating.
func (s *TitleService) ListTitles(filter repositories.TitleFilter) ([]models.Title, error) {
	return s.titleRepo.List(filter)
}

// GetTitle retrieves a single title with its rating.
func (s *TitleService) GetTitle(id string) (*models.Title, error) {
	return s.titleRepo.GetByID(id)
}

// CreateTitle validates in, resolves its slugs and stores the title.
func (s *TitleService) CreateTitle(in TitleInput) (*models.Title, error) {
	title := &models.Title{}
	if err := s.apply(title, in); err != nil {
		return nil, err
	}
	if err := s.titleRepo.Create(title); err != nil {
		return nil, fmt.Errorf("failed to create title: %w", err)
	}
	return s.titleRepo.GetByID(title.ID)
}

// UpdateTitle applies a partial update to an existing title.
func (s *TitleService) UpdateTitle(id string, patch TitlePatch) (*models.Title, error) {
	title, err := s.titleRepo.GetByID(id)
	if err != nil {
		return nil, err
	}

	in := TitleInput{
		Name:        title.Name,
		Year:        title.Year,
		Description: title.Description,
		Genre:       make([]string, 0, len(title.Genres)),
	}
	for _, g := range title.Genres {
		in.Genre = append(in.Genre, g.Slug)
	}
	if title.Category != nil {
		in.Category = title.Category.Slug
	}

	if patch.Name != nil {
		in.Name = *patch.Name
	}
	if patch.Year != nil {
		in.Year = *patch.Year
	}
	if patch.Description != nil {
		in.Description = *patch.Description
	}
	if patch.Genre != nil {
		in.Genre = *patch.Genre
	}
	if patch.Category != nil {
		in.Category = *patch.Category
	}

	if err := s.apply(title, in); err != nil {
		return nil, err
	}
	if err := s.titleRepo.Update(title); err != nil {
		return nil, err
	}
	return s.titleRepo.GetByID(id)
}

// DeleteTitle deletes a title together with its reviews and comments.
func (s *TitleService) DeleteTitle(id string) error {
	return s.titleRepo.Delete(id)
}

// apply validates in and copies it onto title with category and genres resolved.
func (s *TitleService) apply(title *models.Title, in TitleInput) error {
	if err := validation.Struct(s.validate, in); err != nil {
		return err
	}

	title.Name = in.Name
	title.Year = in.Year
	title.Description = in.Description
	title.CategoryID = nil
	title.Category = nil

	if in.Category != "" {
		category, err := s.categoryRepo.GetBySlug(in.Category)
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewValidationError("category", fmt.Sprintf("Object with slug=%s does not exist.", in.Category))
		}
		if err != nil {
			return err
		}
		title.CategoryID = &category.ID
	}

	slugs := uniqueStrings(in.Genre)
	genres, err := s.genreRepo.GetBySlugs(slugs)
	if err != nil {
		return err
	}
	if len(genres) != len(slugs) {
		found := make(map[string]bool, len(genres))
		for _, g := range genres {
			found[g.Slug] = true
		}
		var missing []string
		for _, sl := range slugs {
			if !found[sl] {
				missing = append(missing, sl)
			}
		}
		return apperrors.NewValidationError("genre", fmt.Sprintf("Object with slug=%s does not exist.", strings.Join(missing, ",")))
	}
	title.Genres = genres
	return nil
}

func uniqueStrings(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
