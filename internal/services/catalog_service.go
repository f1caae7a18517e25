package services

import (
	"errors"
	"fmt"

	"yamdb/internal/apperrors"
	"yamdb/internal/models"
	"yamdb/internal/repositories"
	"yamdb/internal/validation"

	"github.com/go-playground/validator/v10"
	"github.com/gosimple/slug"
)

// SlugInput is the write payload shared by categories and genres.
type SlugInput struct {
	Name string `json:"name" validate:"required,max=256"`
	Slug string `json:"slug" validate:"required,max=50,slug"`
}

// normalize derives a slug from the name when none was given.
func (in *SlugInput) normalize() {
	if in.Slug == "" && in.Name != "" {
		in.Slug = slug.Make(in.Name)
	}
}

// CatalogService handles business logic for categories and genres.
type CatalogService struct {
	categoryRepo repositories.CategoryRepository
	genreRepo    repositories.GenreRepository
	validate     *validator.Validate
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(categoryRepo repositories.CategoryRepository, genreRepo repositories.GenreRepository) *CatalogService {
	return &CatalogService{
		categoryRepo: categoryRepo,
		genreRepo:    genreRepo,
		validate:     validation.New(),
	}
}

// ListCategories retrieves categories, optionally filtered by name.
func (s *CatalogService) ListCategories(search string) ([]models.Category, error) {
	return s.categoryRepo.List(search)
}

// CreateCategory creates a new category.
func (s *CatalogService) CreateCategory(in SlugInput) (*models.Category, error) {
	in.normalize()
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	category := &models.Category{Name: in.Name, Slug: in.Slug}
	if err := s.categoryRepo.Create(category); err != nil {
		return nil, duplicateAsValidation(err, "slug", "Category with this slug or name already exists.")
	}
	return category, nil
}

// DeleteCategory deletes a category by its slug.
func (s *CatalogService) DeleteCategory(categorySlug string) error {
	return s.categoryRepo.DeleteBySlug(categorySlug)
}

// ListGenres retrieves genres, optionally filtered by name.
func (s *CatalogService) ListGenres(search string) ([]models.Genre, error) {
	return s.genreRepo.List(search)
}

// CreateGenre creates a new genre.
func (s *CatalogService) CreateGenre(in SlugInput) (*models.Genre, error) {
	in.normalize()
	if err := validation.Struct(s.validate, in); err != nil {
		return nil, err
	}
	genre := &models.Genre{Name: in.Name, Slug: in.Slug}
	if err := s.genreRepo.Create(genre); err != nil {
		return nil, duplicateAsValidation(err, "slug", "Genre with this slug already exists.")
	}
	return genre, nil
}

// DeleteGenre deletes a genre by its slug.
func (s *CatalogService) DeleteGenre(genreSlug string) error {
	return s.genreRepo.DeleteBySlug(genreSlug)
}

func duplicateAsValidation(err error, field, message string) error {
	if errors.Is(err, apperrors.ErrDuplicate) {
		return apperrors.NewValidationError(field, message)
	}
	return fmt.Errorf("failed to save: %w", err)
}
