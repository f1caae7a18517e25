// Package importer bulk-loads the YaMDb CSV fixtures. Every row is written
// with FirstOrCreate keyed on its id, so running an import twice is harmless.
package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"yamdb/internal/models"

	"gorm.io/gorm"
)

// Result summarises one imported file.
type Result struct {
	File     string
	Rows     int
	Imported int
}

type rowLoader func(tx *gorm.DB, row map[string]string) error

type source struct {
	file string
	load rowLoader
}

// Files lists the fixtures in dependency order.
var Files = []string{
	"category.csv",
	"genre.csv",
	"titles.csv",
	"genre_title.csv",
	"users.csv",
	"review.csv",
	"comments.csv",
}

// Importer loads CSV fixtures into the database.
type Importer struct {
	db      *gorm.DB
	sources []source
}

// New creates a new Importer.
func New(db *gorm.DB) *Importer {
	loaders := []rowLoader{loadCategory, loadGenre, loadTitle, loadGenreTitle, loadUser, loadReview, loadComment}
	sources := make([]source, len(Files))
	for i, f := range Files {
		sources[i] = source{file: f, load: loaders[i]}
	}
	return &Importer{db: db, sources: sources}
}

// Run imports every fixture found in dir. A missing file aborts the run; a
// bad row is logged and skipped.
func (im *Importer) Run(dir string) ([]Result, error) {
	results := make([]Result, 0, len(im.sources))
	for _, src := range im.sources {
		res, err := im.importFile(filepath.Join(dir, src.file), src.load)
		if err != nil {
			return results, err
		}
		log.Printf("Imported %s: %d rows, %d successful", src.file, res.Rows, res.Imported)
		results = append(results, res)
	}
	return results, nil
}

func (im *Importer) importFile(path string, load rowLoader) (Result, error) {
	res := Result{File: filepath.Base(path)}

	f, err := os.Open(path)
	if err != nil {
		return res, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return res, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		res.Rows++
		if err != nil {
			log.Printf("Error in %s row %d: %v", res.File, res.Rows, err)
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = record[i]
			}
		}
		if err := load(im.db, row); err != nil {
			log.Printf("Error in %s row %s: %v", res.File, row["id"], err)
			continue
		}
		res.Imported++
	}
	return res, nil
}

func loadCategory(tx *gorm.DB, row map[string]string) error {
	return tx.Where(models.Category{ID: row["id"]}).
		Attrs(models.Category{Name: row["name"], Slug: row["slug"]}).
		FirstOrCreate(&models.Category{}).Error
}

func loadGenre(tx *gorm.DB, row map[string]string) error {
	return tx.Where(models.Genre{ID: row["id"]}).
		Attrs(models.Genre{Name: row["name"], Slug: row["slug"]}).
		FirstOrCreate(&models.Genre{}).Error
}

func loadTitle(tx *gorm.DB, row map[string]string) error {
	year, err := strconv.Atoi(row["year"])
	if err != nil {
		return fmt.Errorf("invalid year %q: %w", row["year"], err)
	}
	title := models.Title{Name: row["name"], Year: year, Description: row["description"]}
	if id := row["category"]; id != "" {
		if err := exists(tx, &models.Category{}, id); err != nil {
			return err
		}
		title.CategoryID = &id
	}
	return tx.Omit("Category", "Genres", "Rating").Where(models.Title{ID: row["id"]}).Attrs(title).FirstOrCreate(&models.Title{}).Error
}

func loadGenreTitle(tx *gorm.DB, row map[string]string) error {
	titleID, genreID := row["title_id"], row["genre_id"]
	if err := exists(tx, &models.Title{}, titleID); err != nil {
		return err
	}
	if err := exists(tx, &models.Genre{}, genreID); err != nil {
		return err
	}

	var n int64
	if err := tx.Table("genre_titles").Where("title_id = ? AND genre_id = ?", titleID, genreID).Count(&n).Error; err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	return tx.Table("genre_titles").Create(map[string]interface{}{"title_id": titleID, "genre_id": genreID}).Error
}

func loadUser(tx *gorm.DB, row map[string]string) error {
	role := models.Role(row["role"])
	if role == "" {
		role = models.RoleUser
	}
	if !role.Valid() {
		return fmt.Errorf("unknown role %q", row["role"])
	}
	return tx.Where(models.User{ID: row["id"]}).Attrs(models.User{
		Username:  row["username"],
		Email:     row["email"],
		Role:      role,
		Bio:       row["bio"],
		FirstName: row["first_name"],
		LastName:  row["last_name"],
	}).FirstOrCreate(&models.User{}).Error
}

func loadReview(tx *gorm.DB, row map[string]string) error {
	score, err := strconv.Atoi(row["score"])
	if err != nil || score < 1 || score > 10 {
		return fmt.Errorf("invalid score %q", row["score"])
	}
	if err := exists(tx, &models.Title{}, row["title_id"]); err != nil {
		return err
	}
	if err := exists(tx, &models.User{}, row["author"]); err != nil {
		return err
	}
	pubDate, err := parseTime(row["pub_date"])
	if err != nil {
		return err
	}
	return tx.Omit("Author", "Title").Where(models.Review{ID: row["id"]}).Attrs(models.Review{
		Text:     row["text"],
		Score:    score,
		AuthorID: row["author"],
		TitleID:  row["title_id"],
		PubDate:  pubDate,
	}).FirstOrCreate(&models.Review{}).Error
}

func loadComment(tx *gorm.DB, row map[string]string) error {
	if err := exists(tx, &models.Review{}, row["review_id"]); err != nil {
		return err
	}
	if err := exists(tx, &models.User{}, row["author"]); err != nil {
		return err
	}
	pubDate, err := parseTime(row["pub_date"])
	if err != nil {
		return err
	}
	return tx.Omit("Author", "Review").Where(models.Comment{ID: row["id"]}).Attrs(models.Comment{
		Text:     row["text"],
		AuthorID: row["author"],
		ReviewID: row["review_id"],
		PubDate:  pubDate,
	}).FirstOrCreate(&models.Comment{}).Error
}

// exists reports a missing referenced row as an error naming the id.
func exists(tx *gorm.DB, model interface{}, id string) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%T with id %q does not exist", model, id)
	}
	return nil
}

// parseTime accepts the fixture timestamps; an empty value means now.
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid pub_date %q: %w", s, err)
	}
	return t, nil
}
