package repositories

import (
	"fmt"
	"strings"

	"yamdb/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMUserRepository is a GORM implementation of UserRepository.
type GORMUserRepository struct {
	db *gorm.DB
}

// NewGORMUserRepository creates a new instance of GORMUserRepository.
func NewGORMUserRepository(db *gorm.DB) *GORMUserRepository {
	return &GORMUserRepository{
		db: db,
	}
}

// Create creates a new user in the database.
func (r *GORMUserRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := r.db.Create(user).Error; err != nil {
		return translate(err, fmt.Sprintf("user %s", user.Username))
	}
	return nil
}

// Update writes the profile fields of an existing user. The confirmation code
// is only ever changed through SetConfirmationCode.
func (r *GORMUserRepository) Update(user *models.User) error {
	res := r.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"username":     user.Username,
		"email":        user.Email,
		"first_name":   user.FirstName,
		"last_name":    user.LastName,
		"bio":          user.Bio,
		"role":         user.Role,
		"is_staff":     user.IsStaff,
		"is_superuser": user.IsSuperuser,
	})
	if res.Error != nil {
		return translate(res.Error, fmt.Sprintf("user %s", user.Username))
	}
	if res.RowsAffected == 0 {
		return notFound(fmt.Sprintf("user with ID %s", user.ID))
	}
	return nil
}

// Delete removes a user and, with it, every review and comment they wrote.
func (r *GORMUserRepository) Delete(username string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, "username = ?", username).Error; err != nil {
			return translate(err, fmt.Sprintf("user %s", username))
		}

		authored := tx.Model(&models.Review{}).Select("id").Where("author_id = ?", user.ID)
		if err := tx.Where("author_id = ? OR review_id IN (?)", user.ID, authored).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("failed to delete comments of user %s: %w", username, err)
		}
		if err := tx.Where("author_id = ?", user.ID).Delete(&models.Review{}).Error; err != nil {
			return fmt.Errorf("failed to delete reviews of user %s: %w", username, err)
		}
		if err := tx.Delete(&user).Error; err != nil {
			return fmt.Errorf("failed to delete user %s: %w", username, err)
		}
		return nil
	})
}

// List returns users ordered by username, optionally filtered by a username substring.
func (r *GORMUserRepository) List(search string) ([]models.User, error) {
	var users []models.User
	q := r.db.Order("username")
	if search != "" {
		q = q.Where("LOWER(username) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetByUsername retrieves a user by their username from the database.
func (r *GORMUserRepository) GetByUsername(username string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "username = ?", username).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user with username %s", username))
	}
	return &user, nil
}

// GetByEmail retrieves a user by their email from the database.
func (r *GORMUserRepository) GetByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "email = ?", email).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user with email %s", email))
	}
	return &user, nil
}

// GetByID retrieves a user by their ID from the database.
func (r *GORMUserRepository) GetByID(id string) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, translate(err, fmt.Sprintf("user with ID %s", id))
	}
	return &user, nil
}

// SetConfirmationCode stores the hash of the latest confirmation code; an empty
// hash invalidates any outstanding code.
func (r *GORMUserRepository) SetConfirmationCode(id, hash string) error {
	res := r.db.Model(&models.User{}).Where("id = ?", id).Update("confirmation_code", hash)
	if res.Error != nil {
		return fmt.Errorf("failed to store confirmation code for user %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return notFound(fmt.Sprintf("user with ID %s", id))
	}
	return nil
}
