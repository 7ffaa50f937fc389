// Package directory is the account directory: user profile lookup and
// creation on PostgreSQL, with an explicit bounded cache for the read-time
// live-over-snapshot merge of comment author data.
package directory

import (
	"errors"

	"gorm.io/gorm"

	"github.com/craftfolio/backend/errs"
	"github.com/craftfolio/backend/internal/models"
)

// Directory defines the account directory operations the engine's
// collaborators need.
type Directory interface {
	Create(user *models.User) error
	GetByUID(uid string) (*models.User, error)
	GetByFirebaseUID(firebaseUID string) (*models.User, error)
	Update(user *models.User) error
	Search(query string) ([]models.User, error)
}

// PostgresDirectory implements Directory on PostgreSQL.
type PostgresDirectory struct {
	db *gorm.DB
}

// NewPostgresDirectory creates a new PostgresDirectory.
func NewPostgresDirectory(db *gorm.DB) *PostgresDirectory {
	return &PostgresDirectory{db: db}
}

func (d *PostgresDirectory) Create(user *models.User) error {
	return d.db.Create(user).Error
}

func (d *PostgresDirectory) GetByUID(uid string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("uid = ?", uid).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.UserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (d *PostgresDirectory) GetByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := d.db.Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.UserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (d *PostgresDirectory) Update(user *models.User) error {
	return d.db.Save(user).Error
}

// Search finds users by display name or username, case-insensitive.
func (d *PostgresDirectory) Search(query string) ([]models.User, error) {
	var users []models.User
	err := d.db.Where("LOWER(display_name) LIKE LOWER(?) OR LOWER(username) LIKE LOWER(?)",
		"%"+query+"%", "%"+query+"%").Find(&users).Error
	return users, err
}
