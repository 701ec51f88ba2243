package repositories

import (
	"strings"
	"time"

	"github.com/debatify/backend/internal/models"
	"gorm.io/gorm"
)

// OtpRepository defines the interface for one-time code operations
type OtpRepository interface {
	// ReplaceForEmail deletes any earlier codes for the email and stores
	// the new one, so only the newest code ever verifies.
	ReplaceForEmail(otp *models.Otp) error
	FindByEmailAndCode(email, code string) (*models.Otp, error)
	DeleteByEmail(email string) error
	DeleteExpired(now time.Time) error
}

type postgresOtpRepository struct {
	db *gorm.DB
}

// NewPostgresOtpRepository creates an OtpRepository backed by PostgreSQL
func NewPostgresOtpRepository(db *gorm.DB) OtpRepository {
	return &postgresOtpRepository{db: db}
}

func (r *postgresOtpRepository) ReplaceForEmail(otp *models.Otp) error {
	otp.Email = strings.ToLower(otp.Email)
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("email = ?", otp.Email).Delete(&models.Otp{}).Error; err != nil {
			return err
		}
		return tx.Create(otp).Error
	})
}

func (r *postgresOtpRepository) FindByEmailAndCode(email, code string) (*models.Otp, error) {
	var otp models.Otp
	if err := r.db.Where("email = ? AND code = ?", strings.ToLower(email), code).First(&otp).Error; err != nil {
		return nil, err
	}
	return &otp, nil
}

func (r *postgresOtpRepository) DeleteByEmail(email string) error {
	return r.db.Where("email = ?", strings.ToLower(email)).Delete(&models.Otp{}).Error
}

// DeleteExpired prunes codes past their validity window. The Mongoose
// original relied on a TTL index; Postgres needs an explicit sweep.
func (r *postgresOtpRepository) DeleteExpired(now time.Time) error {
	return r.db.Where("expires_at < ?", now).Delete(&models.Otp{}).Error
}
