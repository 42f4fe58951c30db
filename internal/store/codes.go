package store

import (
	"time"

	"github.com/diego12655/cv-analyzer-pro/internal/models"
	"github.com/diego12655/cv-analyzer-pro/internal/util"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CodeStore persists access codes.
type CodeStore struct {
	DB *gorm.DB
}

func NewCodeStore(db *gorm.DB) *CodeStore {
	return &CodeStore{DB: db}
}

// FindByCode looks up a code after normalizing it to upper case.
// Returns gorm.ErrRecordNotFound when the code does not exist.
func (s *CodeStore) FindByCode(code string) (*models.AccessCode, error) {
	var ac models.AccessCode
	if err := s.DB.Where("code = ?", util.NormalizeCode(code)).First(&ac).Error; err != nil {
		return nil, err
	}
	return &ac, nil
}

// Create inserts a new unused code with the given credit grant.
func (s *CodeStore) Create(tx *gorm.DB, code string, credits int) (*models.AccessCode, error) {
	if tx == nil {
		tx = s.DB
	}
	ac := models.AccessCode{
		ID:        uuid.NewString(),
		Code:      util.NormalizeCode(code),
		Credits:   credits,
		CreatedAt: time.Now(),
	}
	if err := tx.Create(&ac).Error; err != nil {
		return nil, err
	}
	return &ac, nil
}

// MarkUsed flips the used flag. Setting it a second time is a no-op.
func (s *CodeStore) MarkUsed(tx *gorm.DB, codeID string) error {
	if tx == nil {
		tx = s.DB
	}
	return tx.Model(&models.AccessCode{}).
		Where("id = ?", codeID).
		Update("used", true).Error
}

// CountUnused returns how many codes have not been redeemed yet.
func (s *CodeStore) CountUnused() (int64, error) {
	var count int64
	err := s.DB.Model(&models.AccessCode{}).
		Where("used = ?", false).
		Count(&count).Error
	return count, err
}
