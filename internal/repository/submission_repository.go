package repository

import (
	"growth_assessment/internal/model"

	"gorm.io/gorm"
)

type SubmissionRepository struct {
	DB *gorm.DB
}

func NewSubmissionRepository(db *gorm.DB) *SubmissionRepository {
	return &SubmissionRepository{DB: db}
}

func (r *SubmissionRepository) Create(s *model.AdviceSubmission) error {
	return r.DB.Create(s).Error
}

func (r *SubmissionRepository) FindByID(id string) (*model.AdviceSubmission, error) {
	var s model.AdviceSubmission
	err := r.DB.Where("id = ?", id).First(&s).Error
	return &s, err
}

func (r *SubmissionRepository) ListByUser(userID string, page, limit int) ([]model.AdviceSubmission, int64, error) {
	var subs []model.AdviceSubmission
	var total int64
	query := r.DB.Model(&model.AdviceSubmission{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("submitted_at desc").Offset(offset).Limit(limit).Find(&subs).Error
	return subs, total, err
}
