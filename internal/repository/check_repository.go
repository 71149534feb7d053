package repository

import (
	"gorm.io/gorm"

	"github.com/twbeatles/hwpmaster-api/internal/model"
)

// CheckRepository defines DB ops for link-check runs and their link rows.
type CheckRepository interface {
	Create(run *model.CheckRun) error
	FindByJobID(jobID string) (*model.CheckRun, error)
	List(p Pagination) ([]model.CheckRun, error)
	SaveLinks(runID uint, links []model.CheckLink) error
	ListLinks(runID uint) ([]model.CheckLink, error)
}

type checkRepo struct {
	db *gorm.DB
}

// NewCheckRepo constructs a CheckRepository backed by GORM.
func NewCheckRepo(db *gorm.DB) CheckRepository {
	return &checkRepo{db: db}
}

func (r *checkRepo) Create(run *model.CheckRun) error {
	return r.db.Create(run).Error
}

func (r *checkRepo) FindByJobID(jobID string) (*model.CheckRun, error) {
	var run model.CheckRun
	if err := r.db.Where("job_id = ?", jobID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *checkRepo) List(p Pagination) ([]model.CheckRun, error) {
	var runs []model.CheckRun
	if err := r.db.
		Order("id DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *checkRepo) SaveLinks(runID uint, links []model.CheckLink) error {
	if len(links) == 0 {
		return nil
	}
	for i := range links {
		links[i].CheckRunID = runID
		links[i].Position = i
	}
	return r.db.Create(&links).Error
}

func (r *checkRepo) ListLinks(runID uint) ([]model.CheckLink, error) {
	var links []model.CheckLink
	if err := r.db.
		Where("check_run_id = ?", runID).
		Order("position ASC").
		Find(&links).Error; err != nil {
		return nil, err
	}
	return links, nil
}
