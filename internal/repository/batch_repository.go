package repository

import (
	"gorm.io/gorm"

	"github.com/twbeatles/hwpmaster-api/internal/model"
)

// BatchRepository defines DB ops for batch runs and their item results.
type BatchRepository interface {
	Create(run *model.BatchRun) error
	FindByJobID(jobID string) (*model.BatchRun, error)
	Update(run *model.BatchRun) error
	List(p Pagination) ([]model.BatchRun, error)
	SaveItems(runID uint, items []model.BatchItem) error
	ListItems(runID uint) ([]model.BatchItem, error)
}

type batchRepo struct {
	db *gorm.DB
}

// NewBatchRepo constructs a BatchRepository backed by GORM.
func NewBatchRepo(db *gorm.DB) BatchRepository {
	return &batchRepo{db: db}
}

func (r *batchRepo) Create(run *model.BatchRun) error {
	return r.db.Create(run).Error
}

func (r *batchRepo) FindByJobID(jobID string) (*model.BatchRun, error) {
	var run model.BatchRun
	if err := r.db.Where("job_id = ?", jobID).First(&run).Error; err != nil {
		return nil, err
	}
	return &run, nil
}

func (r *batchRepo) Update(run *model.BatchRun) error {
	return r.db.Save(run).Error
}

func (r *batchRepo) List(p Pagination) ([]model.BatchRun, error) {
	var runs []model.BatchRun
	if err := r.db.
		Order("id DESC").
		Offset(p.Offset()).
		Limit(p.Limit()).
		Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *batchRepo) SaveItems(runID uint, items []model.BatchItem) error {
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].BatchRunID = runID
		items[i].Position = i
	}
	return r.db.Create(&items).Error
}

func (r *batchRepo) ListItems(runID uint) ([]model.BatchItem, error) {
	var items []model.BatchItem
	if err := r.db.
		Where("batch_run_id = ?", runID).
		Order("position ASC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}
