package repository

import (
	"context"

	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/pitabwire/frame"
)

type FileRepository interface {
	GetByID(ctx context.Context, id string) (*models.File, error)
	GetByOwnerID(ctx context.Context, ownerID string) ([]*models.File, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.File, error)
	Save(ctx context.Context, file *models.File) error
	Delete(ctx context.Context, id string) error
}

func NewFileRepository(service *frame.Service) FileRepository {
	fileRepo := fileRepository{
		service: service,
	}
	return &fileRepo
}

type fileRepository struct {
	service *frame.Service
}

func (fr *fileRepository) GetByID(ctx context.Context, id string) (*models.File, error) {
	file := &models.File{}
	err := fr.service.DB(ctx, true).First(file, " id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return file, nil
}

func (fr *fileRepository) GetByOwnerID(ctx context.Context, ownerID string) ([]*models.File, error) {
	fileList := make([]*models.File, 0)
	err := fr.service.DB(ctx, true).
		Where(" owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&fileList).Error
	if err != nil {
		return nil, err
	}

	return fileList, nil
}

func (fr *fileRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.File, error) {
	fileList := make([]*models.File, 0)
	if len(ids) == 0 {
		return fileList, nil
	}

	err := fr.service.DB(ctx, true).Where(" id IN ?", ids).Find(&fileList).Error
	if err != nil {
		return nil, err
	}

	return fileList, nil
}

func (fr *fileRepository) Save(ctx context.Context, file *models.File) error {
	return fr.service.DB(ctx, false).Save(file).Error
}

func (fr *fileRepository) Delete(ctx context.Context, id string) error {

	file, err := fr.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return fr.service.DB(ctx, false).Delete(file).Error
}
