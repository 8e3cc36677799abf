package repository

import (
	"context"

	"github.com/antinvestor/service-fileshare/service/models"
	"github.com/pitabwire/frame"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByIDs(ctx context.Context, ids []string) ([]*models.User, error)
	List(ctx context.Context, excludeID string) ([]*models.User, error)
	Save(ctx context.Context, user *models.User) error
}

func NewUserRepository(service *frame.Service) UserRepository {
	userRepo := userRepository{
		service: service,
	}
	return &userRepo
}

type userRepository struct {
	service *frame.Service
}

func (ur *userRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	user := &models.User{}
	err := ur.service.DB(ctx, true).First(user, " id = ?", id).Error
	if err != nil {
		return nil, err
	}

	return user, nil
}

func (ur *userRepository) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	userList := make([]*models.User, 0)
	if len(ids) == 0 {
		return userList, nil
	}

	err := ur.service.DB(ctx, true).Where(" id IN ?", ids).Find(&userList).Error
	if err != nil {
		return nil, err
	}

	return userList, nil
}

func (ur *userRepository) List(ctx context.Context, excludeID string) ([]*models.User, error) {
	userList := make([]*models.User, 0)
	tx := ur.service.DB(ctx, true).Order("username ASC")

	if excludeID != "" {
		tx = tx.Where(" id <> ?", excludeID)
	}

	err := tx.Find(&userList).Error
	if err != nil {
		return nil, err
	}

	return userList, nil
}

func (ur *userRepository) Save(ctx context.Context, user *models.User) error {
	return ur.service.DB(ctx, false).Save(user).Error
}
