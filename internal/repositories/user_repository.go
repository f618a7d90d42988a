package repositories

import (
	"context"

	"github.com/EzraBr1dger/space-map-admin/internal/models"
	"github.com/EzraBr1dger/space-map-admin/internal/store"
	"github.com/EzraBr1dger/space-map-admin/pkg/errors"
)

const usersPath = "adminUsers"

type UserRepository struct {
	store store.Store
}

func NewUserRepository(s store.Store) *UserRepository {
	return &UserRepository{store: s}
}

func (r *UserRepository) GetUser(ctx context.Context, username string) (*models.AdminUser, error) {
	if err := checkKey("user", username); err != nil {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	var user models.AdminUser
	found, err := r.store.Get(ctx, usersPath+"/"+username, &user)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to get user")
	}
	if !found {
		return nil, errors.New(errors.ErrCodeNotFound, "user not found")
	}
	return &user, nil
}

func (r *UserRepository) ListUsers(ctx context.Context) (map[string]*models.AdminUser, error) {
	users := make(map[string]*models.AdminUser)
	if _, err := r.store.Get(ctx, usersPath, &users); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternalError, "failed to list users")
	}
	return users, nil
}

func (r *UserRepository) SaveUser(ctx context.Context, user *models.AdminUser) error {
	if err := checkKey("user", user.Username); err != nil {
		return err
	}
	if err := r.store.Set(ctx, usersPath+"/"+user.Username, user); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternalError, "failed to save user")
	}
	return nil
}
