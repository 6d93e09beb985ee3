package service

import (
	"context"

	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/logging"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/models"
	"github.com/tm-acme-shop/acme-shop-pharmacy-service/internal/repository"
)

// UserService signs users in by email and serves their profile.
type UserService struct {
	users  repository.UserRepository
	logger *logging.LoggerV2
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{
		users:  users,
		logger: logging.NewLoggerV2("user-service"),
	}
}

// SignIn returns the user registered under the email, creating it on first
// sign-in. The stored type wins over the requested one for existing users.
func (s *UserService) SignIn(ctx context.Context, req *models.SignInRequest) (*models.User, error) {
	if err := ValidateSignInRequest(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err == nil {
		if user.Type != req.Type {
			s.logger.Warn("Sign-in type differs from stored type", logging.Fields{
				"user_id":   user.ID,
				"stored":    user.Type,
				"requested": req.Type,
			})
		}
		return user, nil
	}
	if !errors.IsNotFound(err) {
		return nil, err
	}

	user, err = s.users.CreateUser(ctx, req.Name, req.Email, req.Type)
	if err != nil {
		return nil, err
	}

	s.logger.Info("User registered", logging.Fields{
		"user_id": user.ID,
		"type":    user.Type,
	})
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	if id <= 0 {
		return nil, errors.ErrUnauthenticated
	}
	return s.users.GetUserByID(ctx, id)
}
