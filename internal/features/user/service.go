package user

import (
	"context"

	"go-bizops/internal/common/apperr"
	"go-bizops/pkg/utils"

	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

type UserService interface {
	Register(ctx context.Context, username, password, email, role string) (*User, error)
	Login(ctx context.Context, username, password string) (string, *User, error)
	Get(ctx context.Context, id string) (*User, error)
	List(ctx context.Context) ([]User, error)
}

type UserServiceImpl struct {
	UserRepo UserRepository
}

func NewUserService(userRepo UserRepository) UserService {
	return &UserServiceImpl{
		UserRepo: userRepo,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, username, password, email, role string) (*User, error) {
	if username == "" || password == "" {
		return nil, apperr.Validation("username and password are required")
	}
	if role == "" {
		role = "client"
	}

	if _, err := s.UserRepo.FindByUsername(ctx, username); err == nil {
		return nil, apperr.Validation("username %q is taken", username)
	} else if err != mongo.ErrNoDocuments {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Status:       "active",
	}
	if err := s.UserRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserServiceImpl) Login(ctx context.Context, username, password string) (string, *User, error) {
	user, err := s.UserRepo.FindByUsername(ctx, username)
	if err == mongo.ErrNoDocuments {
		return "", nil, apperr.Authorization("invalid credentials")
	}
	if err != nil {
		return "", nil, err
	}

	if user.Status != "active" {
		return "", nil, apperr.Authorization("account is %s", user.Status)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperr.Authorization("invalid credentials")
	}

	token, err := utils.GenerateToken(user.ID.Hex(), user.Role)
	if err != nil {
		return "", nil, err
	}

	_ = s.UserRepo.TouchLastLogin(ctx, user.ID)
	return token, user, nil
}

func (s *UserServiceImpl) Get(ctx context.Context, id string) (*User, error) {
	user, err := s.UserRepo.Get(ctx, id)
	if err == mongo.ErrNoDocuments {
		return nil, apperr.NotFound("user")
	}
	return user, err
}

func (s *UserServiceImpl) List(ctx context.Context) ([]User, error) {
	return s.UserRepo.List(ctx)
}
