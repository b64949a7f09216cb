package service

import (
	"CircuitEye/internal/api/dto"
	"CircuitEye/internal/model"
	"CircuitEye/internal/pkg/consts"
	"CircuitEye/internal/pkg/redis"
	"CircuitEye/internal/pkg/security"
	"CircuitEye/internal/repository"
	"context"
	"errors"

	"github.com/go-sql-driver/mysql"
)

type UserService interface {
	Register(ctx context.Context, regDTO *dto.RegisterDTO) error
	Login(ctx context.Context, credDTO *dto.CredentialDTO) (*dto.LoginResultDTO, error)
	Logout(ctx context.Context, token string) error
	GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error)
}

type UserServiceImpl struct {
	userRepo repository.UserRepo
}

func NewUserService(userRepo repository.UserRepo) UserService {
	return &UserServiceImpl{
		userRepo: userRepo,
	}
}

func (s *UserServiceImpl) Register(ctx context.Context, regDTO *dto.RegisterDTO) error {
	findUser, err := s.userRepo.GetUserByUsername(ctx, regDTO.Username)
	if err != nil {
		return err
	}
	if findUser != nil {
		return ErrUserUsernameExist
	}

	passwordHash, err := security.HashPassword(regDTO.Password)
	if err != nil {
		return err
	}

	user := &model.User{
		Username:           &regDTO.Username,
		Password:           &passwordHash,
		Plan:               consts.PlanBasic,
		PhotosPerDay:       PlanAllowance(consts.PlanBasic),
		SubscriptionStatus: consts.SubscriptionFree,
	}
	if regDTO.Email != "" {
		user.Email = &regDTO.Email
	}

	// 并发注册同名用户时由唯一索引兜底
	if err = s.userRepo.CreateUser(ctx, user); err != nil {
		if isDuplicateError(err) {
			return ErrUserUsernameExist
		}
		return err
	}
	return nil
}

func isDuplicateError(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
		return true
	}
	return false
}

func (s *UserServiceImpl) Login(ctx context.Context, credDTO *dto.CredentialDTO) (*dto.LoginResultDTO, error) {
	if credDTO.Username == "" || credDTO.Password == "" {
		return nil, ErrMissingLoginCredentials
	}

	user, err := s.userRepo.GetUserByUsername(ctx, credDTO.Username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if user.Password == nil || security.CheckPasswordHash(credDTO.Password, *user.Password) != nil {
		return nil, ErrPasswordIncorrect
	}

	token, err := security.GenerateToken(user.ID)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResultDTO{
		Token: token,
		User:  toUserDTO(user),
	}, nil
}

// Logout 把 Token 签名写入黑名单，存活期与 Token 有效期一致
func (s *UserServiceImpl) Logout(ctx context.Context, token string) error {
	signature, err := security.ExtractSignature(token)
	if err != nil {
		return err
	}
	return redis.SetWithExpiration(ctx, signature, true, security.JWTExpirationTime)
}

func (s *UserServiceImpl) GetUserInfo(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	user, err := s.userRepo.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return toUserDTO(user), nil
}

func toUserDTO(user *model.User) *dto.UserDTO {
	createdAt := user.CreatedAt
	return &dto.UserDTO{
		UserID:             user.ID,
		Username:           user.Username,
		Email:              user.Email,
		Plan:               user.Plan,
		PhotosPerDay:       user.PhotosPerDay,
		IsPremium:          user.IsPremium,
		SubscriptionStatus: user.SubscriptionStatus,
		CreatedAt:          &createdAt,
	}
}
