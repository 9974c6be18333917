package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/patientlog/internal/models"
	"gorm.io/gorm"
)

var (
	ErrAuthSubjectMissing = errors.New("identity subject is missing")
	ErrAuthSignInFailed   = errors.New("sign in failed")
	ErrAuthUserNotFound   = errors.New("user not found")
	ErrAuthUserLoadFailed = errors.New("load user failed")
)

type AuthUserRepository interface {
	FindByID(userID uint) (models.User, error)
	UpsertBySubject(subject string, email string, name string) (models.User, error)
}

type AuthService struct {
	users AuthUserRepository
}

func NewAuthService(users AuthUserRepository) *AuthService {
	return &AuthService{users: users}
}

// SignIn creates the user on first login and refreshes email and name on later logins.
func (service *AuthService) SignIn(subject string, email string, name string) (models.User, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return models.User{}, ErrAuthSubjectMissing
	}
	user, err := service.users.UpsertBySubject(subject, strings.TrimSpace(email), strings.TrimSpace(name))
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthSignInFailed, err)
	}
	return user, nil
}

func (service *AuthService) FindByID(userID uint) (models.User, error) {
	user, err := service.users.FindByID(userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, ErrAuthUserNotFound
	}
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %v", ErrAuthUserLoadFailed, err)
	}
	return user, nil
}
