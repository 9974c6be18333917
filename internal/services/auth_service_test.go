package services

import (
	"errors"
	"testing"

	"github.com/terraincognita07/patientlog/internal/models"
	"gorm.io/gorm"
)

type authUserRepoStub struct {
	bySubject map[string]models.User
	nextID    uint
	upsertErr error
	findErr   error
}

func newAuthUserRepoStub() *authUserRepoStub {
	return &authUserRepoStub{bySubject: make(map[string]models.User), nextID: 1}
}

func (stub *authUserRepoStub) FindByID(userID uint) (models.User, error) {
	if stub.findErr != nil {
		return models.User{}, stub.findErr
	}
	for _, user := range stub.bySubject {
		if user.ID == userID {
			return user, nil
		}
	}
	return models.User{}, gorm.ErrRecordNotFound
}

func (stub *authUserRepoStub) UpsertBySubject(subject string, email string, name string) (models.User, error) {
	if stub.upsertErr != nil {
		return models.User{}, stub.upsertErr
	}
	user, ok := stub.bySubject[subject]
	if !ok {
		user = models.User{ID: stub.nextID, Subject: subject, Theme: models.ThemeSystem}
		stub.nextID++
	}
	user.Email = email
	user.Name = name
	stub.bySubject[subject] = user
	return user, nil
}

func TestSignInUpsertsBySubject(t *testing.T) {
	repo := newAuthUserRepoStub()
	service := NewAuthService(repo)

	first, err := service.SignIn(" google|1 ", " a@example.com ", "A")
	if err != nil {
		t.Fatalf("SignIn() unexpected error: %v", err)
	}
	second, err := service.SignIn("google|1", "b@example.com", "B")
	if err != nil {
		t.Fatalf("SignIn() unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Fatalf("expected same user id, got %d and %d", first.ID, second.ID)
	}
	if second.Email != "b@example.com" || second.Name != "B" {
		t.Fatalf("expected refreshed identity, got %#v", second)
	}
	if first.Email != "a@example.com" {
		t.Fatalf("expected trimmed email, got %q", first.Email)
	}
}

func TestSignInErrors(t *testing.T) {
	service := NewAuthService(newAuthUserRepoStub())
	if _, err := service.SignIn("  ", "", ""); !errors.Is(err, ErrAuthSubjectMissing) {
		t.Fatalf("expected ErrAuthSubjectMissing, got %v", err)
	}

	failing := newAuthUserRepoStub()
	failing.upsertErr = errors.New("db down")
	if _, err := NewAuthService(failing).SignIn("sub", "", ""); !errors.Is(err, ErrAuthSignInFailed) {
		t.Fatalf("expected ErrAuthSignInFailed, got %v", err)
	}
}

func TestFindByIDMapsErrors(t *testing.T) {
	repo := newAuthUserRepoStub()
	service := NewAuthService(repo)

	if _, err := service.FindByID(42); !errors.Is(err, ErrAuthUserNotFound) {
		t.Fatalf("expected ErrAuthUserNotFound, got %v", err)
	}

	repo.findErr = errors.New("db down")
	if _, err := service.FindByID(1); !errors.Is(err, ErrAuthUserLoadFailed) {
		t.Fatalf("expected ErrAuthUserLoadFailed, got %v", err)
	}
}
