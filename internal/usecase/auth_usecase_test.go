package usecase

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pairtalk/internal/domain/entity"
)

type fakeAuthClient struct {
	uid       string
	createErr error
}

func (f *fakeAuthClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	return f.uid, nil
}

func (f *fakeAuthClient) VerifyToken(ctx context.Context, token string) (string, error) {
	return f.uid, nil
}

func TestRegisterCreatesIdentityAndProfile(t *testing.T) {
	userRepo := newFakeUserRepo()
	uc := NewAuthUseCase(userRepo, &fakeAuthClient{uid: "uid-1"})

	user, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Amy Chen",
		Email:    "amy@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)

	assert.Equal(t, "uid-1", user.ID)
	assert.Equal(t, "Amy Chen", user.Name)
	assert.Contains(t, user.AvatarURL, "seed=Amy+Chen")
	assert.False(t, user.CreatedAt.IsZero())

	stored, err := userRepo.GetByID(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, "amy@example.com", stored.Email)
}

func TestRegisterPropagatesIdentityFailure(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserRepo(), &fakeAuthClient{createErr: fmt.Errorf("email taken")})

	_, err := uc.Register(context.Background(), RegisterInput{
		Name:     "Amy",
		Email:    "amy@example.com",
		Password: "secret123",
	})
	require.Error(t, err)
}

func TestUpdateProfileEditsOnlyProvidedFields(t *testing.T) {
	userRepo := newFakeUserRepo(&entity.User{
		ID:    "uid-1",
		Name:  "Amy",
		Email: "amy@example.com",
		Bio:   "hello",
	})
	uc := NewAuthUseCase(userRepo, &fakeAuthClient{uid: "uid-1"})

	user, err := uc.UpdateProfile(context.Background(), "uid-1", UpdateProfileInput{Bio: "new bio"})
	require.NoError(t, err)

	assert.Equal(t, "Amy", user.Name)
	assert.Equal(t, "new bio", user.Bio)
	assert.Equal(t, "amy@example.com", user.Email)
}

func TestUpdateProfileUnknownUser(t *testing.T) {
	uc := NewAuthUseCase(newFakeUserRepo(), &fakeAuthClient{uid: "uid-1"})

	_, err := uc.UpdateProfile(context.Background(), "ghost", UpdateProfileInput{Name: "X"})
	require.Error(t, err)
}
