package usecase

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/pkg/errors"
)

type AuthUseCase struct {
	userRepo   repository.UserRepository
	authClient AuthClient
}

func NewAuthUseCase(userRepo repository.UserRepository, authClient AuthClient) *AuthUseCase {
	return &AuthUseCase{
		userRepo:   userRepo,
		authClient: authClient,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates the identity-provider account and the profile document,
// with a generated avatar seeded by the display name.
func (uc *AuthUseCase) Register(ctx context.Context, input RegisterInput) (*entity.User, error) {
	uid, err := uc.authClient.CreateUser(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		return nil, errors.BadRequest("Failed to register user", err)
	}

	user := &entity.User{
		ID:        uid,
		Name:      input.Name,
		Email:     input.Email,
		AvatarURL: avatarURL(input.Name),
		CreatedAt: time.Now(),
	}

	if err := uc.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

type UpdateProfileInput struct {
	Name      string
	Bio       string
	AvatarURL string
}

// UpdateProfile edits the profile document. Chatroom usersData snapshots are
// taken at creation and deliberately do not reflect these edits.
func (uc *AuthUseCase) UpdateProfile(ctx context.Context, uid string, input UpdateProfileInput) (*entity.User, error) {
	user, err := uc.userRepo.GetByID(ctx, uid)
	if err != nil {
		return nil, err
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Bio != "" {
		user.Bio = input.Bio
	}
	if input.AvatarURL != "" {
		user.AvatarURL = input.AvatarURL
	}

	if err := uc.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// ResolveUser maps an authenticated principal id to its profile document.
func (uc *AuthUseCase) ResolveUser(ctx context.Context, uid string) (*entity.User, error) {
	return uc.userRepo.GetByID(ctx, uid)
}

func avatarURL(seed string) string {
	return fmt.Sprintf("https://api.dicebear.com/9.x/avataaars/svg?seed=%s", url.QueryEscape(seed))
}
