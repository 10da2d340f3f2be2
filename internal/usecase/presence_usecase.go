package usecase

import (
	"context"
	"time"

	"pairtalk/internal/domain/entity"
	"pairtalk/internal/domain/repository"
	"pairtalk/pkg/logger"
)

// PresenceUseCase maintains the advisory online flag. Presence writes are
// never a correctness requirement: failures are logged and swallowed.
type PresenceUseCase struct {
	userRepo   repository.UserRepository
	staleAfter time.Duration
}

func NewPresenceUseCase(userRepo repository.UserRepository, staleAfter time.Duration) *PresenceUseCase {
	return &PresenceUseCase{
		userRepo:   userRepo,
		staleAfter: staleAfter,
	}
}

func (uc *PresenceUseCase) MarkOnline(ctx context.Context, userID string) {
	if err := uc.userRepo.UpdatePresence(ctx, userID, true, time.Now()); err != nil {
		logger.Warn("Presence online write failed for %s: %v", userID, err)
	}
}

// MarkOffline is best-effort: a process that dies without a termination
// signal leaves stale online state until it ages out.
func (uc *PresenceUseCase) MarkOffline(ctx context.Context, userID string) {
	if err := uc.userRepo.UpdatePresence(ctx, userID, false, time.Now()); err != nil {
		logger.Warn("Presence offline write failed for %s: %v", userID, err)
	}
}

// DisplayOnline applies the staleness window: an online flag whose
// lastActive is too old is shown as offline.
func (uc *PresenceUseCase) DisplayOnline(user *entity.User, now time.Time) bool {
	if user == nil || !user.IsOnline {
		return false
	}
	if uc.staleAfter <= 0 {
		return true
	}
	return now.Sub(user.LastActive) <= uc.staleAfter
}
