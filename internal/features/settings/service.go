package settings

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"board-sync/internal/common/apperr"
)

type SettingsService interface {
	Get(ctx context.Context) (*Settings, error)
	SetBoardName(ctx context.Context, name string) error
	SetNotificationEmail(ctx context.Context, email string) error
	// NotificationEmail returns "" when no recipient is configured.
	NotificationEmail(ctx context.Context) (string, error)
}

type SettingsServiceImpl struct {
	Repo SettingsRepository
}

func NewSettingsService(repo SettingsRepository) SettingsService {
	return &SettingsServiceImpl{
		Repo: repo,
	}
}

func (s *SettingsServiceImpl) Get(ctx context.Context) (*Settings, error) {
	settings, err := s.Repo.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	if settings == nil {
		settings = &Settings{ID: GeneralID}
	}
	return settings, nil
}

// SetBoardName touches only the boardName field; other fields are preserved.
func (s *SettingsServiceImpl) SetBoardName(ctx context.Context, name string) error {
	if err := s.Repo.SetField(ctx, "boardName", name); err != nil {
		return fmt.Errorf("failed to set board name: %w", err)
	}
	return nil
}

func (s *SettingsServiceImpl) SetNotificationEmail(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		addr, err := mail.ParseAddress(email)
		if err != nil {
			return apperr.E(apperr.KindFailedPrecondition, "set notification email", err)
		}
		email = addr.Address
	}
	if err := s.Repo.SetField(ctx, "notificationEmail", email); err != nil {
		return fmt.Errorf("failed to set notification email: %w", err)
	}
	return nil
}

func (s *SettingsServiceImpl) NotificationEmail(ctx context.Context) (string, error) {
	settings, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(settings.NotificationEmail), nil
}
