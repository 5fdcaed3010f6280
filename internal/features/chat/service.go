package chat

import (
	"context"
	"crypto/subtle"

	"board-sync/internal/common/apperr"
	"board-sync/internal/config"

	"go.uber.org/zap"
)

type ChatService interface {
	// Purge deletes every chat message when key matches the configured secret.
	Purge(ctx context.Context, key string) (int64, error)
}

type ChatServiceImpl struct {
	Repo   ChatRepository
	secret string
	log    *zap.Logger
}

func NewChatService(repo ChatRepository, cfg *config.Config, log *zap.Logger) ChatService {
	return &ChatServiceImpl{
		Repo:   repo,
		secret: cfg.ChatPurgeKey,
		log:    log,
	}
}

func (s *ChatServiceImpl) Purge(ctx context.Context, key string) (int64, error) {
	// An unset secret disables the purge entirely.
	if s.secret == "" || subtle.ConstantTimeCompare([]byte(key), []byte(s.secret)) != 1 {
		s.log.Warn("rejected chat purge with invalid key")
		return 0, apperr.E(apperr.KindUnauthorized, "purge chats", apperr.ErrUnauthorized)
	}

	n, err := s.Repo.DeleteAll(ctx)
	if err != nil {
		return 0, apperr.E(apperr.KindInternal, "purge chats", err)
	}
	s.log.Info("chat history purged", zap.Int64("deleted", n))
	return n, nil
}
