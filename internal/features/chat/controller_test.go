package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"board-sync/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockChatRepository struct {
	count int64
	calls int
	err   error
}

func (m *MockChatRepository) DeleteAll(ctx context.Context) (int64, error) {
	m.calls++
	if m.err != nil {
		return 0, m.err
	}
	n := m.count
	m.count = 0
	return n, nil
}

func newTestApp(repo ChatRepository, secret string) *fiber.App {
	app := fiber.New()
	svc := NewChatService(repo, &config.Config{ChatPurgeKey: secret}, zap.NewNop())
	NewChatApi(NewChatController(svc)).Setup(app)
	return app
}

func TestPurgeChats(t *testing.T) {
	tests := []struct {
		name       string
		secret     string
		method     string
		target     string
		repoErr    error
		wantStatus int
		wantCalls  int
		wantBody   map[string]interface{}
	}{
		{
			name:       "matching key",
			secret:     "s3cret",
			method:     http.MethodDelete,
			target:     "/api/chats/purge?key=s3cret",
			wantStatus: http.StatusOK,
			wantCalls:  1,
			wantBody:   map[string]interface{}{"deleted": float64(3)},
		},
		{
			name:       "post is accepted",
			secret:     "s3cret",
			method:     http.MethodPost,
			target:     "/api/chats/purge?key=s3cret",
			wantStatus: http.StatusOK,
			wantCalls:  1,
			wantBody:   map[string]interface{}{"deleted": float64(3)},
		},
		{
			name:       "wrong key",
			secret:     "s3cret",
			method:     http.MethodDelete,
			target:     "/api/chats/purge?key=guess",
			wantStatus: http.StatusUnauthorized,
			wantBody:   map[string]interface{}{"error": "Unauthorized"},
		},
		{
			name:       "missing key",
			secret:     "s3cret",
			method:     http.MethodDelete,
			target:     "/api/chats/purge",
			wantStatus: http.StatusUnauthorized,
			wantBody:   map[string]interface{}{"error": "Unauthorized"},
		},
		{
			name:       "unset secret rejects empty key",
			secret:     "",
			method:     http.MethodDelete,
			target:     "/api/chats/purge?key=",
			wantStatus: http.StatusUnauthorized,
			wantBody:   map[string]interface{}{"error": "Unauthorized"},
		},
		{
			name:       "delete fails",
			secret:     "s3cret",
			method:     http.MethodDelete,
			target:     "/api/chats/purge?key=s3cret",
			repoErr:    errors.New("not primary"),
			wantStatus: http.StatusInternalServerError,
			wantCalls:  1,
			wantBody:   map[string]interface{}{"error": "purge chats: not primary"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &MockChatRepository{count: 3, err: tt.repoErr}
			app := newTestApp(repo, tt.secret)

			resp, err := app.Test(httptest.NewRequest(tt.method, tt.target, nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCalls, repo.calls)

			var body map[string]interface{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body)
		})
	}
}
