package service

import (
	"Shortly-Backend/internal/config"
	"Shortly-Backend/internal/repository"
	"Shortly-Backend/internal/repository/memory"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestShortener(t *testing.T) (*ShortenerService, *memory.MemStorage) {
	t.Helper()
	storage := memory.New()
	cfg := &config.Shortener{CodeLength: 7, MaxAttempts: 3}
	return NewShortener(storage, cfg), storage
}

func TestShorten_GeneratedCode(t *testing.T) {
	svc, storage := newTestShortener(t)
	ctx := context.Background()

	link, err := svc.Shorten(ctx, &CreateRequest{Destination: "https://a.test"})
	require.NoError(t, err)

	assert.Len(t, link.Code, 7)
	for _, r := range link.Code {
		assert.True(t,
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'),
			"unexpected symbol %q in code %q", r, link.Code)
	}
	assert.False(t, link.CustomAlias)
	assert.Nil(t, link.ExpiresAt)

	stored, err := storage.GetLink(ctx, link.Code)
	require.NoError(t, err)
	assert.Equal(t, "https://a.test", stored.Destination)
}

func TestShorten_CodesAreUnique(t *testing.T) {
	svc, _ := newTestShortener(t)
	ctx := context.Background()

	seen := make(map[string]bool)
	for i := 0; i < 200; i++ {
		link, err := svc.Shorten(ctx, &CreateRequest{Destination: "https://a.test"})
		require.NoError(t, err)
		assert.False(t, seen[link.Code], "code %q issued twice", link.Code)
		seen[link.Code] = true
	}
}

func TestShorten_TTL(t *testing.T) {
	svc, _ := newTestShortener(t)

	ttl := time.Hour
	link, err := svc.Shorten(context.Background(), &CreateRequest{
		Destination: "https://a.test",
		TTL:         &ttl,
	})
	require.NoError(t, err)
	require.NotNil(t, link.ExpiresAt)
	assert.WithinDuration(t, time.Now().UTC().Add(time.Hour), *link.ExpiresAt, 5*time.Second)
}

func TestShorten_CustomAlias(t *testing.T) {
	svc, _ := newTestShortener(t)
	ctx := context.Background()

	link, err := svc.Shorten(ctx, &CreateRequest{
		Destination: "https://a.test",
		CustomAlias: "valid-alias-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "valid-alias-1", link.Code)
	assert.True(t, link.CustomAlias)

	// Same alias again collides.
	_, err = svc.Shorten(ctx, &CreateRequest{
		Destination: "https://b.test",
		CustomAlias: "valid-alias-1",
	})
	assert.ErrorIs(t, err, repository.ErrCodeExists)
}

func TestShorten_InvalidAlias(t *testing.T) {
	svc, _ := newTestShortener(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		alias string
	}{
		{"too short", "ab"},
		{"too long", strings.Repeat("a", 21)},
		{"bad characters", "my alias!"},
		{"reserved word", "shorten"},
		{"reserved word mixed case", "Health"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Shorten(ctx, &CreateRequest{
				Destination: "https://a.test",
				CustomAlias: tt.alias,
			})
			assert.ErrorIs(t, err, ErrInvalidAlias)
		})
	}
}

func TestShorten_CollisionRetry(t *testing.T) {
	svc, storage := newTestShortener(t)
	ctx := context.Background()

	// Occupy the code the stub generator proposes first.
	require.NoError(t, storage.SaveLink(ctx, testLink("taken11")))

	codes := []string{"taken11", "free222"}
	calls := 0
	svc.newCode = func(int) (string, error) {
		code := codes[calls]
		calls++
		return code, nil
	}

	link, err := svc.Shorten(ctx, &CreateRequest{Destination: "https://a.test"})
	require.NoError(t, err)
	assert.Equal(t, "free222", link.Code)
	assert.Equal(t, 2, calls)
}

func TestShorten_CollisionExhausted(t *testing.T) {
	svc, storage := newTestShortener(t)
	ctx := context.Background()

	require.NoError(t, storage.SaveLink(ctx, testLink("stuck77")))
	svc.newCode = func(int) (string, error) { return "stuck77", nil }

	_, err := svc.Shorten(ctx, &CreateRequest{Destination: "https://a.test"})
	assert.ErrorIs(t, err, ErrCollisionExhausted)
}
