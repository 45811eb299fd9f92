package telegram

import (
	"context"
	"testing"

	"github.com/gotd/td/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionTokenRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := new(session.StorageMemory)
	require.NoError(t, src.StoreSession(ctx, []byte(`{"Version":1,"Data":{"DC":2}}`)))

	token, err := EncodeSession(ctx, src)
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	dst := new(session.StorageMemory)
	require.NoError(t, DecodeSession(ctx, token, dst))

	got, err := dst.LoadSession(ctx)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Version":1,"Data":{"DC":2}}`, string(got))
}

func TestEncodeEmptySession(t *testing.T) {
	_, err := EncodeSession(context.Background(), new(session.StorageMemory))
	assert.Error(t, err)
}

func TestDecodeSessionRejectsGarbage(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"not base64", "%%%not-base64%%%"},
		{"broken telethon", "1abc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DecodeSession(ctx, tt.token, new(session.StorageMemory))
			assert.Error(t, err)
		})
	}
}
