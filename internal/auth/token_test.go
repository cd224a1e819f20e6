package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenCodec_RoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", 24*time.Hour)

	tests := []struct {
		name      string
		principal Principal
	}{
		{name: "listed principal", principal: Principal{PID: "alice", Role: "admin"}},
		{name: "default role principal", principal: Principal{PID: "stranger", Role: "viewer"}},
		{name: "editor", principal: Principal{PID: "kiymet", Role: "editor"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := codec.Issue(tt.principal)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			// Compact three-part structure: header.payload.signature.
			assert.Len(t, strings.Split(token, "."), 3)

			got, err := codec.Verify(token)
			require.NoError(t, err)
			assert.Equal(t, tt.principal, got)
		})
	}
}

func TestTokenCodec_Expired(t *testing.T) {
	codec := NewTokenCodec("test-secret", -time.Minute)

	token, err := codec.Issue(Principal{PID: "alice", Role: "admin"})
	require.NoError(t, err)

	_, err = codec.Verify(token)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrTokenExpired)
	assert.NotErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenCodec_Tampered(t *testing.T) {
	codec := NewTokenCodec("test-secret", 24*time.Hour)

	token, err := codec.Issue(Principal{PID: "alice", Role: "viewer"})
	require.NoError(t, err)

	t.Run("tampered payload", func(t *testing.T) {
		parts := strings.Split(token, ".")
		require.Len(t, parts, 3)

		// Claims of a different principal under the original signature.
		forged := parts[0] + "." + parts[1][:len(parts[1])-2] + "xx" + "." + parts[2]
		_, err := codec.Verify(forged)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenCodec("different-secret", 24*time.Hour)
		_, err := other.Verify(token)
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})

	t.Run("garbage token", func(t *testing.T) {
		_, err := codec.Verify("not-a-token")
		assert.ErrorIs(t, err, ErrTokenInvalid)
	})
}

func TestTokenCodec_MissingPID(t *testing.T) {
	codec := NewTokenCodec("test-secret", 24*time.Hour)

	token, err := codec.Issue(Principal{})
	require.NoError(t, err)

	_, err = codec.Verify(token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
