package identity

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		ctx      context.Context
		expected Principal
		wantErr  error
	}{
		{
			name:    "no principal on context",
			ctx:     context.Background(),
			wantErr: ErrAnonymousCaller,
		},
		{
			name:    "anonymous principal",
			ctx:     Set(context.Background(), Anonymous),
			wantErr: ErrAnonymousCaller,
		},
		{
			name:    "empty principal",
			ctx:     Set(context.Background(), ""),
			wantErr: ErrAnonymousCaller,
		},
		{
			name:     "authenticated principal",
			ctx:      Set(context.Background(), "rdmx6-jaaaa-aaaaa-aaadq-cai"),
			expected: "rdmx6-jaaaa-aaaaa-aaadq-cai",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Resolve(tt.ctx)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, p)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, p)
		})
	}
}

func TestContextGetSet(t *testing.T) {
	ctx := context.Background()

	p, ok := Get(ctx)
	assert.False(t, ok)
	assert.Empty(t, p)

	ctx = Set(ctx, "alice")
	p, ok = Get(ctx)
	assert.True(t, ok)
	assert.Equal(t, Principal("alice"), p)
	assert.Equal(t, "alice", p.String())
}

func TestPrincipal_IsAnonymous(t *testing.T) {
	assert.True(t, Anonymous.IsAnonymous())
	assert.True(t, Principal("").IsAnonymous())
	assert.False(t, Principal("alice").IsAnonymous())
}
