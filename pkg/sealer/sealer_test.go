package sealer

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testKey() []byte {
	key := make([]byte, KeySize)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestNew(t *testing.T) {
	s, err := New(testKey())
	require.NoError(t, err)
	assert.NotNil(t, s)

	_, err = New(make([]byte, 16))
	assert.Error(t, err)
}

func TestSealOpen(t *testing.T) {
	s, err := New(testKey())
	require.NoError(t, err)

	tests := []struct {
		name      string
		aad       []byte
		plaintext []byte
	}{
		{"simple message", []byte("snapshot"), []byte("hello world")},
		{"empty plaintext", []byte("snapshot"), []byte{}},
		{"long message", []byte("snapshot"), bytes.Repeat([]byte("x"), 10000)},
		{"no aad", nil, []byte("data")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sealed, err := s.Seal(tt.aad, tt.plaintext)
			require.NoError(t, err)
			assert.Equal(t, versionMagic, sealed[0])
			assert.Len(t, sealed, 1+tagSize+ivSize+len(tt.plaintext))

			opened, err := s.Open(tt.aad, sealed)
			require.NoError(t, err)
			assert.Equal(t, len(tt.plaintext), len(opened))
			assert.True(t, bytes.Equal(tt.plaintext, opened))
		})
	}
}

func TestSealUsesFreshNonce(t *testing.T) {
	s, err := New(testKey())
	require.NoError(t, err)

	a, err := s.Seal(nil, []byte("same"))
	require.NoError(t, err)
	b, err := s.Seal(nil, []byte("same"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestOpenRejectsTampering(t *testing.T) {
	s, err := New(testKey())
	require.NoError(t, err)

	sealed, err := s.Seal([]byte("snapshot"), []byte("payload"))
	require.NoError(t, err)

	_, err = s.Open([]byte("other"), sealed)
	assert.Error(t, err, "wrong aad")

	flipped := append([]byte(nil), sealed...)
	flipped[len(flipped)-1] ^= 0xff
	_, err = s.Open([]byte("snapshot"), flipped)
	assert.Error(t, err, "modified ciphertext")

	_, err = s.Open(nil, []byte("G short"))
	assert.ErrorIs(t, err, ErrMalformed)

	wrongVersion := append([]byte(nil), sealed...)
	wrongVersion[0] = 'X'
	_, err = s.Open([]byte("snapshot"), wrongVersion)
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestOpenWithOtherKeyFails(t *testing.T) {
	s, err := New(testKey())
	require.NoError(t, err)
	sealed, err := s.Seal(nil, []byte("payload"))
	require.NoError(t, err)

	other, err := GenerateKey()
	require.NoError(t, err)
	s2, err := New(other)
	require.NoError(t, err)
	_, err = s2.Open(nil, sealed)
	assert.Error(t, err)
}

func TestFromEnv(t *testing.T) {
	t.Setenv(DataKeyEnv, "")
	_, err := FromEnv()
	assert.ErrorIs(t, err, ErrNoDataKey)

	t.Setenv(DataKeyEnv, "not base64!")
	_, err = FromEnv()
	assert.Error(t, err)

	t.Setenv(DataKeyEnv, base64.StdEncoding.EncodeToString(testKey()))
	s, err := FromEnv()
	require.NoError(t, err)
	assert.NotNil(t, s)
}
