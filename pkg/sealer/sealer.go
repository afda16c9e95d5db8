package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
)

const ivSize = 12
const tagSize = aes.BlockSize
const versionMagic = byte('G')

// KeySize is the required data key length in bytes.
const KeySize = 32

// DataKeyEnv names the environment variable holding the base64 data key.
const DataKeyEnv = "NOTES_DATA_KEY"

var (
	// ErrNoDataKey is returned by FromEnv when the variable is unset.
	ErrNoDataKey = errors.New("data key not set")
	// ErrMalformed is returned for blobs that are too short or carry an unknown version.
	ErrMalformed = errors.New("malformed sealed data")
)

// Cipher seals and opens data.
type Cipher interface {
	Seal(aad, plainText []byte) ([]byte, error)
	Open(aad, packedText []byte) ([]byte, error)
}

// Sealer is the AES-GCM Cipher.
type Sealer struct {
	aesgcm cipher.AEAD
}

var _ Cipher = (*Sealer)(nil)

// New returns a Sealer for a 32-byte key.
func New(key []byte) (*Sealer, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("data key must be %d bytes, got %d", KeySize, len(key))
	}
	c, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}

	aesgcm, err := cipher.NewGCM(c)
	if err != nil {
		return nil, err
	}

	return &Sealer{aesgcm: aesgcm}, nil
}

// FromEnv builds a Sealer from the base64 key in NOTES_DATA_KEY.
func FromEnv() (*Sealer, error) {
	encoded := os.Getenv(DataKeyEnv)
	if encoded == "" {
		return nil, ErrNoDataKey
	}
	key, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", DataKeyEnv, err)
	}
	return New(key)
}

// GenerateKey returns a random data key.
func GenerateKey() ([]byte, error) {
	return randomBytes(KeySize)
}

func randomBytes(size int) ([]byte, error) {
	value := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, value); err != nil {
		return nil, err
	}

	return value, nil
}

// Seal encrypts plainText under a fresh random nonce.
func (s *Sealer) Seal(aad, plainText []byte) ([]byte, error) {
	// Random 96-bit nonces are safe for up to 2^32 seals per key.
	nonce, err := randomBytes(ivSize)
	if err != nil {
		return nil, err
	}
	return s.seal(aad, plainText, nonce)
}

func (s *Sealer) seal(aad, plainText, nonce []byte) ([]byte, error) {
	if len(nonce) < ivSize {
		return nil, errors.New("nonce size is too short")
	}
	return pack(s.aesgcm.Seal(nil, nonce, plainText, aad), nonce), nil
}

// Open authenticates and decrypts a blob produced by Seal.
func (s *Sealer) Open(aad, packedText []byte) ([]byte, error) {
	if len(packedText) < 1+tagSize+ivSize || packedText[0] != versionMagic {
		return nil, ErrMalformed
	}

	cipherText, iv := unpack(packedText)

	return s.aesgcm.Open(nil, iv, cipherText, aad)
}

// pack lays out version, tag, iv and ciphertext.
func pack(cipherTextWithTag []byte, iv []byte) []byte {
	iv = iv[:ivSize]

	tagStartIndex := len(cipherTextWithTag) - tagSize
	tag := cipherTextWithTag[tagStartIndex:]
	cipherText := cipherTextWithTag[:tagStartIndex]

	data := make([]byte, 1+tagSize+ivSize+len(cipherText))
	data[0] = versionMagic
	index := 1

	copy(data[index:], tag)
	index += tagSize

	copy(data[index:], iv)
	index += ivSize

	copy(data[index:], cipherText)

	return data
}

func unpack(packedText []byte) ([]byte, []byte) {
	index := 1

	tag := packedText[index : index+tagSize]
	index += tagSize

	iv := packedText[index : index+ivSize]
	index += ivSize

	cipherText := make([]byte, 0, len(packedText)-index+tagSize)
	cipherText = append(cipherText, packedText[index:]...)
	cipherText = append(cipherText, tag...)

	return cipherText, iv
}
