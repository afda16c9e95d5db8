package endpoints

import (
	"github.com/stretchr/testify/mock"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// MockDevicesStore implements store.DevicesStore for testing using testify/mock
type MockDevicesStore struct {
	mock.Mock
}

func (m *MockDevicesStore) RegisterDevice(principal, alias, publicKey string) error {
	args := m.Called(principal, alias, publicKey)
	return args.Error(0)
}

func (m *MockDevicesStore) DeviceAliases(principal string) ([]string, error) {
	args := m.Called(principal)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockDevicesStore) Devices(principal string) ([]store.Device, error) {
	args := m.Called(principal)
	return args.Get(0).([]store.Device), args.Error(1)
}

func (m *MockDevicesStore) DeleteDevice(principal, alias string) error {
	args := m.Called(principal, alias)
	return args.Error(0)
}

func (m *MockDevicesStore) IsRegistered(principal string) (bool, error) {
	args := m.Called(principal)
	return args.Bool(0), args.Error(1)
}

// MockSecretsStore implements store.SecretsStore for testing using testify/mock
type MockSecretsStore struct {
	mock.Mock
}

func (m *MockSecretsStore) IsSeed(principal string) (bool, error) {
	args := m.Called(principal)
	return args.Bool(0), args.Error(1)
}

func (m *MockSecretsStore) UploadSeedSecret(principal, publicKey, encryptedSecret string) error {
	args := m.Called(principal, publicKey, encryptedSecret)
	return args.Error(0)
}

func (m *MockSecretsStore) UploadEncryptedSecrets(principal string, entries []store.SecretEntry) error {
	args := m.Called(principal, entries)
	return args.Error(0)
}

func (m *MockSecretsStore) UnsyncedPublicKeys(principal string) ([]string, error) {
	args := m.Called(principal)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockSecretsStore) EncryptedSecret(principal, publicKey string) (string, error) {
	args := m.Called(principal, publicKey)
	return args.String(0), args.Error(1)
}

func (m *MockSecretsStore) SyncState(principal string) (model.SyncState, error) {
	args := m.Called(principal)
	return args.Get(0).(model.SyncState), args.Error(1)
}

// MockNotesStore implements store.NotesStore for testing using testify/mock
type MockNotesStore struct {
	mock.Mock
}

func (m *MockNotesStore) OnFirstDeviceRegistered(principal string) error {
	args := m.Called(principal)
	return args.Error(0)
}

func (m *MockNotesStore) Notes(principal string) ([]store.Note, error) {
	args := m.Called(principal)
	return args.Get(0).([]store.Note), args.Error(1)
}

func (m *MockNotesStore) Note(principal string, id model.NoteID) (store.Note, error) {
	args := m.Called(principal, id)
	return args.Get(0).(store.Note), args.Error(1)
}

func (m *MockNotesStore) AddNote(principal, ciphertext string) (model.NoteID, error) {
	args := m.Called(principal, ciphertext)
	return args.Get(0).(model.NoteID), args.Error(1)
}

func (m *MockNotesStore) UpdateNote(principal string, id model.NoteID, ciphertext string) error {
	args := m.Called(principal, id, ciphertext)
	return args.Error(0)
}

func (m *MockNotesStore) DeleteNote(principal string, id model.NoteID) error {
	args := m.Called(principal, id)
	return args.Error(0)
}

// MockHealthStore implements store.HealthStore for testing using testify/mock
type MockHealthStore struct {
	mock.Mock
}

func (m *MockHealthStore) CheckConnectivity() error {
	args := m.Called()
	return args.Error(0)
}
