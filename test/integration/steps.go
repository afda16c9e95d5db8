package integration

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cucumber/godog"
	"github.com/golang-jwt/jwt/v5"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/client"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/model"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store"
)

// scenarioCounter keeps principals of different scenarios apart on a shared backend.
var scenarioCounter int64

// StepsContext holds state shared between step definitions
type StepsContext struct {
	tc        *TestContext
	scenario  string
	principal string
	client    *client.Client
	lastErr   error
	notes     map[string]model.NoteID
	listed    []string
}

// NewStepsContext creates a new steps context
func NewStepsContext(tc *TestContext) *StepsContext {
	scenarioCounter++
	return &StepsContext{
		tc:       tc,
		scenario: strconv.FormatInt(scenarioCounter, 10),
		notes:    make(map[string]model.NoteID),
	}
}

// RegisterSteps registers all step definitions
func (s *StepsContext) RegisterSteps(sc *godog.ScenarioContext) {
	sc.Step(`^a notes server is running$`, s.aNotesServerIsRunning)
	sc.Step(`^I am "([^"]*)"$`, s.iAm)
	sc.Step(`^I am anonymous$`, s.iAmAnonymous)
	sc.Step(`^I use a token signed with another key$`, s.iUseForeignToken)
	sc.Step(`^I use an expired token$`, s.iUseExpiredToken)

	sc.Step(`^I register device "([^"]*)" with public key "([^"]*)"$`, s.iRegisterDevice)
	sc.Step(`^I delete device "([^"]*)"$`, s.iDeleteDevice)
	sc.Step(`^my devices should be "([^"]*)"$`, s.myDevicesShouldBe)
	sc.Step(`^device "([^"]*)" should have public key "([^"]*)"$`, s.deviceShouldHaveKey)

	sc.Step(`^I should be the seed device$`, s.iShouldBeSeed)
	sc.Step(`^I should not be the seed device$`, s.iShouldNotBeSeed)
	sc.Step(`^I upload the seed secret "([^"]*)" for public key "([^"]*)"$`, s.iUploadSeedSecret)
	sc.Step(`^I upload the secrets:$`, s.iUploadSecrets)
	sc.Step(`^the unsynced public keys should be "([^"]*)"$`, s.unsyncedShouldBe)
	sc.Step(`^the encrypted secret for "([^"]*)" should be "([^"]*)"$`, s.encryptedSecretShouldBe)
	sc.Step(`^I fetch the encrypted secret for "([^"]*)"$`, s.iFetchEncryptedSecret)
	sc.Step(`^the sync state should be "([^"]*)"$`, s.syncStateShouldBe)

	sc.Step(`^I add note "([^"]*)" with ciphertext "([^"]*)"$`, s.iAddNote)
	sc.Step(`^I add a note of (\d+) bytes$`, s.iAddNoteOfSize)
	sc.Step(`^I update note "([^"]*)" with ciphertext "([^"]*)"$`, s.iUpdateNote)
	sc.Step(`^I delete note "([^"]*)"$`, s.iDeleteNote)
	sc.Step(`^I fetch note "([^"]*)"$`, s.iFetchNote)
	sc.Step(`^note "([^"]*)" should read "([^"]*)"$`, s.noteShouldRead)
	sc.Step(`^I list my notes$`, s.iListNotes)
	sc.Step(`^my notes should be "([^"]*)"$`, s.myNotesShouldBe)
	sc.Step(`^note "([^"]*)" should have a higher id than note "([^"]*)"$`, s.noteIDShouldBeHigher)

	sc.Step(`^the request should succeed$`, s.theRequestShouldSucceed)
	sc.Step(`^the request should fail with "([^"]*)"$`, s.theRequestShouldFailWith)
	sc.Step(`^the request should fail with an internal error$`, s.theRequestShouldFailInternally)
	sc.Step(`^the server status should be "([^"]*)"$`, s.serverStatusShouldBe)
}

func (s *StepsContext) ctx() context.Context {
	return context.Background()
}

func (s *StepsContext) newClient(token string) *client.Client {
	c := client.New(s.tc.Server.ServerURL, token)
	c.HTTP = &http.Client{Timeout: 10 * time.Second}
	return c
}

func (s *StepsContext) aNotesServerIsRunning() error {
	return nil
}

func (s *StepsContext) iAm(name string) error {
	s.principal = name + "-" + s.scenario
	token, err := middleware.NewTokenAuthenticator(s.tc.TokenKey).Issue(s.principal, time.Minute)
	if err != nil {
		return err
	}
	s.client = s.newClient(token)
	return nil
}

func (s *StepsContext) iAmAnonymous() error {
	s.principal = ""
	s.client = s.newClient("")
	return nil
}

func (s *StepsContext) iUseForeignToken() error {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "mallory-" + s.scenario,
		"exp": time.Now().Add(time.Minute).Unix(),
	}).SignedString([]byte("some-other-key-0123456789abcdefgh"))
	if err != nil {
		return err
	}
	s.client = s.newClient(token)
	return nil
}

func (s *StepsContext) iUseExpiredToken() error {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "alice-" + s.scenario,
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-time.Hour).Unix(),
	}).SignedString(s.tc.TokenKey)
	if err != nil {
		return err
	}
	s.client = s.newClient(token)
	return nil
}

// Devices

func (s *StepsContext) iRegisterDevice(alias, publicKey string) error {
	s.lastErr = s.client.RegisterDevice(s.ctx(), alias, publicKey)
	return nil
}

func (s *StepsContext) iDeleteDevice(alias string) error {
	s.lastErr = s.client.DeleteDevice(s.ctx(), alias)
	return nil
}

func (s *StepsContext) myDevicesShouldBe(expected string) error {
	aliases, err := s.client.DeviceAliases(s.ctx())
	if err != nil {
		return err
	}
	return compareList("devices", splitList(expected), aliases)
}

func (s *StepsContext) deviceShouldHaveKey(alias, publicKey string) error {
	devices, err := s.client.Devices(s.ctx())
	if err != nil {
		return err
	}
	for _, d := range devices {
		if d.Alias == alias {
			if d.PublicKey != publicKey {
				return fmt.Errorf("device %q has public key %q, expected %q", alias, d.PublicKey, publicKey)
			}
			return nil
		}
	}
	return fmt.Errorf("device %q not found", alias)
}

// Secrets

func (s *StepsContext) iShouldBeSeed() error {
	seed, err := s.client.IsSeed(s.ctx())
	if err != nil {
		return err
	}
	if !seed {
		return fmt.Errorf("expected to be the seed device")
	}
	return nil
}

func (s *StepsContext) iShouldNotBeSeed() error {
	seed, err := s.client.IsSeed(s.ctx())
	if err != nil {
		return err
	}
	if seed {
		return fmt.Errorf("expected not to be the seed device")
	}
	return nil
}

func (s *StepsContext) iUploadSeedSecret(secret, publicKey string) error {
	s.lastErr = s.client.UploadSeedSecret(s.ctx(), publicKey, secret)
	return nil
}

func (s *StepsContext) iUploadSecrets(table *godog.Table) error {
	var entries []store.SecretEntry
	for i, row := range table.Rows {
		if i == 0 {
			continue
		}
		if len(row.Cells) != 2 {
			return fmt.Errorf("expected | public_key | encrypted_secret | rows")
		}
		entries = append(entries, store.SecretEntry{PublicKey: row.Cells[0].Value, EncryptedSecret: row.Cells[1].Value})
	}
	s.lastErr = s.client.UploadEncryptedSecrets(s.ctx(), entries)
	return nil
}

func (s *StepsContext) unsyncedShouldBe(expected string) error {
	keys, err := s.client.UnsyncedPublicKeys(s.ctx())
	if err != nil {
		return err
	}
	return compareList("unsynced keys", splitList(expected), keys)
}

func (s *StepsContext) encryptedSecretShouldBe(publicKey, expected string) error {
	secret, err := s.client.EncryptedSecret(s.ctx(), publicKey)
	if err != nil {
		return err
	}
	if secret != expected {
		return fmt.Errorf("encrypted secret for %q is %q, expected %q", publicKey, secret, expected)
	}
	return nil
}

func (s *StepsContext) iFetchEncryptedSecret(publicKey string) error {
	_, s.lastErr = s.client.EncryptedSecret(s.ctx(), publicKey)
	return nil
}

func (s *StepsContext) syncStateShouldBe(expected string) error {
	state, err := s.client.SyncState(s.ctx())
	if err != nil {
		return err
	}
	if state.String() != expected {
		return fmt.Errorf("sync state is %s, expected %s", state, expected)
	}
	return nil
}

// Notes

func (s *StepsContext) iAddNote(name, ciphertext string) error {
	id, err := s.client.AddNote(s.ctx(), ciphertext)
	s.lastErr = err
	if err == nil {
		s.notes[name] = id
	}
	return nil
}

func (s *StepsContext) iAddNoteOfSize(size int) error {
	_, s.lastErr = s.client.AddNote(s.ctx(), strings.Repeat("x", size))
	return nil
}

func (s *StepsContext) noteID(name string) (model.NoteID, error) {
	id, ok := s.notes[name]
	if !ok {
		return model.NoteID{}, fmt.Errorf("note %q was never added", name)
	}
	return id, nil
}

func (s *StepsContext) iUpdateNote(name, ciphertext string) error {
	id, err := s.noteID(name)
	if err != nil {
		return err
	}
	s.lastErr = s.client.UpdateNote(s.ctx(), id, ciphertext)
	return nil
}

func (s *StepsContext) iDeleteNote(name string) error {
	id, err := s.noteID(name)
	if err != nil {
		return err
	}
	s.lastErr = s.client.DeleteNote(s.ctx(), id)
	return nil
}

func (s *StepsContext) iFetchNote(name string) error {
	id, err := s.noteID(name)
	if err != nil {
		return err
	}
	_, s.lastErr = s.client.Note(s.ctx(), id)
	return nil
}

func (s *StepsContext) noteShouldRead(name, ciphertext string) error {
	id, err := s.noteID(name)
	if err != nil {
		return err
	}
	note, err := s.client.Note(s.ctx(), id)
	if err != nil {
		return err
	}
	if note.Ciphertext != ciphertext {
		return fmt.Errorf("note %q reads %q, expected %q", name, note.Ciphertext, ciphertext)
	}
	return nil
}

func (s *StepsContext) iListNotes() error {
	notes, err := s.client.Notes(s.ctx())
	s.lastErr = err
	s.listed = nil
	for _, n := range notes {
		s.listed = append(s.listed, n.Ciphertext)
	}
	return nil
}

func (s *StepsContext) myNotesShouldBe(expected string) error {
	if err := s.iListNotes(); err != nil {
		return err
	}
	if s.lastErr != nil {
		return s.lastErr
	}
	// Order matters: notes are listed in insertion order.
	want := splitList(expected)
	if strings.Join(want, ",") != strings.Join(s.listed, ",") {
		return fmt.Errorf("notes are %v, expected %v", s.listed, want)
	}
	return nil
}

func (s *StepsContext) noteIDShouldBeHigher(later, earlier string) error {
	a, err := s.noteID(later)
	if err != nil {
		return err
	}
	b, err := s.noteID(earlier)
	if err != nil {
		return err
	}
	if a.Cmp(b) <= 0 {
		return fmt.Errorf("note %q has id %s, not above %s", later, a, b)
	}
	return nil
}

// Outcomes

func (s *StepsContext) theRequestShouldSucceed() error {
	if s.lastErr != nil {
		return fmt.Errorf("expected success, got %v", s.lastErr)
	}
	return nil
}

func (s *StepsContext) theRequestShouldFailWith(code string) error {
	if s.lastErr == nil {
		return fmt.Errorf("expected %s, but the request succeeded", code)
	}
	if got := client.Code(s.lastErr); got != code {
		return fmt.Errorf("expected %s, got %v", code, s.lastErr)
	}
	return nil
}

func (s *StepsContext) theRequestShouldFailInternally() error {
	var apiErr *client.APIError
	if !errors.As(s.lastErr, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		return fmt.Errorf("expected an internal server error, got %v", s.lastErr)
	}
	return nil
}

func (s *StepsContext) serverStatusShouldBe(expected string) error {
	status, err := s.newClient("").Status(s.ctx())
	if err != nil {
		return err
	}
	if status.Status != expected {
		return fmt.Errorf("status is %q, expected %q", status.Status, expected)
	}
	if status.Backend != s.tc.Backend {
		return fmt.Errorf("backend is %q, expected %q", status.Backend, s.tc.Backend)
	}
	return nil
}

func splitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func compareList(what string, want, got []string) error {
	sort.Strings(want)
	if strings.Join(want, ",") != strings.Join(got, ",") {
		return fmt.Errorf("%s are %v, expected %v", what, got, want)
	}
	return nil
}
