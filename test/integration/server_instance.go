package integration

import (
	"context"
	"encoding/base64"
	"fmt"
	"net"
	"os"
	"os/exec"
	"sync/atomic"
	"time"

	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/client"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/endpoints"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/middleware"
	gormstore "github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/gorm"
	"github.com/doodlesbykumbi/encrypted-notes-in-go/pkg/server/store/memory"
)

// portCounter is used to allocate unique ports for binary servers
var portCounter int32 = 19000

// maxNoteBytes is small so the size limit is reachable from a feature file.
const maxNoteBytes = 64

// ServerInstance represents a running notes server
type ServerInstance struct {
	Server        *server.Server
	ServerURL     string
	listener      net.Listener
	cancel        context.CancelFunc
	serverProcess *exec.Cmd
}

// StartServer starts an in-process server, or the NOTES_BINARY executable when set.
func StartServer(tc *TestContext) (*ServerInstance, error) {
	if binary := os.Getenv("NOTES_BINARY"); binary != "" {
		return startBinaryServerInstance(binary, tc)
	}
	return startInlineServerInstance(tc)
}

func startInlineServerInstance(tc *TestContext) (*ServerInstance, error) {
	var stores server.Stores
	if tc.DB != nil {
		pg := gormstore.NewStores(tc.DB, maxNoteBytes)
		stores = server.Stores{Devices: pg.Devices, Secrets: pg.Secrets, Notes: pg.Notes, Health: pg.Health, Backend: "postgres"}
	} else {
		backend := memory.NewBackend(maxNoteBytes)
		stores = server.Stores{Devices: backend.Devices, Secrets: backend.Secrets, Notes: backend.Notes, Health: memory.HealthStore{}, Backend: "memory"}
	}

	s := server.NewServer(stores, nil, middleware.NewTokenAuthenticator(tc.TokenKey), "127.0.0.1", "0")
	s.AccessLog = nil
	endpoints.RegisterAll(s)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	instance := &ServerInstance{
		Server:    s,
		ServerURL: "http://" + listener.Addr().String(),
		listener:  listener,
	}
	go func() {
		_ = s.StartWithListener(listener)
	}()

	if err := waitForServer(instance.ServerURL, 10*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// startBinaryServerInstance starts a server using the notesctl binary
func startBinaryServerInstance(binaryPath string, tc *TestContext) (*ServerInstance, error) {
	port := fmt.Sprintf("%d", atomic.AddInt32(&portCounter, 1))
	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, binaryPath, "server", "--no-migrate", "-b", "127.0.0.1", "-p", port)
	cmd.Env = append(os.Environ(),
		"NOTES_TOKEN_KEY="+base64.StdEncoding.EncodeToString(tc.TokenKey),
		"NOTES_STORE_BACKEND="+tc.Backend,
		fmt.Sprintf("NOTES_MAX_NOTE_BYTES=%d", maxNoteBytes),
		"NOTES_SNAPSHOT_PATH=",
	)
	if tc.DatabaseURL != "" {
		cmd.Env = append(cmd.Env, "DATABASE_URL="+tc.DatabaseURL)
	}
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start binary: %w", err)
	}

	instance := &ServerInstance{
		ServerURL:     "http://127.0.0.1:" + port,
		cancel:        cancel,
		serverProcess: cmd,
	}
	if err := waitForServer(instance.ServerURL, 30*time.Second); err != nil {
		instance.Stop()
		return nil, fmt.Errorf("server failed to become ready: %w", err)
	}
	return instance, nil
}

// Stop shuts down the server instance
func (si *ServerInstance) Stop() {
	if si.Server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_ = si.Server.Shutdown(ctx)
		cancel()
	}
	if si.cancel != nil {
		si.cancel()
	}
	if si.serverProcess != nil && si.serverProcess.Process != nil {
		_ = si.serverProcess.Process.Kill()
		_ = si.serverProcess.Wait()
	}
}

// waitForServer polls /status until it reports ok or times out
func waitForServer(serverURL string, timeout time.Duration) error {
	c := client.New(serverURL, "")
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		status, err := c.Status(ctx)
		cancel()
		if err == nil && status.Status == "ok" {
			return nil
		}
		time.Sleep(100 * time.Millisecond)
	}
	return fmt.Errorf("server did not become ready within %v", timeout)
}
