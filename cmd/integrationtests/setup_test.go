package integrationtests

import (
	"bytes"
	"context"
	"testing"

	auction "auction-house/internal/auctionService"
	"auction-house/internal/console"
	"auction-house/internal/db"
	"auction-house/internal/repository"
	"auction-house/internal/server"

	"github.com/stretchr/testify/require"
)

// backends lists the stores every scenario runs against
var backends = map[string]func(t *testing.T) repository.AuctionDB{
	"memory": func(t *testing.T) repository.AuctionDB {
		return repository.NewMemoryRepo()
	},
	"sqlite": func(t *testing.T) repository.AuctionDB {
		return repository.NewSQLiteRepo(db.NewTestDB(t))
	},
}

// SetupTestRouter initializes the console router over a fresh store.
func SetupTestRouter(t *testing.T, backend string) *console.Engine {
	t.Helper()
	newRepo, ok := backends[backend]
	require.True(t, ok, "unknown backend %q", backend)

	service := auction.NewAuctionService(newRepo(t))
	return server.SetupRouter(service)
}

// ExecuteCommand runs one command line and returns its output.
func ExecuteCommand(t *testing.T, router *console.Engine, line string) (string, *console.Context) {
	t.Helper()
	var out bytes.Buffer
	c := router.Exec(context.Background(), line, &out)
	require.NotNil(t, c, "no command in %q", line)
	return out.String(), c
}

// MustExecute runs a command line that is expected to succeed.
func MustExecute(t *testing.T, router *console.Engine, line string) string {
	t.Helper()
	out, c := ExecuteCommand(t, router, line)
	require.False(t, c.Failed(), "%q failed: %s", line, out)
	return out
}

// MustFail runs a command line that is expected to be rejected.
func MustFail(t *testing.T, router *console.Engine, line, wantMessage string) {
	t.Helper()
	out, c := ExecuteCommand(t, router, line)
	require.True(t, c.Failed(), "%q succeeded: %s", line, out)
	require.Contains(t, out, wantMessage)
}

// forEachBackend runs fn as a subtest per store
func forEachBackend(t *testing.T, fn func(t *testing.T, router *console.Engine)) {
	for name := range backends {
		name := name
		t.Run(name, func(t *testing.T) {
			fn(t, SetupTestRouter(t, name))
		})
	}
}
