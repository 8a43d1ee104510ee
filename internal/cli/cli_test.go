package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"construction-sales-ledger/internal/domain"
	"construction-sales-ledger/internal/repository/sqlstore"
	"construction-sales-ledger/internal/security"
	"construction-sales-ledger/internal/service"
)

const cliSecret = "cli-test-secret-0123456789abcdefgh"

// writeConfig points a config at a fresh sqlite file and returns both paths.
func writeConfig(t *testing.T) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	dbPath = filepath.Join(dir, "ledger.db")
	cfgPath = filepath.Join(dir, "config.yaml")
	yaml := "database:\n  driver: sqlite\n  dsn: " + dbPath + "\n  migrate: true\n" +
		"jwt:\n  secret: " + cliSecret + "\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(yaml), 0o600))
	return cfgPath, dbPath
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrate(t *testing.T) {
	cfg, _ := writeConfig(t)
	out, err := run(t, "migrate", "-c", cfg)
	require.NoError(t, err)
	assert.Equal(t, "schema up to date\n", out)
}

func TestTokenIssue(t *testing.T) {
	cfg, _ := writeConfig(t)
	out, err := run(t, "token", "issue", "task-workflow", "-r", "system", "-c", cfg)
	require.NoError(t, err)

	claims, err := security.NewTokenManager(cliSecret, time.Hour).ValidateToken(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "task-workflow", claims.UserID)
	assert.True(t, claims.HasRole("system"))
}

func TestUnitCreate(t *testing.T) {
	cfg, _ := writeConfig(t)

	_, err := run(t, "unit", "create", "--project", "tower-a", "--price", "0", "-c", cfg)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	out, err := run(t, "unit", "create", "--project", "tower-a", "--price", "2500000", "-c", cfg)
	require.NoError(t, err)
	var unit domain.Unit
	require.NoError(t, json.Unmarshal([]byte(out), &unit))
	assert.Equal(t, "tower-a", unit.ProjectID)
	assert.Equal(t, domain.UnitSalesStatusAvailable, unit.SalesStatus)
	assert.NotEmpty(t, unit.ID)
}

func TestWalletVerify(t *testing.T) {
	cfg, dbPath := writeConfig(t)
	ctx := context.Background()

	db, err := sqlstore.Connect(ctx, sqlstore.DriverSQLite, dbPath, true)
	require.NoError(t, err)
	wallets := service.NewWalletService(sqlstore.NewStore(db), nil, nil, service.PromoteImmediately)
	_, err = wallets.Credit(ctx, "sales-7", 40_000, nil, "commission")
	require.NoError(t, err)
	require.NoError(t, db.Close())

	out, err := run(t, "wallet", "verify", "sales-7", "-c", cfg)
	require.NoError(t, err)
	var v service.WalletVerification
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.True(t, v.Consistent)
	assert.True(t, v.Balanced)
	assert.Equal(t, int64(40_000), v.Stored.TotalEarned)

	_, err = run(t, "wallet", "show", "nobody", "-c", cfg)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
