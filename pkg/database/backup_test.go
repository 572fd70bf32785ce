package database

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeBackup(t *testing.T, data BackupData) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backup.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestValidateBackup(t *testing.T) {
	t.Parallel()

	valid := BackupData{
		Version:   BackupVersion,
		Timestamp: time.Now(),
		Tables: map[string][]map[string]interface{}{
			"users":           {{"id": 1, "wallet_address": "0xAB"}},
			"will_activities": {{"id": 1, "owner_address": "0xab", "action": "ping"}},
		},
	}
	require.NoError(t, ValidateBackup(writeBackup(t, valid)))

	orphan := valid
	orphan.Tables = map[string][]map[string]interface{}{
		"will_activities": {{"id": 1, "owner_address": "0xcd"}},
	}
	require.ErrorContains(t, ValidateBackup(writeBackup(t, orphan)), "has no user record")

	noVersion := valid
	noVersion.Version = ""
	require.ErrorContains(t, ValidateBackup(writeBackup(t, noVersion)), "version is missing")

	require.Error(t, ValidateBackup(filepath.Join(t.TempDir(), "missing.json")))
}

func TestGetBackupInfo(t *testing.T) {
	t.Parallel()

	path := writeBackup(t, BackupData{
		Version:   BackupVersion,
		Timestamp: time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC),
		Tables: map[string][]map[string]interface{}{
			"users":           {{"wallet_address": "0x1"}, {"wallet_address": "0x2"}},
			"will_activities": {},
		},
	})

	info, err := GetBackupInfo(path)
	require.NoError(t, err)
	assert.Equal(t, BackupVersion, info.Version)
	assert.Equal(t, 2, info.Counts["users"])
	assert.Equal(t, 0, info.Counts["will_activities"])
}

func TestBuildInsertSQL(t *testing.T) {
	t.Parallel()

	table := backupTable{Name: "users", ConflictKey: "wallet_address"}
	record := map[string]interface{}{"wallet_address": "0x1", "id": 7, "status": 1}

	query, args := buildInsertSQL(table, record, ConflictReplace)
	assert.Equal(t,
		"INSERT INTO users (id, status, wallet_address) VALUES (?, ?, ?) ON CONFLICT (wallet_address) DO UPDATE SET status = EXCLUDED.status",
		query)
	assert.Equal(t, []interface{}{7, 1, "0x1"}, args)

	query, _ = buildInsertSQL(table, record, ConflictSkip)
	assert.Contains(t, query, "ON CONFLICT DO NOTHING")

	query, _ = buildInsertSQL(table, record, ConflictError)
	assert.NotContains(t, query, "ON CONFLICT")
}
