package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"digitalwill-backend/pkg/logger"

	"gorm.io/gorm"
)

// BackupVersion 备份文件格式版本
const BackupVersion = "1.0.0"

// backupTable 参与备份的表, 按恢复顺序排列
type backupTable struct {
	Name        string
	ConflictKey string
}

var backupTables = []backupTable{
	{Name: "users", ConflictKey: "wallet_address"},
	{Name: "will_activities", ConflictKey: "id"},
}

// BackupManager 备份管理器
type BackupManager struct {
	db *gorm.DB
}

// NewBackupManager 创建备份管理器
func NewBackupManager(db *gorm.DB) *BackupManager {
	return &BackupManager{db: db}
}

// BackupData 备份数据结构
type BackupData struct {
	Version   string                              `json:"version"`
	Timestamp time.Time                           `json:"timestamp"`
	Tables    map[string][]map[string]interface{} `json:"tables"`
}

// BackupInfo 备份文件元信息
type BackupInfo struct {
	Version   string         `json:"version"`
	Timestamp time.Time      `json:"timestamp"`
	Counts    map[string]int `json:"counts"`
}

// RestoreOptions 恢复选项
type RestoreOptions struct {
	ClearExisting bool           // 是否清空现有数据
	OnConflict    ConflictAction // 冲突处理策略
}

// ConflictAction 冲突处理策略
type ConflictAction string

const (
	ConflictSkip    ConflictAction = "skip"    // 跳过冲突记录
	ConflictReplace ConflictAction = "replace" // 替换冲突记录
	ConflictError   ConflictAction = "error"   // 遇到冲突报错
)

// ParseConflictAction 解析冲突策略
func ParseConflictAction(s string) (ConflictAction, error) {
	switch a := ConflictAction(s); a {
	case ConflictSkip, ConflictReplace, ConflictError:
		return a, nil
	}
	return "", fmt.Errorf("invalid conflict action: %s", s)
}

// CreateBackup 导出用户与遗嘱操作记录
func (bm *BackupManager) CreateBackup(ctx context.Context, backupPath string) error {
	logger.Info("Starting database backup creation", "path", backupPath)

	if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		logger.Error("Failed to create backup directory", err)
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	backup := BackupData{
		Version:   BackupVersion,
		Timestamp: time.Now(),
		Tables:    make(map[string][]map[string]interface{}, len(backupTables)),
	}

	for _, table := range backupTables {
		records, err := bm.dumpTable(ctx, table.Name)
		if err != nil {
			return fmt.Errorf("failed to backup %s: %w", table.Name, err)
		}
		backup.Tables[table.Name] = records
	}

	file, err := os.Create(backupPath)
	if err != nil {
		logger.Error("Failed to create backup file", err, "path", backupPath)
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		logger.Error("Failed to encode backup data", err)
		return fmt.Errorf("failed to encode backup data: %w", err)
	}

	logger.Info("Database backup created successfully",
		"path", backupPath,
		"version", backup.Version,
		"users", len(backup.Tables["users"]),
		"will_activities", len(backup.Tables["will_activities"]),
	)
	return nil
}

// RestoreBackup 从备份文件恢复数据
func (bm *BackupManager) RestoreBackup(ctx context.Context, backupPath string, options RestoreOptions) error {
	logger.Info("Starting database restore from backup", "path", backupPath)

	backup, err := readBackup(backupPath)
	if err != nil {
		return err
	}

	logger.Info("Backup file loaded", "version", backup.Version, "timestamp", backup.Timestamp)

	return bm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if options.ClearExisting {
			if err := clearTables(ctx, tx); err != nil {
				return fmt.Errorf("failed to clear existing data: %w", err)
			}
		}

		for _, table := range backupTables {
			if err := restoreTable(ctx, tx, table, backup.Tables[table.Name], options.OnConflict); err != nil {
				return fmt.Errorf("failed to restore %s: %w", table.Name, err)
			}
		}
		return nil
	})
}

// dumpTable 读取整表数据
func (bm *BackupManager) dumpTable(ctx context.Context, tableName string) ([]map[string]interface{}, error) {
	logger.Info("Backing up table", "table", tableName)

	rows, err := bm.db.WithContext(ctx).Table(tableName).Rows()
	if err != nil {
		return nil, fmt.Errorf("failed to query table %s: %w", tableName, err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to get columns for table %s: %w", tableName, err)
	}

	records := make([]map[string]interface{}, 0)
	for rows.Next() {
		values := make([]interface{}, len(columns))
		valuePtrs := make([]interface{}, len(columns))
		for i := range values {
			valuePtrs[i] = &values[i]
		}

		if err := rows.Scan(valuePtrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row from table %s: %w", tableName, err)
		}

		record := make(map[string]interface{}, len(columns))
		for i, col := range columns {
			if b, ok := values[i].([]byte); ok {
				record[col] = string(b)
			} else {
				record[col] = values[i]
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate table %s: %w", tableName, err)
	}

	logger.Info("Table backup completed", "table", tableName, "records", len(records))
	return records, nil
}

func restoreTable(ctx context.Context, tx *gorm.DB, table backupTable, records []map[string]interface{}, onConflict ConflictAction) error {
	if len(records) == 0 {
		logger.Info("No records to restore for table", "table", table.Name)
		return nil
	}

	logger.Info("Restoring table", "table", table.Name, "records", len(records))
	for _, record := range records {
		query, args := buildInsertSQL(table, record, onConflict)
		if err := tx.WithContext(ctx).Exec(query, args...).Error; err != nil {
			if onConflict == ConflictError {
				return fmt.Errorf("failed to insert record into %s: %w", table.Name, err)
			}
			logger.Warn("Skipped record due to conflict", "table", table.Name, "error", err)
		}
	}

	if table.ConflictKey == "id" {
		// 同步自增序列, 避免后续插入主键冲突
		seq := fmt.Sprintf("SELECT setval(pg_get_serial_sequence('%s', 'id'), COALESCE(MAX(id), 1)) FROM %s", table.Name, table.Name)
		if err := tx.WithContext(ctx).Exec(seq).Error; err != nil {
			logger.Warn("Failed to reset id sequence", "table", table.Name, "error", err)
		}
	}

	logger.Info("Table restore completed", "table", table.Name)
	return nil
}

// buildInsertSQL 按列名排序构造插入语句
func buildInsertSQL(table backupTable, record map[string]interface{}, onConflict ConflictAction) (string, []interface{}) {
	columns := make([]string, 0, len(record))
	for col := range record {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	values := make([]interface{}, 0, len(columns))
	placeholders := make([]string, 0, len(columns))
	for _, col := range columns {
		values = append(values, record[col])
		placeholders = append(placeholders, "?")
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table.Name, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	switch onConflict {
	case ConflictSkip:
		query += " ON CONFLICT DO NOTHING"
	case ConflictReplace:
		var updates []string
		for _, col := range columns {
			if col != "id" && col != table.ConflictKey {
				updates = append(updates, fmt.Sprintf("%s = EXCLUDED.%s", col, col))
			}
		}
		if len(updates) == 0 {
			query += " ON CONFLICT DO NOTHING"
		} else {
			query += fmt.Sprintf(" ON CONFLICT (%s) DO UPDATE SET %s", table.ConflictKey, strings.Join(updates, ", "))
		}
	}
	return query, values
}

// clearTables 按依赖逆序清空
func clearTables(ctx context.Context, tx *gorm.DB) error {
	logger.Warn("Clearing existing data")
	for i := len(backupTables) - 1; i >= 0; i-- {
		name := backupTables[i].Name
		if err := tx.WithContext(ctx).Exec(fmt.Sprintf("TRUNCATE TABLE %s RESTART IDENTITY CASCADE", name)).Error; err != nil {
			logger.Error("Failed to clear table", err, "table", name)
			return fmt.Errorf("failed to clear table %s: %w", name, err)
		}
		logger.Info("Cleared table", "table", name)
	}
	return nil
}

func readBackup(backupPath string) (*BackupData, error) {
	file, err := os.Open(backupPath)
	if err != nil {
		logger.Error("Failed to open backup file", err, "path", backupPath)
		return nil, fmt.Errorf("failed to open backup file: %w", err)
	}
	defer file.Close()

	var backup BackupData
	if err := json.NewDecoder(file).Decode(&backup); err != nil {
		logger.Error("Failed to decode backup data", err)
		return nil, fmt.Errorf("failed to decode backup data: %w", err)
	}
	return &backup, nil
}

// ValidateBackup 验证备份文件的完整性
func ValidateBackup(backupPath string) error {
	logger.Info("Validating backup file", "path", backupPath)

	backup, err := readBackup(backupPath)
	if err != nil {
		return err
	}
	if backup.Version == "" {
		return errors.New("backup version is missing")
	}
	if backup.Timestamp.IsZero() {
		return errors.New("backup timestamp is missing")
	}

	users := make(map[string]bool, len(backup.Tables["users"]))
	for i, user := range backup.Tables["users"] {
		addr, ok := user["wallet_address"].(string)
		if !ok || addr == "" {
			return fmt.Errorf("users[%d]: wallet_address is missing", i)
		}
		users[strings.ToLower(addr)] = true
	}

	for i, activity := range backup.Tables["will_activities"] {
		owner, ok := activity["owner_address"].(string)
		if !ok || owner == "" {
			return fmt.Errorf("will_activities[%d]: owner_address is missing", i)
		}
		if !users[strings.ToLower(owner)] {
			return fmt.Errorf("will_activities[%d]: owner %s has no user record", i, owner)
		}
	}

	logger.Info("Backup validation completed successfully",
		"version", backup.Version,
		"users", len(backup.Tables["users"]),
		"timestamp", backup.Timestamp,
	)
	return nil
}

// GetBackupInfo 获取备份文件元信息
func GetBackupInfo(backupPath string) (*BackupInfo, error) {
	backup, err := readBackup(backupPath)
	if err != nil {
		return nil, err
	}

	info := &BackupInfo{
		Version:   backup.Version,
		Timestamp: backup.Timestamp,
		Counts:    make(map[string]int, len(backup.Tables)),
	}
	for name, records := range backup.Tables {
		info.Counts[name] = len(records)
	}
	return info, nil
}
