package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	"digitalwill-backend/internal/config"
	"digitalwill-backend/pkg/database"
	"digitalwill-backend/pkg/logger"

	"gorm.io/gorm"
)

func main() {
	// 解析命令行参数
	var (
		action     = flag.String("action", "", "Action Type: backup, restore, validate, info, migrate")
		backupPath = flag.String("file", "", "Backup File Path")
		configPath = flag.String("config", "", "Config File Path")
		clearData  = flag.Bool("clear", false, "Clear Existing Data When Restore")
		conflict   = flag.String("conflict", "skip", "Conflict Resolution Strategy: skip, replace, error")
		yes        = flag.Bool("yes", false, "Skip Confirmation")
		help       = flag.Bool("help", false, "Show Help")
	)
	flag.Parse()

	if *help || *action == "" {
		showHelp()
		return
	}

	logger.Init(logger.DefaultConfig())
	defer logger.Sync()

	// validate / info 只读取文件, 不需要数据库
	switch *action {
	case "validate":
		handleValidate(*backupPath)
		return
	case "info":
		handleInfo(*backupPath)
		return
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		logger.Error("Failed to load config", err)
		os.Exit(1)
	}

	db, err := database.NewPostgresConnection(&cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", err)
		os.Exit(1)
	}

	ctx := context.Background()
	backupManager := database.NewBackupManager(db)

	switch *action {
	case "backup":
		handleBackup(ctx, backupManager, *backupPath)
	case "restore":
		handleRestore(ctx, backupManager, *backupPath, *clearData, *conflict, *yes)
	case "migrate":
		handleMigrate(db)
	default:
		fmt.Printf("Error: Unsupported action '%s'\n", *action)
		showHelp()
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadConfigFile(path)
	}
	return config.LoadConfig()
}

func handleBackup(ctx context.Context, bm *database.BackupManager, backupPath string) {
	if backupPath == "" {
		backupPath = fmt.Sprintf("./backups/digitalwill_backup_%s.json",
			time.Now().Format("20060102_150405"))
	}

	fmt.Printf("Creating backup to: %s\n", backupPath)

	if err := bm.CreateBackup(ctx, backupPath); err != nil {
		logger.Error("Backup failed", err)
		fmt.Printf("Backup failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Backup created successfully: %s\n", backupPath)
}

func handleRestore(ctx context.Context, bm *database.BackupManager, backupPath string, clearData bool, conflictStr string, yes bool) {
	if backupPath == "" {
		fmt.Println("Error: Backup file path is required")
		os.Exit(1)
	}

	conflictAction, err := database.ParseConflictAction(conflictStr)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	options := database.RestoreOptions{
		ClearExisting: clearData,
		OnConflict:    conflictAction,
	}

	fmt.Printf("Restoring data from backup: %s\n", backupPath)
	if clearData {
		fmt.Println("Warning: Existing users and will activities will be cleared")
	}
	fmt.Printf("Conflict strategy: %s\n", conflictStr)

	if !yes {
		fmt.Print("Continue? (y/N): ")
		var confirm string
		fmt.Scanln(&confirm)
		if confirm != "y" && confirm != "Y" {
			fmt.Println("Operation cancelled")
			return
		}
	}

	if err := bm.RestoreBackup(ctx, backupPath, options); err != nil {
		logger.Error("Restore failed", err)
		fmt.Printf("Restore failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Data restored successfully")
}

func handleValidate(backupPath string) {
	if backupPath == "" {
		fmt.Println("Error: Backup file path is required")
		os.Exit(1)
	}

	fmt.Printf("Validating backup file: %s\n", backupPath)

	if err := database.ValidateBackup(backupPath); err != nil {
		fmt.Printf("Backup file validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Backup file validated successfully")
}

func handleInfo(backupPath string) {
	if backupPath == "" {
		fmt.Println("Error: Backup file path is required")
		os.Exit(1)
	}

	info, err := database.GetBackupInfo(backupPath)
	if err != nil {
		fmt.Printf("Failed to read backup file info: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nBackup file info:\n")
	fmt.Printf("Version: %s\n", info.Version)
	fmt.Printf("Created at: %s\n", info.Timestamp.Format("2006-01-02 15:04:05"))

	tables := make([]string, 0, len(info.Counts))
	for name := range info.Counts {
		tables = append(tables, name)
	}
	sort.Strings(tables)
	for _, name := range tables {
		fmt.Printf("%s count: %d\n", name, info.Counts[name])
	}
}

func handleMigrate(db *gorm.DB) {
	if err := database.AutoMigrate(db); err != nil {
		logger.Error("Migrate failed", err)
		fmt.Printf("Migrate failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("Database migrated successfully")
}

func showHelp() {
	fmt.Printf(`Digital Will Database Backup and Restore Tool

Usage:
  %s -action=<action> [options]

Actions:
  backup    Create data backup (users, will_activities)
  restore   Restore from backup
  validate  Validate backup file
  info      Display backup file info
  migrate   Create or update tables

Options:
  -file=<path>            Backup file path
  -config=<path>          Config file path (default: ./config.yaml)
  -clear                  Clear existing data when restore (only for restore)
  -conflict=<strategy>    Conflict resolution strategy: skip|replace|error (only for restore)
  -yes                    Skip confirmation prompt
  -help                   Display this help message

Examples:
  %s -action=backup -file=./my_backup.json
  %s -action=restore -file=./my_backup.json -clear -conflict=replace
  %s -action=info -file=./my_backup.json

`, os.Args[0], os.Args[0], os.Args[0], os.Args[0])
}
