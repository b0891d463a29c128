package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/BaSui01/dallevision/config"
	"github.com/BaSui01/dallevision/internal/migration"
)

// =============================================================================
// 🗃️ 数据库迁移命令
// =============================================================================

// migrateAction 在已打开的迁移器上执行的操作
type migrateAction func(ctx context.Context, cli *migration.CLI) error

// cliAction 将 CLI 的无参方法适配为 migrateAction
func cliAction(run func(*migration.CLI, context.Context) error) migrateAction {
	return func(ctx context.Context, cli *migration.CLI) error {
		return run(cli, ctx)
	}
}

// runMigrate 分发 migrate 子命令
func runMigrate(args []string) {
	if len(args) < 1 {
		printMigrateUsage()
		os.Exit(1)
	}

	subcommand := args[0]
	subargs := args[1:]

	switch subcommand {
	case "up":
		runMigrateAction("up", subargs, cliAction((*migration.CLI).RunUp))
	case "down":
		runMigrateDown(subargs)
	case "status":
		runMigrateAction("status", subargs, cliAction((*migration.CLI).RunStatus))
	case "version":
		runMigrateAction("version", subargs, cliAction((*migration.CLI).RunVersion))
	case "info":
		runMigrateAction("info", subargs, cliAction((*migration.CLI).RunInfo))
	case "goto":
		runMigrateGoto(subargs)
	case "force":
		runMigrateForce(subargs)
	case "reset":
		runMigrateAction("reset", subargs, cliAction((*migration.CLI).RunReset))
	case "help", "-h", "--help":
		printMigrateUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown migrate subcommand: %s\n", subcommand)
		printMigrateUsage()
		os.Exit(1)
	}
}

func printMigrateUsage() {
	fmt.Println(`Database Migration Commands

Usage:
  dallevision migrate <subcommand> [options]

Subcommands:
  up        Apply all pending migrations
  down      Rollback the last migration (--all rolls back everything)
  status    Show migration status
  version   Show current migration version
  info      Show applied and pending counts
  goto      Migrate to a specific version
  force     Force set migration version (use with caution)
  reset     Rollback all migrations
  help      Show this help message

Options:
  --config <path>     Path to configuration file (YAML)
  --db-type <type>    Database type: postgres, mysql, sqlite (default: from config)
  --db-url <url>      Database connection URL (default: from config)

Examples:
  dallevision migrate up
  dallevision migrate up --config /etc/dallevision/config.yaml
  dallevision migrate up --db-type sqlite --db-url "file:archive.db?mode=rwc"
  dallevision migrate goto 1
  dallevision migrate force 0`)
}

// migrateFlags 注册迁移命令共用的参数
type migrateFlags struct {
	configPath *string
	dbType     *string
	dbURL      *string
}

func registerMigrateFlags(fs *flag.FlagSet) migrateFlags {
	return migrateFlags{
		configPath: fs.String("config", "", "Path to config file"),
		dbType:     fs.String("db-type", "", "Database type (postgres, mysql, sqlite)"),
		dbURL:      fs.String("db-url", "", "Database connection URL"),
	}
}

// createMigrator 优先使用 --db-type/--db-url，否则读取配置文件的数据库段
func createMigrator(f migrateFlags) (*migration.DefaultMigrator, error) {
	if *f.dbType != "" && *f.dbURL != "" {
		dbType, err := migration.ParseDatabaseType(*f.dbType)
		if err != nil {
			return nil, err
		}
		return migration.NewMigrator(&migration.Config{
			DatabaseType: dbType,
			DatabaseURL:  *f.dbURL,
			TableName:    migration.DefaultTableName,
		})
	}

	loader := config.NewLoader()
	if *f.configPath != "" {
		loader = loader.WithConfigPath(*f.configPath)
	}
	cfg, err := loader.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if *f.dbType != "" {
		cfg.Database.Driver = *f.dbType
	}
	return migration.NewMigratorFromDatabaseConfig(cfg.Database)
}

// runMigrateAction 解析参数、打开迁移器并执行 action
func runMigrateAction(name string, args []string, action migrateAction) {
	fs := flag.NewFlagSet("migrate "+name, flag.ExitOnError)
	f := registerMigrateFlags(fs)
	fs.Parse(args)
	execMigrate(name, f, action)
}

func execMigrate(name string, f migrateFlags, action migrateAction) {
	migrator, err := createMigrator(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create migrator: %v\n", err)
		os.Exit(1)
	}

	err = action(context.Background(), migration.NewCLI(migrator))
	migrator.Close()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migrate %s failed: %v\n", name, err)
		os.Exit(1)
	}
}

func runMigrateDown(args []string) {
	fs := flag.NewFlagSet("migrate down", flag.ExitOnError)
	all := fs.Bool("all", false, "Rollback all migrations")
	f := registerMigrateFlags(fs)
	fs.Parse(args)

	if *all {
		execMigrate("down", f, cliAction((*migration.CLI).RunReset))
		return
	}
	execMigrate("down", f, cliAction((*migration.CLI).RunDown))
}

func runMigrateGoto(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dallevision migrate goto <version>")
		os.Exit(1)
	}
	version, err := strconv.ParseUint(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid version number: %s\n", args[0])
		os.Exit(1)
	}

	fs := flag.NewFlagSet("migrate goto", flag.ExitOnError)
	f := registerMigrateFlags(fs)
	fs.Parse(args[1:])

	execMigrate("goto", f, func(ctx context.Context, cli *migration.CLI) error {
		return cli.RunGoto(ctx, uint(version))
	})
}

func runMigrateForce(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: dallevision migrate force <version>")
		os.Exit(1)
	}
	version, err := strconv.ParseInt(args[0], 10, 32)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid version number: %s\n", args[0])
		os.Exit(1)
	}

	fs := flag.NewFlagSet("migrate force", flag.ExitOnError)
	f := registerMigrateFlags(fs)
	fs.Parse(args[1:])

	execMigrate("force", f, func(ctx context.Context, cli *migration.CLI) error {
		return cli.RunForce(ctx, int(version))
	})
}
