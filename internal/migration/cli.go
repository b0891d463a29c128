package migration

import (
	"context"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
)

// =============================================================================
// 🖥️ 迁移命令输出
// =============================================================================

// CLI 为 dallevision migrate 子命令包装 Migrator，输出 ArchiveRanking 表结构的状态
type CLI struct {
	migrator Migrator
	out      io.Writer
}

// NewCLI 创建 CLI，默认输出到标准输出
func NewCLI(migrator Migrator) *CLI {
	return &CLI{migrator: migrator, out: os.Stdout}
}

// SetOutput 替换输出目标
func (c *CLI) SetOutput(w io.Writer) {
	c.out = w
}

// RunUp 应用全部待执行迁移
func (c *CLI) RunUp(ctx context.Context) error {
	return c.apply(ctx, "up", c.migrator.Up)
}

// RunDown 回滚最近一次迁移
func (c *CLI) RunDown(ctx context.Context) error {
	return c.apply(ctx, "down", c.migrator.Down)
}

// RunReset 回滚全部迁移，ArchiveRanking 表随之删除
func (c *CLI) RunReset(ctx context.Context) error {
	return c.apply(ctx, "reset", c.migrator.DownAll)
}

// RunGoto 迁移到指定版本
func (c *CLI) RunGoto(ctx context.Context, version uint) error {
	return c.apply(ctx, fmt.Sprintf("goto %d", version), func(ctx context.Context) error {
		return c.migrator.Goto(ctx, version)
	})
}

// RunForce 强制写入版本号并清除 dirty 标记，不执行任何 SQL
func (c *CLI) RunForce(ctx context.Context, version int) error {
	return c.apply(ctx, fmt.Sprintf("force %d", version), func(ctx context.Context) error {
		return c.migrator.Force(ctx, version)
	})
}

// RunVersion 输出当前版本
func (c *CLI) RunVersion(ctx context.Context) error {
	return c.printVersion(ctx)
}

// RunStatus 以表格列出每个迁移文件的状态
func (c *CLI) RunStatus(ctx context.Context) error {
	info, statuses, err := c.snapshot(ctx)
	if err != nil {
		return err
	}
	if len(statuses) == 0 {
		fmt.Fprintln(c.out, "no embedded migrations")
		return nil
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VERSION\tNAME\tSTATE")
	for _, s := range statuses {
		fmt.Fprintf(w, "%06d\t%s\t%s\n", s.Version, s.Name, stateLabel(s))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(c.out, "\n%d applied, %d pending\n", info.AppliedMigrations, info.PendingMigrations)
	return nil
}

// RunInfo 输出汇总信息
func (c *CLI) RunInfo(ctx context.Context) error {
	info, _, err := c.snapshot(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(c.out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "version:\t%d\n", info.CurrentVersion)
	fmt.Fprintf(w, "dirty:\t%t\n", info.Dirty)
	fmt.Fprintf(w, "applied:\t%d/%d\n", info.AppliedMigrations, info.TotalMigrations)
	fmt.Fprintf(w, "pending:\t%d\n", info.PendingMigrations)
	return w.Flush()
}

// apply 执行一次变更并输出变更后的版本
func (c *CLI) apply(ctx context.Context, action string, fn func(context.Context) error) error {
	fmt.Fprintf(c.out, "migrate %s\n", action)
	if err := fn(ctx); err != nil {
		return fmt.Errorf("migrate %s: %w", action, err)
	}
	return c.printVersion(ctx)
}

func (c *CLI) printVersion(ctx context.Context) error {
	version, dirty, err := c.migrator.Version(ctx)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	switch {
	case version == 0:
		fmt.Fprintln(c.out, "schema version: none")
	case dirty:
		fmt.Fprintf(c.out, "schema version: %d (dirty, fix and run migrate force %d)\n", version, version)
	default:
		fmt.Fprintf(c.out, "schema version: %d\n", version)
	}
	return nil
}

func (c *CLI) snapshot(ctx context.Context) (*MigrationInfo, []MigrationStatus, error) {
	statuses, err := c.migrator.Status(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read migration status: %w", err)
	}
	version, dirty, err := c.migrator.Version(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema version: %w", err)
	}
	return summarize(version, dirty, statuses), statuses, nil
}

func stateLabel(s MigrationStatus) string {
	switch {
	case s.Dirty:
		return "dirty"
	case s.Applied:
		return "applied"
	default:
		return "pending"
	}
}
