package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"go.uber.org/zap"
)

const migrationsDir = "migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

var (
	// ErrDirtyMigration 上次迁移中途失败，需人工修复后 force 版本
	ErrDirtyMigration = errors.New("数据库迁移处于 dirty 状态")
	// ErrUnpairedMigration 迁移文件缺少对应的 up/down
	ErrUnpairedMigration = errors.New("迁移文件未成对")
	// ErrEmptySlotCatalog 迁移后时间段目录为空，排课无法进行
	ErrEmptySlotCatalog = errors.New("时间段目录为空")
)

// RunMigrations 执行数据库迁移并确认时间段目录已写入。
// dirty 状态直接拒绝启动，不再带病继续。
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if err := checkMigrationPairs(migrationsFS, migrationsDir); err != nil {
		return err
	}

	m, err := newMigrator(db)
	if err != nil {
		return err
	}

	before, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("空库，开始初始化排课表结构")
	case err != nil:
		return fmt.Errorf("读取迁移版本失败: %w", err)
	case dirty:
		return fmt.Errorf("%w: version=%d", ErrDirtyMigration, before)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("执行迁移失败: %w", err)
	}

	after, _, err := m.Version()
	if err != nil {
		return fmt.Errorf("读取迁移版本失败: %w", err)
	}

	slots, err := countTimeSlots(db)
	if err != nil {
		return err
	}

	logger.Info("数据库迁移完成",
		zap.Uint("from", before),
		zap.Uint("to", after),
		zap.Int("time_slots", slots))
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	source, err := iofs.New(migrationsFS, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("加载迁移文件失败: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("创建迁移驱动失败: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("初始化迁移实例失败: %w", err)
	}
	return m, nil
}

// countTimeSlots 时间段目录由种子数据写入，为空说明种子缺失
func countTimeSlots(db *sql.DB) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var n int
	if err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM time_slots").Scan(&n); err != nil {
		return 0, fmt.Errorf("查询时间段目录失败: %w", err)
	}
	if n == 0 {
		return 0, ErrEmptySlotCatalog
	}
	return n, nil
}

// checkMigrationPairs 每个版本必须同时具备 .up.sql 与 .down.sql
func checkMigrationPairs(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("读取迁移目录失败: %w", err)
	}

	ups := make(map[string]bool)
	downs := make(map[string]bool)
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	if len(ups) == 0 {
		return fmt.Errorf("%w: %s 下没有迁移文件", ErrUnpairedMigration, dir)
	}

	for v := range ups {
		if !downs[v] {
			return fmt.Errorf("%w: 缺少 %s", ErrUnpairedMigration, path.Join(dir, v+".down.sql"))
		}
	}
	for v := range downs {
		if !ups[v] {
			return fmt.Errorf("%w: 缺少 %s", ErrUnpairedMigration, path.Join(dir, v+".up.sql"))
		}
	}
	return nil
}
