package datastore

import (
	"context"
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v3/disk"

	"github.com/artidentifier/artid/internal/errors"
)

// Info describes a live database.
type Info struct {
	Backend Backend `json:"backend" yaml:"backend"`
	// URL is the connection URL with the password masked.
	URL     string `json:"url" yaml:"url"`
	Version string `json:"version" yaml:"version"`

	// Pool is set for client/server backends.
	Pool *PoolInfo `json:"pool,omitempty" yaml:"pool,omitempty"`
	// File is set for embedded backends stored on disk.
	File *FileInfo `json:"file,omitempty" yaml:"file,omitempty"`
}

// PoolInfo reports connection pool occupancy.
type PoolInfo struct {
	Size       int   `json:"pool_size" yaml:"pool_size"`
	CheckedOut int   `json:"checked_out" yaml:"checked_out"`
	Overflow   int   `json:"overflow" yaml:"overflow"`
	CheckedIn  int   `json:"checked_in" yaml:"checked_in"`
	MaxOpen    int   `json:"max_open" yaml:"max_open"`
	WaitCount  int64 `json:"wait_count" yaml:"wait_count"`
}

// FileInfo reports the database file and the disk holding it.
type FileInfo struct {
	Path            string  `json:"path" yaml:"path"`
	SizeBytes       int64   `json:"size_bytes" yaml:"size_bytes"`
	DiskTotalBytes  uint64  `json:"disk_total_bytes" yaml:"disk_total_bytes"`
	DiskFreeBytes   uint64  `json:"disk_free_bytes" yaml:"disk_free_bytes"`
	DiskUsedPercent float64 `json:"disk_used_percent" yaml:"disk_used_percent"`
}

// Introspect reports the backend version and, depending on the backend, pool
// occupancy or the database file and its disk. Failing to reach the database
// is a connectivity error; a missing disk report is only logged.
func (e *Engine) Introspect(ctx context.Context) (*Info, error) {
	version, err := e.version(ctx)
	if err != nil {
		return nil, connectivityError(err, "query version", e.target.Redacted)
	}

	info := &Info{
		Backend: e.target.Backend,
		URL:     e.target.Redacted,
		Version: version,
	}

	if e.target.Backend.Embedded() {
		if e.target.Path != "" {
			info.File = e.fileInfo(ctx)
		}
		return info, nil
	}

	stats := e.sqlDB.Stats()
	info.Pool = &PoolInfo{
		Size:       e.pool.MaxIdle,
		CheckedOut: stats.InUse,
		Overflow:   overflow(stats.OpenConnections, e.pool.MaxIdle),
		CheckedIn:  stats.Idle,
		MaxOpen:    stats.MaxOpenConnections,
		WaitCount:  stats.WaitCount,
	}
	e.updatePoolMetrics()
	return info, nil
}

func (e *Engine) version(ctx context.Context) (string, error) {
	query := "SELECT version()"
	if e.target.Backend == BackendSQLite {
		query = "SELECT sqlite_version()"
	}

	var version string
	if err := e.db.WithContext(ctx).Raw(query).Scan(&version).Error; err != nil {
		return "", err
	}
	if e.target.Backend == BackendSQLite {
		version = "SQLite " + version
	}
	return version, nil
}

func (e *Engine) fileInfo(ctx context.Context) *FileInfo {
	fi := &FileInfo{Path: e.target.Path}

	if stat, err := os.Stat(e.target.Path); err == nil {
		fi.SizeBytes = stat.Size()
		if e.metrics != nil {
			e.metrics.UpdateDatabaseSize(fi.SizeBytes)
		}
	} else {
		logger().Warn("cannot stat database file", "error", fileError(err, "stat", e.target.Path))
	}

	dir, err := filepath.Abs(filepath.Dir(e.target.Path))
	if err != nil {
		dir = filepath.Dir(e.target.Path)
	}
	usage, err := disk.UsageWithContext(ctx, dir)
	if err != nil {
		logger().Warn("cannot read disk usage",
			"error", errors.New(err).Component("datastore").Category(errors.CategorySystem).Context("path", dir).Build())
		return fi
	}
	fi.DiskTotalBytes = usage.Total
	fi.DiskFreeBytes = usage.Free
	fi.DiskUsedPercent = usage.UsedPercent
	return fi
}
