// Package db opens the configured store and manages its schema.
package db

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	gomysql "github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/digit2ai/CRM-Co-Pilot/internal/config"
)

// Connect opens a GORM connection for the configured driver.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("db: connect %s: %w", cfg.Driver, err)
	}
	if isSQLite(cfg.Driver) {
		// SQLite allows one writer; serialise access through one connection.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("db: connect %s: %w", cfg.Driver, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// Dialector returns the GORM dialector for cfg without opening it.
func Dialector(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(cfg.Path)), nil
	case config.DriverSQLitePureGo:
		return sqlite.New(sqlite.Config{DriverName: "sqlite", DSN: PureGoDSN(cfg.Path)}), nil
	case config.DriverMySQL:
		dsn, err := MySQLDSN(cfg)
		if err != nil {
			return nil, err
		}
		return mysql.Open(dsn), nil
	case config.DriverPostgres:
		connCfg, err := pgx.ParseConfig(PostgresDSN(cfg))
		if err != nil {
			return nil, fmt.Errorf("db: parse postgres dsn: %w", err)
		}
		return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*connCfg)}), nil
	}
	return nil, fmt.Errorf("db: unsupported driver %q", cfg.Driver)
}

func isSQLite(driver string) bool {
	return driver == config.DriverSQLite || driver == config.DriverSQLitePureGo
}

// SQLiteDSN enables foreign keys on a cgo SQLite file.
func SQLiteDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_foreign_keys=on"
}

// PureGoDSN enables foreign keys on a pure-Go SQLite file.
func PureGoDSN(path string) string {
	if strings.Contains(path, "?") {
		return path
	}
	return path + "?_pragma=foreign_keys(1)"
}

// MySQLDSN builds a MySQL DSN. A mysql:// URL, when configured, supplies
// the user, password, address and database.
func MySQLDSN(cfg config.DatabaseConfig) (string, error) {
	mc := gomysql.NewConfig()
	mc.Net = "tcp"
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	mc.DBName = cfg.Name
	mc.ParseTime = true

	if cfg.URL != "" {
		u, err := url.Parse(cfg.URL)
		if err != nil {
			return "", fmt.Errorf("db: parse mysql url: %w", err)
		}
		mc.User = u.User.Username()
		mc.Passwd, _ = u.User.Password()
		host, port := u.Hostname(), u.Port()
		if port == "" {
			port = "3306"
		}
		mc.Addr = net.JoinHostPort(host, port)
		mc.DBName = strings.TrimPrefix(u.Path, "/")
	}
	return mc.FormatDSN(), nil
}

// PostgresDSN returns the configured URL or a keyword/value DSN built from
// the discrete fields.
func PostgresDSN(cfg config.DatabaseConfig) string {
	if cfg.URL != "" {
		return cfg.URL
	}
	parts := []string{
		"host=" + cfg.Host,
		"port=" + strconv.Itoa(cfg.Port),
		"dbname=" + cfg.Name,
	}
	if cfg.User != "" {
		parts = append(parts, "user="+cfg.User)
	}
	if cfg.Password != "" {
		parts = append(parts, "password="+cfg.Password)
	}
	return strings.Join(parts, " ")
}

// ConnectAdmin opens a MySQL connection without selecting a database, used
// for CREATE DATABASE.
func ConnectAdmin(cfg config.DatabaseConfig) (*gorm.DB, error) {
	admin := cfg
	admin.Name = ""
	if admin.URL != "" {
		if u, err := url.Parse(admin.URL); err == nil {
			u.Path = "/"
			admin.URL = u.String()
		}
	}
	dsn, err := MySQLDSN(admin)
	if err != nil {
		return nil, err
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("db: admin connect to %s: %w", cfg.Host, err)
	}
	return db, nil
}

// CreateDatabase creates the named MySQL database if it doesn't already
// exist.
func CreateDatabase(adminDB *gorm.DB, name string) error {
	sql := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", name)
	if err := adminDB.Exec(sql).Error; err != nil {
		return fmt.Errorf("db: create database %s: %w", name, err)
	}
	return nil
}

// Close releases the underlying connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db: close: %w", err)
	}
	return sqlDB.Close()
}
