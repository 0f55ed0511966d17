package database

import (
	"chatrooms-backend/internal/models"
	"database/sql"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func setPragmaValues(db *sql.DB) error {
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return err
	}

	// these next 2 extremely speed up performance of sqlite
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return err
	}

	if _, err := db.Exec("PRAGMA synchronous = normal"); err != nil {
		return err
	}

	return nil
}

func logPragmaValues(db *sql.DB, sugar *zap.SugaredLogger) error {
	var journalModeValue string
	err := db.QueryRow("PRAGMA journal_mode").Scan(&journalModeValue)
	if err != nil {
		return err
	}

	var synchronousValue int
	err = db.QueryRow("PRAGMA synchronous").Scan(&synchronousValue)
	if err != nil {
		return err
	}

	sugar.Debugf("sqlite PRAGMA journal_mode: %s, synchronous: %d", journalModeValue, synchronousValue)
	return nil
}

// Setup opens sqlite when the server is self contained, mysql/mariadb
// otherwise, and creates the tables.
func Setup(cfg *models.ConfigFile, sugar *zap.SugaredLogger) (*sql.DB, error) {
	if cfg.SelfContained {
		sugar.Infof("Connecting to database sqlite at %s...", cfg.SqlitePath)
		return OpenSqlite(cfg.SqlitePath, sugar)
	}

	sugar.Info("Connecting to database mysql/mariadb...")

	db, err := sql.Open("mysql", fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&timeout=10s", cfg.DbUser, cfg.DbPassword, cfg.DbAddress, cfg.DbPort, cfg.DbDatabase))
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)

	err = db.Ping()
	if err != nil {
		db.Close()
		return nil, err
	}

	err = setupTables(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// OpenSqlite opens the sqlite file at path, ":memory:" works for tests.
func OpenSqlite(path string, sugar *zap.SugaredLogger) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// there can be sqlite busy errors if this is not set to 1,
	// an in memory database also only lives as long as its single connection
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	err = setPragmaValues(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	err = logPragmaValues(db, sugar)
	if err != nil {
		db.Close()
		return nil, err
	}

	err = setupTables(db)
	if err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

func setupTables(db *sql.DB) error {
	var err error

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS users (
				id BIGINT PRIMARY KEY,
				email VARCHAR(64) NOT NULL UNIQUE,
				username VARCHAR(32) NOT NULL UNIQUE,
				display_name VARCHAR(64) NOT NULL,
				password BINARY(60) NOT NULL
			);
		`)
	if err != nil {
		return err
	}

	// name_key is the lower cased name, it makes room names unique regardless of case
	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS rooms (
				id BIGINT PRIMARY KEY,
				name VARCHAR(64) NOT NULL,
				name_key VARCHAR(64) NOT NULL UNIQUE,
				creator VARCHAR(64) NOT NULL,
				created_at BIGINT NOT NULL
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS messages (
				id BIGINT PRIMARY KEY,
				room VARCHAR(64) NOT NULL,
				username VARCHAR(32) NOT NULL,
				display_name VARCHAR(64) NOT NULL,
				body TEXT NOT NULL,
				filename VARCHAR(128) NOT NULL,
				original_name VARCHAR(255) NOT NULL,
				path VARCHAR(255) NOT NULL,
				type VARCHAR(8) NOT NULL,
				time_str VARCHAR(16) NOT NULL,
				date_str VARCHAR(16) NOT NULL,
				created_at BIGINT NOT NULL
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS active_users (
				connection_id BIGINT PRIMARY KEY,
				username VARCHAR(32) NOT NULL,
				display_name VARCHAR(64) NOT NULL,
				room VARCHAR(64) NOT NULL,
				joined_at BIGINT NOT NULL
			);
		`)
	if err != nil {
		return err
	}

	_, err = db.Exec(`
			CREATE TABLE IF NOT EXISTS reset_links (
				token VARCHAR(36) PRIMARY KEY,
				username VARCHAR(32) NOT NULL,
				created_at BIGINT NOT NULL
			);
		`)
	if err != nil {
		return err
	}

	return nil
}
