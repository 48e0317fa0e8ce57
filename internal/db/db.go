package db

import (
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/jeopardy-ctf/scoring-api/internal/config"
)

func gormConfig() *gorm.Config {
	return &gorm.Config{
		// Lets DAOs detect duplicate keys as gorm.ErrDuplicatedKey on both drivers.
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func PostgresDSN(conf *config.PostgresConfig) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
		conf.Host, conf.User, conf.Password, conf.DB, conf.Port, conf.SSLMode,
	)
}

func OpenPostgres(conf *config.PostgresConfig) (*gorm.DB, error) {
	return OpenPostgresWithURL(PostgresDSN(conf))
}

func OpenPostgresWithURL(url string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(url), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return configurePool(db)
}

func OpenMySQL(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(dsn), gormConfig())
	if err != nil {
		return nil, fmt.Errorf("gorm.Open -> %w", err)
	}

	return configurePool(db)
}

// Open picks the driver named in the config.
func Open(conf *config.AppConfig) (*gorm.DB, error) {
	switch conf.Database.Driver {
	case "mysql":
		return OpenMySQL(conf.MySQL.DSN)
	default:
		return OpenPostgres(conf.Postgres)
	}
}

func configurePool(db *gorm.DB) (*gorm.DB, error) {
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("db.DB -> %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	// Recycle connections before server-side idle timeouts close them.
	sqlDB.SetConnMaxLifetime(time.Hour)

	zap.L().Info("database connection pool configured")

	return db, nil
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("db.DB -> %w", err)
	}
	return sqlDB.Close()
}
