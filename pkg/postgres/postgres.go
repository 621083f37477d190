package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	DBName   string
	SSLMode  string
	TimeZone string
}

func (cfg Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		cfg.Host, cfg.Username, cfg.Password, cfg.DBName, cfg.Port, cfg.SSLMode, cfg.TimeZone)
}

func NewConnection(cfg Config, log *logrus.Entry) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		PrepareStmt: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(2)
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping %s@%s: %w", cfg.DBName, cfg.Host, err)
	}

	log.Infof("connected to postgres %s:%s/%s", cfg.Host, cfg.Port, cfg.DBName)

	return db, nil
}

// KeepAlive pings the pool every interval until ctx is done.
func KeepAlive(ctx context.Context, db *gorm.DB, interval time.Duration, log *logrus.Entry) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	healthy := true
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := sqlDB.PingContext(ctx)
			switch {
			case err != nil && healthy:
				log.Errorf("postgres ping failed: %v", err)
				healthy = false
			case err == nil && !healthy:
				log.Info("postgres connection restored")
				healthy = true
			}
		}
	}
}
