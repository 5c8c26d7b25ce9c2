package database

import (
	"errors"
	"fmt"
	"time"

	sqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := mysqlDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// mysqlDSN builds the DSN through the driver's own config type so quoting
// and parameter encoding stay correct.
func mysqlDSN(cfg Config) (string, error) {
	if cfg.DSN != "" {
		return cfg.DSN, nil
	}
	if cfg.User == "" || cfg.Name == "" {
		return "", errors.New("mysql configuration requires user and database name")
	}

	host := cfg.Host
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port == 0 {
		port = 3306
	}

	driverCfg := sqldriver.NewConfig()
	driverCfg.User = cfg.User
	driverCfg.Passwd = cfg.Password
	driverCfg.Net = "tcp"
	driverCfg.Addr = fmt.Sprintf("%s:%d", host, port)
	driverCfg.DBName = cfg.Name
	driverCfg.ParseTime = true
	driverCfg.Loc = time.Local
	driverCfg.Params = map[string]string{"charset": "utf8mb4"}
	for key, value := range cfg.Options {
		driverCfg.Params[key] = value
	}

	return driverCfg.FormatDSN(), nil
}
