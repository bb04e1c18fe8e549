package backend

import (
	"errors"
	"fmt"
	"strings"

	"gastos/internal/config"
)

// FromAppConfig picks the store and event settings out of the process config.
func FromAppConfig(appConfig *config.Config) (Config, error) {
	if appConfig == nil {
		return Config{}, errors.New("app config is nil")
	}
	backendType, err := ParseBackendType(appConfig.DataBackend)
	if err != nil {
		return Config{}, err
	}
	return Config{
		Type:         backendType,
		SQLiteDBPath: appConfig.SQLiteDBPath,
		DatabaseURL:  appConfig.DatabaseURL,
		AMQPURL:      appConfig.AMQPURL,
		AMQPExchange: appConfig.AMQPExchange,
		AMQPQueue:    appConfig.AMQPQueue,
	}, nil
}

// ParseBackendType accepts the DATA_BACKEND names in any case.
func ParseBackendType(s string) (BackendType, error) {
	bt := BackendType(strings.ToLower(strings.TrimSpace(s)))
	if !bt.IsValid() {
		return "", fmt.Errorf("%w %q (supported: %s, %s)", ErrInvalidBackend, s, SQLiteBackend, PostgresBackend)
	}
	return bt, nil
}

// Validate checks that the chosen store has its location and that events,
// when enabled, have somewhere to go.
func (c Config) Validate() error {
	var errs []error
	switch c.Type {
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			errs = append(errs, errors.New("SQLITE_DB_PATH is required for the sqlite backend"))
		}
	case PostgresBackend:
		if c.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required for the postgres backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidBackend, c.Type))
	}

	switch {
	case c.AMQPURL == "" && c.RequireEvents:
		errs = append(errs, errors.New("AMQP_URL is required"))
	case c.AMQPURL != "" && (c.AMQPExchange == "" || c.AMQPQueue == ""):
		errs = append(errs, errors.New("AMQP_EXCHANGE and AMQP_QUEUE are required when AMQP_URL is set"))
	}
	return errors.Join(errs...)
}
