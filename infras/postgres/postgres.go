package postgres

//nolint:revive
import (
	"fmt"
	"net"
	"net/url"
	"time"

	"elc/config"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Connection splits traffic between a read replica and the primary. Writes
// and transactions always go to Write.
type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	name     string
	username string
	password string
	host     string
	port     string
	dbName   string
	sslMode  string
	timezone string
}

// New opens both pools. The returned cleanup closes them.
func New(config *config.Config) (*Connection, func()) {
	pg := config.DB.Postgres

	write := endpoint{
		name:     "write",
		username: pg.Write.Username,
		password: pg.Write.Password,
		host:     pg.Write.Host,
		port:     pg.Write.Port,
		dbName:   getDBName(config, pg.Write.Name),
		sslMode:  pg.Write.SSLMode,
		timezone: pg.Write.Timezone,
	}

	read := endpoint{
		name:     "read",
		username: pg.Read.Username,
		password: pg.Read.Password,
		host:     pg.Read.Host,
		port:     pg.Read.Port,
		dbName:   getDBName(config, pg.Read.Name),
		sslMode:  pg.Read.SSLMode,
		timezone: pg.Read.Timezone,
	}

	conn := &Connection{
		Read:  connect(config, read),
		Write: connect(config, write),
	}

	return conn, func() {
		if err := conn.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database connections")
		}
	}
}

func (c *Connection) Close() error {
	if err := c.Read.Close(); err != nil {
		return fmt.Errorf("failed to close read connection: %w", err)
	}

	if err := c.Write.Close(); err != nil {
		return fmt.Errorf("failed to close write connection: %w", err)
	}

	return nil
}

func getDBName(config *config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

// DSN builds the lib/pq connection URL for e.
func (e endpoint) DSN() string {
	query := url.Values{}
	if e.sslMode != "" {
		query.Set("sslmode", e.sslMode)
	}

	if e.timezone != "" {
		query.Set("timezone", e.timezone)
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(e.username, e.password),
		Host:     net.JoinHostPort(e.host, e.port),
		Path:     "/" + e.dbName,
		RawQuery: query.Encode(),
	}

	return dsn.String()
}

// connect retries until the database answers or MAX_RETRY attempts are used
// up, then stops the process.
func connect(config *config.Config, e endpoint) *sqlx.DB {
	pg := config.DB.Postgres
	attempts := max(pg.MaxRetry, 1)

	var lastErr error

	for retry := range attempts {
		sqlDB, err := sqlx.Connect("postgres", e.DSN())
		if err == nil {
			sqlDB.SetMaxOpenConns(pg.Pool.MaxOpen)
			sqlDB.SetMaxIdleConns(pg.Pool.MaxIdle)
			sqlDB.SetConnMaxLifetime(time.Duration(pg.Pool.MaxLifetimeMinutes) * time.Minute)

			log.Info().
				Str("name", e.name).
				Str("host", e.host).
				Str("port", e.port).
				Str("dbName", e.dbName).
				Msg("Connected to database")

			return sqlDB
		}

		lastErr = err

		log.Error().
			Err(err).
			Str("name", e.name).
			Str("host", e.host).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(pg.RetryWaitTime) * time.Second)
	}

	log.Fatal().Err(lastErr).Str("name", e.name).Msg("Giving up connecting to database")

	return nil
}
