package datastore

import (
	"fmt"
	"net"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/artidentifier/artid/internal/conf"
	"github.com/artidentifier/artid/internal/errors"
)

// Backend identifies a database product.
type Backend string

const (
	BackendSQLite   Backend = "sqlite"
	BackendPostgres Backend = "postgres"
	BackendMySQL    Backend = "mysql"
)

// Embedded reports whether the backend runs in-process on a single file.
func (b Backend) Embedded() bool {
	return b == BackendSQLite
}

const (
	defaultPostgresPort = "5432"
	defaultMySQLPort    = "3306"
	memoryDatabase      = ":memory:"
)

// Target is a parsed connection URL.
type Target struct {
	Backend Backend
	// DSN is the driver specific connection string. It carries credentials.
	DSN string
	// Path is the database file for embedded backends, empty for in-memory.
	Path string
	// Redacted is the connection URL with the password masked.
	Redacted string
}

// Dialector returns the GORM dialector for the target.
func (t Target) Dialector() gorm.Dialector {
	switch t.Backend {
	case BackendMySQL:
		return mysql.Open(t.DSN)
	case BackendPostgres:
		return postgres.Open(t.DSN)
	default:
		return sqlite.Open(t.DSN)
	}
}

// ResolveConnectionString returns the configured URL when set, otherwise one
// composed from the discrete fields. The password segment is omitted when the
// password is empty.
func ResolveConnectionString(db conf.DatabaseSettings) string {
	if db.URL != "" {
		return db.URL
	}

	scheme := db.Driver
	if scheme == "" {
		scheme = conf.DefaultDatabaseDriver
	}

	if baseScheme(scheme) == string(BackendSQLite) {
		return scheme + ":///" + db.Name
	}

	u := url.URL{
		Scheme: scheme,
		Path:   "/" + db.Name,
	}
	switch {
	case db.User != "" && db.Password != "":
		u.User = url.UserPassword(db.User, db.Password)
	case db.User != "":
		u.User = url.User(db.User)
	}
	u.Host = db.Host
	if db.Port > 0 {
		u.Host = net.JoinHostPort(db.Host, strconv.Itoa(db.Port))
	}
	return u.String()
}

// baseScheme strips a "+driver" suffix, so postgresql+psycopg2 becomes postgresql.
func baseScheme(scheme string) string {
	scheme = strings.ToLower(scheme)
	if i := strings.IndexByte(scheme, '+'); i >= 0 {
		return scheme[:i]
	}
	return scheme
}

// ParseTarget maps a connection URL to a backend and a driver DSN.
// Accepted schemes are sqlite, postgres, postgresql and mysql, each with an
// optional "+driver" suffix. sqlite:///relative.db and sqlite:////abs/path.db
// name files; sqlite:// and sqlite:///:memory: open an in-memory database.
func ParseTarget(rawURL string) (Target, error) {
	scheme, rest, ok := strings.Cut(rawURL, "://")
	if !ok {
		return Target{}, targetError(rawURL, "missing scheme")
	}

	switch baseScheme(scheme) {
	case "sqlite":
		return parseSQLite(rest), nil
	case "postgres", "postgresql":
		return parsePostgres(rest)
	case "mysql":
		return parseMySQL(rawURL)
	default:
		return Target{}, targetError(rawURL, fmt.Sprintf("unsupported scheme %q", scheme))
	}
}

func parseSQLite(rest string) Target {
	path, query, _ := strings.Cut(rest, "?")
	path = strings.TrimPrefix(path, "/")

	params := url.Values{}
	if query != "" {
		if parsed, err := url.ParseQuery(query); err == nil {
			params = parsed
		}
	}
	params.Set("_foreign_keys", "on")
	if params.Get("_busy_timeout") == "" {
		params.Set("_busy_timeout", "5000")
	}

	t := Target{Backend: BackendSQLite}
	if path == "" || path == memoryDatabase {
		t.DSN = memoryDatabase + "?" + params.Encode()
		t.Redacted = "sqlite:///" + memoryDatabase
		return t
	}

	if params.Get("_journal_mode") == "" {
		params.Set("_journal_mode", "WAL")
	}
	t.Path = filepath.Clean(path)
	t.DSN = t.Path + "?" + params.Encode()
	t.Redacted = "sqlite:///" + path
	return t
}

func parsePostgres(rest string) (Target, error) {
	raw := "postgres://" + rest
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, targetError(raw, err.Error())
	}
	if u.Host == "" {
		return Target{}, targetError(raw, "missing host")
	}
	if u.Port() == "" {
		u.Host = net.JoinHostPort(u.Hostname(), defaultPostgresPort)
	}
	return Target{
		Backend:  BackendPostgres,
		DSN:      u.String(),
		Redacted: u.Redacted(),
	}, nil
}

func parseMySQL(raw string) (Target, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, targetError(raw, err.Error())
	}
	if u.Host == "" {
		return Target{}, targetError(raw, "missing host")
	}

	cfg := mysqldriver.NewConfig()
	cfg.Net = "tcp"
	cfg.Addr = u.Host
	if u.Port() == "" {
		cfg.Addr = net.JoinHostPort(u.Hostname(), defaultMySQLPort)
	}
	cfg.DBName = strings.TrimPrefix(u.Path, "/")
	if u.User != nil {
		cfg.User = u.User.Username()
		cfg.Passwd, _ = u.User.Password()
	}
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	for key, values := range u.Query() {
		if len(values) > 0 {
			cfg.Params[key] = values[0]
		}
	}

	u.Scheme = string(BackendMySQL)
	return Target{
		Backend:  BackendMySQL,
		DSN:      cfg.FormatDSN(),
		Redacted: u.Redacted(),
	}, nil
}

// targetError reports an unusable connection URL. The URL is scrubbed of
// credentials before it is attached.
func targetError(rawURL, reason string) error {
	return errors.Newf("invalid database url: %s", reason).
		Component("datastore").
		Category(errors.CategoryConnectivity).
		Context("url", errors.ScrubCredentials(rawURL)).
		Build()
}
