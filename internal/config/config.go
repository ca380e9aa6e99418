package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables

    "github.com/joho/godotenv" // godotenv loads an optional .env file into the environment
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Database settings depend on DBDriver: MySQL needs
// the DB* connection fields, SQLite only SQLitePath.
type Config struct {
    Env    string // application environment (e.g. "dev", "prod")
    Port   string // HTTP port to listen on

    DBDriver   string // "mysql" (default) or "sqlite"
    DBUser     string // database username
    DBPass     string // database password (optional)
    DBHost     string // database host address
    DBPort     string // database port number
    DBName     string // database name
    SQLitePath string // SQLite file when DBDriver is sqlite

    JWTSecret         string // secret used to sign admin JWTs (optional)
    AccessTTLMin      int    // admin access token time-to-live in minutes
    AdminUser         string // admin login name
    AdminPasswordHash string // bcrypt hash of the admin password
    AdminAPIKey       string // static key accepted in X-Admin-Key (optional)

    IdentityMode     string // roll_branch | roll_branch_year
    IdentityMigrate  bool   // allow re-keying stored rows when the identity mode changes
    RollFormat       string // plain | padded
    RollPadWidth     int    // zero-pad width for the padded format
    MaxRangeSize     int    // upper bound on rolls generated by one add-range call
    AuditConsumer    bool   // run the RabbitMQ audit consumer in-process
    AuditLogPath     string // file the audit consumer appends to
    CORSAllowOrigins string // comma separated list of allowed origins
}

// Load reads an optional .env file, then configuration values from
// environment variables, and returns a Config.  Required variables are
// enforced by must() and missing values cause the program to exit with a
// fatal log message.
func Load() Config {
    if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
        log.Printf("config: .env not loaded: %v", err)
    }

    cfg := Config{
        Env:      envStr("APP_ENV", "dev"),    // environment (dev/test/prod)
        Port:     envStr("APP_PORT", "5000"),  // port to bind the HTTP server
        DBDriver: envStr("DB_DRIVER", "mysql"), // storage engine

        JWTSecret:         os.Getenv("JWT_SECRET"),              // secret used for signing JWTs
        AccessTTLMin:      envInt("ACCESS_TOKEN_TTL_MIN", 60),   // TTL for access tokens in minutes
        AdminUser:         envStr("ADMIN_USER", "admin"),        // admin login name
        AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),     // bcrypt hash, empty disables login
        AdminAPIKey:       os.Getenv("ADMIN_API_KEY"),           // empty disables key auth

        IdentityMode:     envStr("IDENTITY_MODE", "roll_branch"),
        IdentityMigrate:  envBool("IDENTITY_MIGRATE", false),
        RollFormat:       envStr("ROLL_FORMAT", "plain"),
        RollPadWidth:     envInt("ROLL_PAD_WIDTH", 3),
        MaxRangeSize:     envInt("MAX_RANGE_SIZE", 5000),
        AuditConsumer:    envBool("AUDIT_CONSUMER_ENABLED", false),
        AuditLogPath:     envStr("AUDIT_LOG_PATH", "logs/seat_audit.log"),
        CORSAllowOrigins: envStr("CORS_ALLOW_ORIGINS", "*"),
    }
    switch cfg.DBDriver {
    case "sqlite", "sqlite3":
        cfg.SQLitePath = envStr("SQLITE_PATH", "seats.db")
    default:
        cfg.DBUser = must("DB_USER")     // database user
        cfg.DBPass = os.Getenv("DB_PASS") // database password (empty allowed)
        cfg.DBHost = must("DB_HOST")     // database host
        cfg.DBPort = must("DB_PORT")     // database port
        cfg.DBName = must("DB_NAME")     // database name
    }
    return cfg
}

// DBConfigured reports whether enough settings exist to reach a database.
func (c Config) DBConfigured() bool {
    if c.DBDriver == "sqlite" || c.DBDriver == "sqlite3" {
        return c.SQLitePath != ""
    }
    return c.DBHost != "" && c.DBName != ""
}

// AdminAuthConfigured reports whether any admin credential is set up.
func (c Config) AdminAuthConfigured() bool {
    return c.AdminAPIKey != "" || (c.JWTSecret != "" && c.AdminPasswordHash != "")
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}
