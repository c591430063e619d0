// Package database provides database connection and migration functionality.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"net/url"
	"strings"
	"sync"

	"feedbackapp/internal/config"
	"feedbackapp/internal/observability"
	contextutils "feedbackapp/internal/utils"

	"github.com/lib/pq"

	"github.com/golang-migrate/migrate/v4"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"go.nhat.io/otelsql"

	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

//go:embed schema.sql
var schemaSQL string

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Manager handles database operations with proper logging
type Manager struct {
	logger *observability.Logger
}

var (
	otelDriverNameCache string
	otelDriverOnce      sync.Once
	otelDriverErr       error
)

// NewManager creates a new database manager with the provided logger
func NewManager(logger *observability.Logger) *Manager {
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &Manager{
		logger: logger,
	}
}

// DefaultDatabaseConfig returns the default pool configuration for url
func DefaultDatabaseConfig(databaseURL string) config.DatabaseConfig {
	return config.DatabaseConfig{
		URL:             databaseURL,
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: config.DatabaseConnMaxLifetime,
	}
}

// InitDBWithConfig opens an instrumented connection pool, applies schema.sql and runs
// pending golang-migrate migrations.
func (dm *Manager) InitDBWithConfig(cfg config.DatabaseConfig) (result0 *sql.DB, err error) {
	ctx, span := observability.TraceDatabaseFunction(context.Background(), "InitDBWithConfig",
		attribute.String("db.name", extractDatabaseName(cfg.URL)),
		attribute.String("db.system", "postgresql"),
		attribute.Int("db.max_open_conns", cfg.MaxOpenConns),
		attribute.Int("db.max_idle_conns", cfg.MaxIdleConns),
		attribute.String("db.conn_max_lifetime", cfg.ConnMaxLifetime.String()),
	)
	defer observability.FinishSpan(span, &err)

	db, err := dm.InitDBWithoutMigrations(ctx, cfg)
	if err != nil {
		return nil, err
	}

	if err := dm.RunMigrations(ctx, db, cfg.URL); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			dm.logger.Error(ctx, "Failed to close database after migration failure", closeErr)
		}
		return nil, err
	}

	return db, nil
}

// extractDatabaseName extracts the database name from a PostgreSQL connection string
func extractDatabaseName(databaseURL string) string {
	if u, err := url.Parse(databaseURL); err == nil && u.Scheme != "" {
		if dbName := strings.TrimPrefix(u.Path, "/"); dbName != "" {
			return dbName
		}
	}

	// key=value DSN, e.g. "host=localhost dbname=feedback sslmode=disable"
	for _, part := range strings.Fields(databaseURL) {
		if name, ok := strings.CutPrefix(part, "dbname="); ok && name != "" {
			return name
		}
	}

	return "feedback_db"
}

// InitDBWithoutMigrations initializes and returns a database connection without running migrations
func (dm *Manager) InitDBWithoutMigrations(ctx context.Context, cfg config.DatabaseConfig) (result0 *sql.DB, err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "InitDBWithoutMigrations",
		attribute.String("db.name", extractDatabaseName(cfg.URL)),
	)
	defer observability.FinishSpan(span, &err)

	if cfg.URL == "" {
		return nil, contextutils.NewAppError(contextutils.ErrorCodeDatabaseConnection, contextutils.SeverityFatal,
			"Database URL is not configured", "set database.url or DATABASE_URL")
	}

	// Register the OpenTelemetry SQL driver once per process and reuse the name
	otelDriverOnce.Do(func() {
		otelDriverNameCache, otelDriverErr = otelsql.Register("postgres",
			otelsql.WithDatabaseName(extractDatabaseName(cfg.URL)),
			otelsql.TraceQueryWithoutArgs(),
			otelsql.WithSystem(semconv.DBSystemPostgreSQL),
			otelsql.TraceRowsAffected(),
		)
	})
	if otelDriverErr != nil {
		return nil, contextutils.WrapError(otelDriverErr, "failed to register otelsql driver")
	}

	db, err := sql.Open(otelDriverNameCache, cfg.URL)
	if err != nil {
		return nil, contextutils.WrapError(err, "failed to open database connection")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			dm.logger.Error(ctx, "Failed to close database connection after ping failure", closeErr)
		}
		return nil, contextutils.NewAppErrorWithCause(contextutils.ErrorCodeDatabaseConnection, contextutils.SeverityError,
			"failed to ping database", err.Error(), err)
	}

	dm.logger.Info(ctx, "Database connection established", map[string]interface{}{
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})

	return db, nil
}

// RunMigrations executes the embedded schema.sql and then any pending migrations
func (dm *Manager) RunMigrations(ctx context.Context, db *sql.DB, databaseURL string) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "RunMigrations",
		attribute.String("db.system", "postgresql"),
	)
	defer observability.FinishSpan(span, &err)

	if err := dm.runApplicationSchema(ctx, db); err != nil {
		return contextutils.WrapError(err, "failed to run application schema")
	}
	dm.logger.Info(ctx, "Application schema applied successfully")

	if err := dm.runGolangMigrate(ctx, databaseURL); err != nil {
		return contextutils.WrapError(err, "failed to run golang-migrate migrations")
	}

	dm.logger.Info(ctx, "Database migrations completed successfully")
	return nil
}

// runGolangMigrate applies the embedded migrations. It uses its own uninstrumented
// connection because the migrate postgres driver closes the pool it is given.
func (dm *Manager) runGolangMigrate(ctx context.Context, databaseURL string) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "runGolangMigrate",
		attribute.String("migration.type", "golang_migrate"),
	)
	defer observability.FinishSpan(span, &err)

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return contextutils.WrapError(err, "failed to open embedded migrations")
	}

	migrationDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return contextutils.WrapError(err, "failed to open migration connection")
	}

	driver, err := migratepostgres.WithInstance(migrationDB, &migratepostgres.Config{})
	if err != nil {
		_ = migrationDB.Close()
		return contextutils.WrapError(err, "failed to create migrate postgres driver")
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		_ = driver.Close()
		return contextutils.WrapError(err, "failed to initialize golang-migrate")
	}
	defer func() {
		if sourceErr, dbErr := m.Close(); sourceErr != nil || dbErr != nil {
			dm.logger.Error(ctx, "Error closing migration", errors.Join(sourceErr, dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		dm.logger.Info(ctx, "No new golang-migrate migrations to apply")
		return nil
	}
	if err != nil {
		return contextutils.WrapError(err, "golang-migrate up failed")
	}

	version, _, _ := m.Version()
	span.SetAttributes(attribute.Int("migration.version", int(version)))
	dm.logger.Info(ctx, "golang-migrate migrations applied successfully", map[string]interface{}{"version": version})
	return nil
}

// runApplicationSchema executes the embedded schema.sql, tables first and indexes last
func (dm *Manager) runApplicationSchema(ctx context.Context, db *sql.DB) (err error) {
	ctx, span := observability.TraceDatabaseFunction(ctx, "runApplicationSchema",
		attribute.Int("schema.file.size", len(schemaSQL)),
	)
	defer observability.FinishSpan(span, &err)

	statements := parseSchemaStatements(schemaSQL)
	span.SetAttributes(attribute.Int("schema.statements.count", len(statements)))

	var indexStatements []string
	for _, statement := range statements {
		if strings.HasPrefix(strings.ToUpper(statement), "CREATE INDEX") ||
			strings.HasPrefix(strings.ToUpper(statement), "CREATE UNIQUE INDEX") {
			indexStatements = append(indexStatements, statement)
			continue
		}

		if _, execErr := db.ExecContext(ctx, statement); execErr != nil && !isAlreadyExistsError(execErr) {
			return contextutils.WrapErrorf(execErr, "failed to execute schema statement: %s", statement)
		}
	}

	for _, statement := range indexStatements {
		if _, execErr := db.ExecContext(ctx, statement); execErr != nil && !isAlreadyExistsError(execErr) {
			return contextutils.WrapErrorf(execErr, "failed to execute index statement: %s", statement)
		}
	}

	return nil
}

// parseSchemaStatements strips comments from a schema file and splits it into statements
func parseSchemaStatements(schema string) []string {
	var cleanedLines []string
	inComment := false

	for _, line := range strings.Split(schema, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/*") {
			inComment = !strings.HasSuffix(line, "*/")
			continue
		}
		if inComment {
			if strings.HasSuffix(line, "*/") {
				inComment = false
			}
			continue
		}

		if strings.HasPrefix(line, "--") {
			continue
		}
		if commentIndex := strings.Index(line, "--"); commentIndex != -1 {
			line = strings.TrimSpace(line[:commentIndex])
		}

		cleanedLines = append(cleanedLines, line)
	}

	var result []string
	for _, stmt := range strings.Split(strings.Join(cleanedLines, " "), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			result = append(result, stmt)
		}
	}
	return result
}

// PostgreSQL error codes used by the stores
const (
	pgUniqueViolation = "23505"
	pgDuplicateTable  = "42P07"
	pgDuplicateObject = "42710"
	pgCheckViolation  = "23514"
	pgInvalidTextRepr = "22P02"
)

func pqCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}

// isAlreadyExistsError reports a duplicate table, index or object error
func isAlreadyExistsError(err error) bool {
	switch pqCode(err) {
	case pgDuplicateTable, pgDuplicateObject:
		return true
	}
	return strings.Contains(err.Error(), "already exists")
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pqCode(err) == pgUniqueViolation
}

// IsCheckViolation reports whether err is a PostgreSQL CHECK constraint violation.
func IsCheckViolation(err error) bool {
	return pqCode(err) == pgCheckViolation
}

// IsInvalidTextRepresentation reports whether PostgreSQL rejected a value's text form,
// e.g. a malformed UUID.
func IsInvalidTextRepresentation(err error) bool {
	return pqCode(err) == pgInvalidTextRepr
}
