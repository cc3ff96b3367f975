package migrations

import (
	"context"
	"fmt"
	"strings"

	chstore "lightcurve-lab/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the DSN's database when missing, applies
// the embedded trial store schema and returns a connection to it.
func RunClickhouseMigrations(ctx context.Context, dsn string) (conn *chstore.Conn, err error) {
	cfg, err := chstore.ParseDSN(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.Database == "" {
		return nil, fmt.Errorf("clickhouse dsn for %s names no database", cfg.Addr)
	}
	if err := ensureDatabase(ctx, cfg); err != nil {
		return nil, err
	}

	files, err := load(ClickhouseFS, "clickhouse")
	if err != nil {
		return nil, err
	}
	conn, err = chstore.Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			conn.Close()
			conn = nil
		}
	}()

	for _, m := range files {
		stmts, err := splitStatements(m.sql)
		if err != nil {
			return nil, fmt.Errorf("split migration %s: %w", m.name, err)
		}
		// one statement per Exec
		for i, stmt := range stmts {
			if err := conn.Exec(ctx, stmt); err != nil {
				return nil, fmt.Errorf("apply migration %s statement %d: %w", m.name, i+1, err)
			}
		}
	}
	return conn, nil
}

// ensureDatabase creates cfg.Database through a connection to the server default.
func ensureDatabase(ctx context.Context, cfg chstore.Config) error {
	db := cfg.Database
	cfg.Database = ""
	admin, err := chstore.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer admin.Close()

	if err := admin.Exec(ctx, "CREATE DATABASE IF NOT EXISTS "+quoteIdent(db)); err != nil {
		return fmt.Errorf("create database %s: %w", db, err)
	}
	return nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// splitStatements splits SQL on semicolons after dropping "--" comment lines.
// Semicolons inside single-quoted literals are rejected since the split
// would cut them.
func splitStatements(input string) ([]string, error) {
	var filtered []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		filtered = append(filtered, line)
	}
	joined := strings.Join(filtered, "\n")

	inString := false
	for i := 0; i < len(joined); i++ {
		switch ch := joined[i]; {
		case ch == '\'' && i+1 < len(joined) && joined[i+1] == '\'':
			i++
		case ch == '\'':
			inString = !inString
		case ch == ';' && inString:
			return nil, fmt.Errorf("semicolon inside string literal at offset %d", i)
		}
	}

	var stmts []string
	for _, part := range strings.Split(joined, ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts, nil
}
