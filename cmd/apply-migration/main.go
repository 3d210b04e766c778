package main

import (
	"context"
	"os"
	"strings"
	"time"

	"pmp-reports/common/database"
	commonlogger "pmp-reports/common/logger"
	"pmp-reports/internal/config"

	"go.uber.org/zap"
)

func main() {
	logger, err := commonlogger.NewDevelopmentLogger()
	if err != nil {
		logger = zap.NewNop()
	}
	defer logger.Sync()

	if len(os.Args) < 2 {
		logger.Fatal("Usage: apply-migration <migration_file.sql>")
	}

	migrationFile := os.Args[1]
	sqlContent, err := os.ReadFile(migrationFile)
	if err != nil {
		logger.Fatal("Failed to read migration file", zap.String("file", migrationFile), zap.Error(err))
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		logger.Fatal("Cannot connect to database", zap.Error(err))
	}
	defer database.Close(db)

	logger.Info("Connected to database", zap.String("database", cfg.Database.Database))

	statements := splitStatements(string(sqlContent))
	for i, stmt := range statements {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		_, err := db.ExecContext(ctx, stmt)
		cancel()
		if err != nil {
			logger.Fatal("Failed to execute statement",
				zap.Int("statement", i+1),
				zap.String("sql", stmt[:min(100, len(stmt))]),
				zap.Error(err),
			)
		}
		logger.Info("Statement executed", zap.Int("statement", i+1), zap.Int("total", len(statements)))
	}

	logger.Info("Migration completed successfully", zap.String("file", migrationFile))
}

// splitStatements splits on ';' after dropping "--" comment lines
func splitStatements(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "--") {
			continue
		}
		lines = append(lines, line)
	}

	var out []string
	for _, stmt := range strings.Split(strings.Join(lines, "\n"), ";") {
		if stmt = strings.TrimSpace(stmt); stmt != "" {
			out = append(out, stmt)
		}
	}
	return out
}
