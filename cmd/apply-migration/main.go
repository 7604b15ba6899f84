package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	_ "github.com/lib/pq"

	"greenhouse-data/internal/config"
	"greenhouse-data/pkg/database"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatalf("Usage: %s <migration_file.sql>", os.Args[0])
	}

	migrationFile := os.Args[1]
	sqlContent, err := os.ReadFile(migrationFile)
	if err != nil {
		log.Fatalf("Failed to read migration file: %v", err)
	}

	cfg := config.Load()
	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	statements := splitStatements(string(sqlContent))
	for i, stmt := range statements {
		fmt.Printf("Executing statement %d/%d...\n", i+1, len(statements))
		if _, err := db.Exec(stmt); err != nil {
			log.Fatalf("Failed to execute statement %d: %v\nStatement: %s", i+1, err, stmt[:min(100, len(stmt))])
		}
		fmt.Printf("✅ Statement %d executed successfully\n\n", i+1)
	}

	fmt.Println("✅ Migration completed successfully!")
}

// splitStatements 按分号切分SQL文件
// 注释行逐行剥离，避免语句前的注释把整条语句一起丢掉
func splitStatements(sqlContent string) []string {
	var statements []string
	for _, chunk := range strings.Split(sqlContent, ";") {
		var lines []string
		for _, line := range strings.Split(chunk, "\n") {
			trimmed := strings.TrimSpace(line)
			if trimmed == "" || strings.HasPrefix(trimmed, "--") {
				continue
			}
			lines = append(lines, line)
		}
		stmt := strings.TrimSpace(strings.Join(lines, "\n"))
		if stmt == "" {
			continue
		}
		statements = append(statements, stmt)
	}
	return statements
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
