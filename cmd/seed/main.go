// Seeder command for populating the default criteria catalog and,
// optionally, demo students for local testing.
//
// Usage:
//   go run cmd/seed/main.go --config config.toml --students 10 --class 1
package main

import (
	"flag"
	"fmt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/app"
	"github.com/shrimpsizemoose/lektion/internal/models"
)

var defaultCriteria = []models.Criterion{
	{Name: "attendance", Label: "Присутствие"},
	{Name: "time", Label: "Пришёл вовремя"},
	{Name: "uniform", Label: "Форма"},
	{Name: "participation", Label: "Работа на занятии"},
}

func main() {
	configPath := flag.String("config", "config.toml", "Path to config file")
	students := flag.Int("students", 0, "Number of demo students to seed")
	classID := flag.Int64("class", 1, "Class id for demo students")
	flag.Parse()

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	scoreStore, err := app.NewStore(cfg.Database.DSN, cfg.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to init store: %v", err)
	}
	defer scoreStore.Close()

	for _, criterion := range defaultCriteria {
		if err := scoreStore.CreateCriterion(criterion); err != nil {
			logger.Error.Fatalf("Failed to seed criterion %s: %v", criterion.Name, err)
		}
		logger.Info.Printf("Seeded criterion %s (%s)", criterion.Name, criterion.Label)
	}

	for i := 1; i <= *students; i++ {
		student := models.Student{
			Name:    fmt.Sprintf("student-%02d", i),
			ClassID: *classID,
			Active:  true,
		}
		if err := scoreStore.CreateStudent(student); err != nil {
			logger.Error.Fatalf("Failed to seed student %s: %v", student.Name, err)
		}
	}
	if *students > 0 {
		logger.Info.Printf("Seeded %d demo students into class %d", *students, *classID)
	}
}
