package export

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/go-co-op/gocron"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/app"
	"github.com/shrimpsizemoose/lektion/internal/ledger"
	"github.com/shrimpsizemoose/lektion/internal/store"
)

// GSheetExporter pushes per-student attendance percentages for the
// current month into class spreadsheets on a cron schedule.
type GSheetExporter struct {
	config    *app.Config
	store     store.ScoreStore
	ledger    *ledger.Ledger
	scheduler *gocron.Scheduler
}

// exportJob is one scheduled export: a class, its sheet config, and
// the sheets service built from that config's own credentials file.
// Jobs never share a service, so per-sheet credentials stay correct.
type exportJob struct {
	classID int64
	cfg     app.GSheetConfig
	svc     *sheets.Service
}

type serviceFactory func(ctx context.Context, credentialsPath string) (*sheets.Service, error)

func NewGSheetExporter(config *app.Config, scoreStore store.ScoreStore, ldgr *ledger.Ledger) (*GSheetExporter, error) {
	ctx := context.Background()
	scheduler := gocron.NewScheduler(time.UTC)

	exporter := &GSheetExporter{
		config:    config,
		store:     scoreStore,
		ledger:    ldgr,
		scheduler: scheduler,
	}

	jobs, err := buildJobs(ctx, config, func(ctx context.Context, credentialsPath string) (*sheets.Service, error) {
		return sheets.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	})
	if err != nil {
		return nil, err
	}

	for _, job := range jobs {
		job := job
		_, err := scheduler.Cron(job.cfg.Schedule).Do(func() {
			if err := exporter.export(job); err != nil {
				logger.Error.Printf("Export failed for class %d: %v", job.classID, err)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to schedule export: %w", err)
		}
	}

	scheduler.StartAsync()
	return exporter, nil
}

// buildJobs resolves the gsheet config map into one job per sheet
// config, each with its own sheets service.
func buildJobs(ctx context.Context, config *app.Config, newService serviceFactory) ([]exportJob, error) {
	var jobs []exportJob
	for classKey, configs := range config.GSheet {
		classID, err := strconv.ParseInt(classKey, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad gsheet class key %q: %w", classKey, err)
		}

		for _, cfg := range configs {
			svc, err := newService(ctx, cfg.CredentialsPath)
			if err != nil {
				return nil, fmt.Errorf("failed to create sheets service: %w", err)
			}
			jobs = append(jobs, exportJob{classID: classID, cfg: cfg, svc: svc})
		}
	}
	return jobs, nil
}

// export matches sheet rows to students by name and writes this
// month's attendance percentage next to each.
func (e *GSheetExporter) export(job exportJob) error {
	classID, cfg := job.classID, job.cfg
	readRange := fmt.Sprintf("%s!%s", cfg.SheetName, cfg.StudentsRange)
	resp, err := job.svc.Spreadsheets.Values.Get(cfg.SheetID, readRange).Do()
	if err != nil {
		return fmt.Errorf("failed to read students: %w", err)
	}

	studentRows := make(map[string]int)
	for i, row := range resp.Values {
		if len(row) > 0 {
			name := row[0].(string)
			studentRows[name] = i + 4 // Assuming start from row 4
		}
	}

	students, err := e.store.ListClassStudents(classID)
	if err != nil {
		return fmt.Errorf("failed to list students: %w", err)
	}

	now := time.Now().UTC()
	report := make(map[string]float64)
	attendanceName := e.config.Report.AttendanceCriterion

	for _, student := range students {
		row, ok := studentRows[student.Name]
		if !ok {
			continue
		}

		monthly, err := e.ledger.MonthlyReport(student.ID, int(now.Month()), now.Year())
		if err != nil {
			logger.Error.Printf("Monthly report failed for student %d: %v", student.ID, err)
			continue
		}

		var value interface{} = ""
		if monthly != nil {
			value = monthly[attendanceName]
			report[student.Name] = monthly[attendanceName]
		}

		updateRange := fmt.Sprintf("%s!%s%d", cfg.SheetName, cfg.ReportColumn, row)
		_, err = job.svc.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
			&sheets.ValueRange{Values: [][]interface{}{{value}}}).ValueInputOption("RAW").Do()
		if err != nil {
			return fmt.Errorf("failed to update cell: %w", err)
		}
	}

	logger.Info.Printf("Exported %d attendance rows for class %d", len(report), classID)

	// Update timestamp
	if len(e.config.EmojiVariants) > 0 {
		emoji := e.config.EmojiVariants[rand.Intn(len(e.config.EmojiVariants))]
		timestamp := fmt.Sprintf("UPD: %s %s", time.Now().Format("2 January 15:04"), emoji)

		updateRange := fmt.Sprintf("%s!A1", cfg.SheetName)
		_, err = job.svc.Spreadsheets.Values.Update(cfg.SheetID, updateRange,
			&sheets.ValueRange{Values: [][]interface{}{{timestamp}}}).ValueInputOption("RAW").Do()
		if err != nil {
			return fmt.Errorf("failed to update timestamp: %w", err)
		}
	}

	return nil
}
