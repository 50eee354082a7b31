package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/shrimpsizemoose/lektion/internal/app"
	"github.com/shrimpsizemoose/lektion/internal/handlers"
)

func main() {
	var configPath = flag.String("config", "config.toml", "Path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}
	defer service.Close()

	lessonHandler := handlers.NewLessonHandler(service)
	reportHandler := handlers.NewReportHandler(service)

	http.HandleFunc("POST /api/v1/classes/{class_id}/lessons", lessonHandler.HandleSubmitLesson)
	http.HandleFunc("GET /api/v1/classes/{class_id}/lessons/{date}", lessonHandler.HandleGetLessonScores)
	http.HandleFunc("DELETE /api/v1/classes/{class_id}/lessons/{date}", lessonHandler.HandleDeleteLesson)
	http.HandleFunc("GET /api/v1/students/{student_id}/report", reportHandler.HandleMonthlyReport)
	http.HandleFunc("GET /api/v1/students/{student_id}/attendance", reportHandler.HandleStudentAttendance)
	http.HandleFunc("GET /api/v1/classes/{class_id}/attendance", reportHandler.HandleClassAttendance)
	http.HandleFunc("GET /api/v1/school/attendance", reportHandler.HandleSchoolAttendance)

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting lektion server on %s", service.Config.Server.Port)
	logger.Debug.Println("Requiring headers:")
	for _, h := range service.Config.API.RequiredHeaders {
		logger.Debug.Printf("  %s: %s", h.Name, h.Value)
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("Lektion server failed: %v", err)
	}
}
