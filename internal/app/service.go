package app

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shrimpsizemoose/lektion/internal/catalog"
	"github.com/shrimpsizemoose/lektion/internal/ledger"
	"github.com/shrimpsizemoose/lektion/internal/store"
)

type Service struct {
	Config  *Config
	Store   store.ScoreStore
	Catalog *catalog.Catalog
	Ledger  *ledger.Ledger
	Auth    *Auth
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	scoreStore, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	auth, err := NewAuth(config)
	if err != nil {
		return nil, fmt.Errorf("failed to init auth: %w", err)
	}

	cat := catalog.New(scoreStore)

	return &Service{
		Config:  config,
		Store:   scoreStore,
		Catalog: cat,
		Ledger: ledger.New(
			scoreStore,
			cat,
			config.Report.AttendanceCriterion,
			config.LessonWeekday(),
		),
		Auth: auth,
	}, nil
}

func (s *Service) ValidateAuthAndTeacher(r *http.Request, teacher string) error {
	if !s.Config.Server.EnableAuth {
		return nil
	}

	authHeader := r.Header.Get(s.Auth.tokenHeader)
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return fmt.Errorf("Invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, "Bearer ")

	return s.Auth.ValidateToken(r.Context(), teacher, token)
}

func (s *Service) ValidateHeaders(headers map[string][]string) bool {
	for _, required := range s.Config.API.RequiredHeaders {
		value := headers[http.CanonicalHeaderKey(required.Name)]
		if len(value) == 0 || !strings.EqualFold(value[0], required.Value) {
			return false
		}
	}
	return true
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Auth.Close(); err != nil {
		errs = append(errs, fmt.Errorf("auth: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}
