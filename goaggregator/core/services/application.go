package services

import (
	"PhoenixAggregator/goaggregator/core/store"
)

// Application wires the store, the orchestrator and the background helpers.
type Application struct {
	Store           *store.Store
	Aggregator      *Aggregator
	Validator       *ValidatorClient
	Scheduler       *Scheduler
	DepositListener *DepositListener
}

func NewApplication(config store.Config) *Application {
	s := store.NewStore(config)
	return buildApplication(s)
}

// NewApplicationWithStore exists so tests can wire a prepared store.
func NewApplicationWithStore(s *store.Store) *Application {
	return buildApplication(s)
}

func buildApplication(s *store.Store) *Application {
	validator := NewValidatorClient(s.Config.ValidatorURL, s.Config.ValidatorTimeout)
	checker := NewSubmissionChecker(s.Config.MinSubmissionValue, s.Config.MaxSubmissionValue)

	var custody = s.Config.Aggregator()
	var token TokenBalance
	if s.Eth != nil {
		token = s.Eth
		if s.KeyStore.HasAccounts() {
			custody = s.KeyStore.GetAccount().Address
		}
	}
	aggregator := NewAggregator(s, checker, validator, token, custody)
	if s.Eth != nil {
		aggregator.Payouts = s.Eth
		aggregator.Confirmer = s.Eth
	}

	return &Application{
		Store:           s,
		Aggregator:      aggregator,
		Validator:       validator,
		Scheduler:       NewScheduler(s.Config.FundsPollSchedule, aggregator),
		DepositListener: NewDepositListener(s, aggregator),
	}
}

func (app *Application) Start() error {
	app.Store.Start()
	if err := app.Scheduler.Start(); err != nil {
		return err
	}
	return app.DepositListener.Start()
}

func (app *Application) Stop() error {
	if err := app.DepositListener.Stop(); err != nil {
		return err
	}
	if err := app.Scheduler.Stop(); err != nil {
		return err
	}
	return app.Store.Close()
}
