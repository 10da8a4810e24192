package handlers

import (
	"github.com/rogerio-castellano/stock-notifier/internal/billing"
	"github.com/rogerio-castellano/stock-notifier/internal/notify"
	repo "github.com/rogerio-castellano/stock-notifier/internal/repo"
)

var (
	productRepo  repo.ProductRepository
	movementRepo repo.MovementRepository
	metricsRepo  repo.MetricsRepository
	userRepo     repo.UserRepository

	dispatcher     *notify.Dispatcher
	billingService *billing.Service
)

func SetProductRepo(r repo.ProductRepository) {
	productRepo = r
}

func SetMovementRepo(r repo.MovementRepository) {
	movementRepo = r
}

func SetMetricsRepo(r repo.MetricsRepository) {
	metricsRepo = r
}

func SetUserRepo(r repo.UserRepository) {
	userRepo = r
}

func SetDispatcher(d *notify.Dispatcher) {
	dispatcher = d
}

func SetBillingService(s *billing.Service) {
	billingService = s
}
