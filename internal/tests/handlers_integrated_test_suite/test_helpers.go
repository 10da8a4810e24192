package handlers_integrated_test_suite

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rogerio-castellano/stock-notifier/internal/billing"
	"github.com/rogerio-castellano/stock-notifier/internal/db"
	api "github.com/rogerio-castellano/stock-notifier/internal/http"
	handler "github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
	"github.com/rogerio-castellano/stock-notifier/internal/lastseen"
	"github.com/rogerio-castellano/stock-notifier/internal/metrics"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
	"github.com/rogerio-castellano/stock-notifier/internal/notify"
	"github.com/rogerio-castellano/stock-notifier/internal/redissvc"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
	"github.com/rogerio-castellano/stock-notifier/internal/sms"
	"golang.org/x/crypto/bcrypt"
)

type countingSender struct {
	sent []sms.Message
}

func (s *countingSender) Send(_ context.Context, m sms.Message) (sms.Receipt, error) {
	s.sent = append(s.sent, m)
	return sms.Receipt{ID: fmt.Sprintf("SM%d", len(s.sent))}, nil
}

var (
	token    string
	database *sql.DB
	redis    *redissvc.RedisService
	sender   *countingSender
	registry *prometheus.Registry
)

// setup wires postgres repositories, and redis stores when redisAddr is set.
func setup(ctx context.Context, dsn, redisAddr string) error {
	var err error
	database, err = db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	if err := db.EnsureSchema(ctx, database); err != nil {
		return err
	}

	var throttle, activity lastseen.Store = lastseen.NewMemoryStore(), lastseen.NewMemoryStore()
	if redisAddr != "" {
		redis, err = redissvc.Connect(ctx, redisAddr)
		if err != nil {
			return err
		}
		throttle = lastseen.NewRedisStore(redis.Rdb(), lastseen.DefaultTTL)
		activity = lastseen.NewRedisStore(redis.Rdb(), 2*time.Hour)
	}

	productRepo := repo.NewPostgresProductRepository(database)
	handler.SetProductRepo(productRepo)

	movementRepo := repo.NewPostgresMovementRepository(database)
	handler.SetMovementRepo(movementRepo)

	userRepo := repo.NewPostgresUserRepository(database)
	handler.SetUserRepo(userRepo)

	notificationRepo := repo.NewPostgresNotificationRepository(database)
	handler.SetMetricsRepo(repo.NewPostgresMetricsRepository(database))

	if err := createAdminIfNotExists(ctx, userRepo, "secret"); err != nil {
		return err
	}

	sender = &countingSender{}
	registry = prometheus.NewRegistry()
	dispatcher := notify.NewDispatcher(notify.Deps{
		Products:      productRepo,
		Notifications: notificationRepo,
		Users:         userRepo,
		SMS:           sender,
		Throttle:      throttle,
		Metrics:       metrics.NewSweeps(registry),
		From:          "+15550199",
	})
	handler.SetDispatcher(dispatcher)
	handler.SetBillingService(billing.NewService(billing.Deps{
		Bills:     repo.NewPostgresBillRepository(database),
		Products:  productRepo,
		Movements: movementRepo,
		Reorder:   dispatcher,
		Activity:  activity,
	}))

	token, err = generateToken(newRouter(), "admin", "secret")
	return err
}

func teardown() {
	if redis != nil {
		redis.Close()
	}
	if database != nil {
		database.Close()
	}
}

func newRouter() http.Handler {
	return api.NewRouter(registry)
}

func createAdminIfNotExists(ctx context.Context, users repo.UserRepository, password string) error {
	if _, err := users.GetByUsername(ctx, "admin"); err == nil {
		return nil
	}
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	_, err := users.CreateUser(ctx, models.User{
		Username:     "admin",
		PasswordHash: string(hash),
		Contact:      "+15550100",
		Role:         "admin",
	})
	return err
}

func generateToken(r http.Handler, username, password string) (string, error) {
	payload := handler.CredentialsRequest{Username: username, Password: password}
	body, _ := json.Marshal(payload)

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var resp handler.LoginResult
	err := json.NewDecoder(w.Body).Decode(&resp)
	if err != nil {
		return "", fmt.Errorf("token decoding failed: %v", err)
	}
	return resp.Token, nil
}

func clearAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	for _, stmt := range []string{
		"TRUNCATE TABLE products, movements, notifications, bills RESTART IDENTITY CASCADE",
		"DELETE FROM users WHERE username <> 'admin'",
	} {
		if _, err := database.ExecContext(ctx, stmt); err != nil {
			fmt.Println(fmt.Errorf("failed to reset tables: %w", err))
		}
	}
	if redis != nil {
		redis.Rdb().FlushDB(ctx)
	}
	sender.sent = nil
}

func doRequest(r http.Handler, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	var body bytes.Buffer
	if payload != nil {
		json.NewEncoder(&body).Encode(payload)
	}
	req := httptest.NewRequest(method, path, &body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
