package handlers_test_suite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rogerio-castellano/stock-notifier/internal/billing"
	"github.com/rogerio-castellano/stock-notifier/internal/clock"
	api "github.com/rogerio-castellano/stock-notifier/internal/http"
	handler "github.com/rogerio-castellano/stock-notifier/internal/http/handlers"
	rl "github.com/rogerio-castellano/stock-notifier/internal/http/rate_limiter"
	"github.com/rogerio-castellano/stock-notifier/internal/lastseen"
	"github.com/rogerio-castellano/stock-notifier/internal/metrics"
	"github.com/rogerio-castellano/stock-notifier/internal/models"
	"github.com/rogerio-castellano/stock-notifier/internal/notify"
	"github.com/rogerio-castellano/stock-notifier/internal/repo"
	"github.com/rogerio-castellano/stock-notifier/internal/sms"
	"golang.org/x/crypto/bcrypt"
)

type recordingSender struct {
	mu   sync.Mutex
	sent []sms.Message
	err  error
}

func (s *recordingSender) Send(_ context.Context, m sms.Message) (sms.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sent = append(s.sent, m)
	if s.err != nil {
		return sms.Receipt{}, s.err
	}
	return sms.Receipt{ID: fmt.Sprintf("SM%d", len(s.sent))}, nil
}

func (s *recordingSender) reset(err error) {
	s.mu.Lock()
	s.sent = nil
	s.err = err
	s.mu.Unlock()
}

func (s *recordingSender) bodies() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.sent))
	for i, m := range s.sent {
		out[i] = m.Body
	}
	return out
}

var (
	token      string
	otherToken string

	productRepo      *repo.InMemoryProductRepository
	notificationRepo *repo.InMemoryNotificationRepository
	billRepo         *repo.InMemoryBillRepository
	movementRepo     *repo.InMemoryMovementRepository
	throttle         *lastseen.MemoryStore
	activity         *lastseen.MemoryStore
	sender           *recordingSender
	testClock        *clock.Fixed
	registry         *prometheus.Registry
)

func init() {
	rl.Configure(1000, 1000)
	setupTestRepos("secret")
	r := newRouter()

	var err error
	token, err = generateToken(r, "admin", "secret")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
	otherToken, err = generateToken(r, "bob", "secret")
	if err != nil {
		panic(fmt.Sprintf("error generating token: %v", err))
	}
}

func setupTestRepos(password string) {
	productRepo = repo.NewInMemoryProductRepository()
	handler.SetProductRepo(productRepo)

	movementRepo = repo.NewInMemoryMovementRepository()
	handler.SetMovementRepo(movementRepo)

	userRepo := repo.NewInMemoryUserRepository()
	handler.SetUserRepo(userRepo)

	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	for _, u := range []models.User{
		{Username: "admin", Contact: "+15550100", Role: "admin"},
		{Username: "bob", Contact: "+15550101", Role: "user"},
	} {
		u.PasswordHash = string(hash)
		userRepo.CreateUser(context.Background(), u)
	}

	notificationRepo = repo.NewInMemoryNotificationRepository()
	billRepo = repo.NewInMemoryBillRepository()

	sender = &recordingSender{}
	throttle = lastseen.NewMemoryStore()
	activity = lastseen.NewMemoryStore()
	testClock = clock.NewFixed(time.Now().UTC().Truncate(time.Second))

	metricsRepo := repo.NewInMemoryMetricsRepository()
	metricsRepo.SetRepositories(productRepo, billRepo, notificationRepo)
	metricsRepo.SetClock(testClock)
	handler.SetMetricsRepo(metricsRepo)
	registry = prometheus.NewRegistry()

	dispatcher := notify.NewDispatcher(notify.Deps{
		Products:      productRepo,
		Notifications: notificationRepo,
		Users:         userRepo,
		SMS:           sender,
		Throttle:      throttle,
		Clock:         testClock,
		Metrics:       metrics.NewSweeps(registry),
		From:          "+15550199",
	})
	handler.SetDispatcher(dispatcher)

	handler.SetBillingService(billing.NewService(billing.Deps{
		Bills:     billRepo,
		Products:  productRepo,
		Movements: movementRepo,
		Reorder:   dispatcher,
		Activity:  activity,
		Clock:     testClock,
	}))
}

func newRouter() http.Handler {
	return api.NewRouter(registry)
}

func clearAll() {
	productRepo.Clear()
	notificationRepo.Clear()
	billRepo.Clear()
	throttle.Clear()
	activity.Clear()
	sender.reset(nil)
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

func createProduct(r http.Handler, p handler.ProductRequest) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, "/products", token, p)
}

// mustCreateProduct creates p for the admin user and returns its id.
func mustCreateProduct(r http.Handler, p handler.ProductRequest) int {
	w := createProduct(r, p)
	if w.Code != http.StatusCreated {
		panic(fmt.Sprintf("product creation failed: %d %s", w.Code, w.Body.String()))
	}
	var resp handler.ProductResponse
	json.NewDecoder(w.Body).Decode(&resp)
	return resp.Id
}

func adjustProduct(r http.Handler, productID int, adj handler.QuantityAdjustmentRequest) *httptest.ResponseRecorder {
	return doRequest(r, http.MethodPost, fmt.Sprintf("/products/%d/adjust", productID), token, adj)
}

func listNotifications(r http.Handler, bearer string) []models.Notification {
	w := doRequest(r, http.MethodGet, "/notifications", bearer, nil)
	var out []models.Notification
	json.NewDecoder(w.Body).Decode(&out)
	return out
}

func intPtr(v int) *int { return &v }

func timePtr(t time.Time) *time.Time { return &t }
