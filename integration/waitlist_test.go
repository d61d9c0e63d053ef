package integration

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/csv"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/config"
	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/domain"
	"github.com/Vijayesvar/PLEDG-MF/domain/waitlist"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/Vijayesvar/PLEDG-MF/pkg/migrations"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/suite"
)

type WaitlistAPITestSuite struct {
	suite.Suite
	server    *httptest.Server
	baseURL   string
	logger    *log.Logger
	appConfig *config.ApplicationConfig
}

type apiResponse struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func (suite *WaitlistAPITestSuite) SetupSuite() {
	dbPath := filepath.Join(suite.T().TempDir(), "pledg.db")
	suite.logger = log.NewDiscardLogger()

	// The migrator closes its handle, so it gets a connection of its own.
	migrateDB, err := sql.Open("sqlite3", dbPath)
	suite.Require().NoError(err)
	suite.Require().NoError(migrations.Up(context.Background(), migrateDB, migrations.Config{
		Dir:     filepath.Join("..", "migrations"),
		Dialect: migrations.DialectSQLite,
		Logger:  suite.logger,
	}))

	storageCfg := &config.StorageConfig{
		Driver:          storage.DriverDatabase,
		Key:             "pledg_waitlist_entries",
		SnowflakeNode:   3,
		RetryAttempts:   2,
		DatabaseDialect: migrations.DialectSQLite,
		SQLitePath:      dbPath,
	}

	db, err := config.NewDatabase(suite.logger, storageCfg.DBConfig())
	suite.Require().NoError(err)

	slot, err := config.NewWaitlistSlot(suite.logger, storageCfg, db, nil)
	suite.Require().NoError(err)

	suite.appConfig = &config.ApplicationConfig{
		DB:      db,
		Logger:  suite.logger,
		Storage: storageCfg,
		Slot:    slot,
	}

	suite.appConfig.RouterService = router.CreateRouterService(suite.logger, nil, &router.RouterConfig{
		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    30 * time.Second,
	})

	suite.Require().NoError(domain.SetupCoreDomain(suite.appConfig))

	suite.server = httptest.NewServer(suite.appConfig.RouterService.GetEngine())
	suite.baseURL = suite.server.URL
}

func (suite *WaitlistAPITestSuite) TearDownSuite() {
	if suite.server != nil {
		suite.server.Close()
	}
	if suite.appConfig != nil {
		suite.appConfig.Cleanup()
	}
}

func (suite *WaitlistAPITestSuite) SetupTest() {
	resp := suite.request(http.MethodDelete, "/v1/waitlist", "")
	suite.Require().Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()
}

func (suite *WaitlistAPITestSuite) request(method, path, body string) *http.Response {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequest(method, suite.baseURL+path, reader)
	suite.Require().NoError(err)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := http.DefaultClient.Do(req)
	suite.Require().NoError(err)
	return resp
}

func (suite *WaitlistAPITestSuite) decode(resp *http.Response, data any) apiResponse {
	defer resp.Body.Close()

	var envelope apiResponse
	suite.Require().NoError(json.NewDecoder(resp.Body).Decode(&envelope))
	if data != nil {
		suite.Require().NoError(json.Unmarshal(envelope.Data, data))
	}
	return envelope
}

func signupJSON(first, email, interest string) string {
	payload := map[string]any{
		"firstName":        first,
		"lastName":         "Tester",
		"email":            email,
		"phone":            "+919811111111",
		"company":          first + " Pvt Ltd",
		"role":             "Founder",
		"interestType":     interest,
		"investmentAmount": "1-5lakh",
		"agreeToTerms":     true,
		"marketingConsent": false,
	}
	data, _ := json.Marshal(payload)
	return string(data)
}

func (suite *WaitlistAPITestSuite) create(first, email, interest string) waitlist.EntryResponse {
	resp := suite.request(http.MethodPost, "/v1/waitlist", signupJSON(first, email, interest))
	suite.Require().Equal(http.StatusCreated, resp.StatusCode)

	var entry waitlist.EntryResponse
	suite.decode(resp, &entry)
	return entry
}

func (suite *WaitlistAPITestSuite) TestHealthCheck() {
	resp := suite.request(http.MethodGet, "/health", "")
	suite.Equal(http.StatusOK, resp.StatusCode)

	var status struct {
		Storage       int    `json:"storage"`
		Database      int    `json:"database"`
		StorageDriver string `json:"storage_driver"`
	}
	suite.decode(resp, &status)

	suite.Equal(1, status.Storage)
	suite.Equal(1, status.Database)
	suite.Equal(storage.DriverDatabase, status.StorageDriver)
}

func (suite *WaitlistAPITestSuite) TestEntryLifecycle() {
	created := suite.create("Ravi", "Ravi@Example.com", "borrower")
	suite.Equal("ravi@example.com", created.Email)
	suite.Equal("pending", created.Status)
	suite.Greater(created.ID, int64(1_000_000_000_000), "snowflake ids outgrow millisecond timestamps")

	path := "/v1/waitlist/" + idString(created.ID)

	var fetched waitlist.EntryResponse
	suite.decode(suite.request(http.MethodGet, path, ""), &fetched)
	suite.Equal(created, fetched)

	var contacted waitlist.EntryResponse
	resp := suite.request(http.MethodPatch, path+"/status", `{"status":"contacted"}`)
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.decode(resp, &contacted)
	suite.Equal("contacted", contacted.Status)
	suite.Require().NotNil(contacted.UpdatedAt)
	suite.Equal(created.SubmittedAt, contacted.SubmittedAt)

	resp = suite.request(http.MethodDelete, path, "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = suite.request(http.MethodGet, path, "")
	suite.Equal(http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func (suite *WaitlistAPITestSuite) TestListFiltersAndStats() {
	suite.create("Anil", "anil@example.com", "borrower")
	lender := suite.create("Bela", "bela@example.com", "lender")
	suite.create("Chitra", "chitra@example.com", "both")

	resp := suite.request(http.MethodPatch, "/v1/waitlist/"+idString(lender.ID)+"/status", `{"status":"onboarded"}`)
	suite.Equal(http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var list waitlist.ListEntriesResponse
	suite.decode(suite.request(http.MethodGet, "/v1/waitlist", ""), &list)
	suite.Equal(3, list.Count)
	suite.Equal("Anil", list.Entries[0].FirstName, "entries keep submission order")

	suite.decode(suite.request(http.MethodGet, "/v1/waitlist?status=onboarded", ""), &list)
	suite.Require().Equal(1, list.Count)
	suite.Equal(lender.ID, list.Entries[0].ID)

	suite.decode(suite.request(http.MethodGet, "/v1/waitlist?search=chitra%20pvt", ""), &list)
	suite.Equal(1, list.Count)

	var stats waitlist.Statistics
	suite.decode(suite.request(http.MethodGet, "/v1/waitlist/stats", ""), &stats)
	suite.Equal(3, stats.Total)
	suite.Equal(3, stats.Recent)
	suite.Equal(waitlist.InterestCounts{Borrower: 1, Lender: 1, Both: 1}, stats.ByInterest)
	suite.Equal(waitlist.StatusCounts{Pending: 2, Onboarded: 1}, stats.ByStatus)
}

func (suite *WaitlistAPITestSuite) TestValidationErrors() {
	body := strings.Replace(signupJSON("Dev", "dev@example.com", "lender"), `"agreeToTerms":true`, `"agreeToTerms":false`, 1)

	resp := suite.request(http.MethodPost, "/v1/waitlist", body)
	suite.Equal(http.StatusBadRequest, resp.StatusCode)

	var fields []struct {
		Field string `json:"field"`
	}
	suite.decode(resp, &fields)
	suite.Require().NotEmpty(fields)
	suite.Equal("agreeToTerms", fields[0].Field)
}

func (suite *WaitlistAPITestSuite) TestExportCSV() {
	suite.create("Esha", "esha@example.com", "exploring")

	resp := suite.request(http.MethodGet, "/v1/waitlist/export?format=csv", "")
	defer resp.Body.Close()
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.Contains(resp.Header.Get("Content-Disposition"), "pledg_waitlist_")
	suite.Contains(resp.Header.Get("Content-Type"), "text/csv")

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)

	rows, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal("esha@example.com", rows[1][3])
}

func (suite *WaitlistAPITestSuite) TestCollectionSurvivesRestart() {
	created := suite.create("Farah", "farah@example.com", "lender")

	// A second store over the same slot stands in for a restarted process.
	restarted, err := waitlist.NewStore(suite.appConfig.Slot, suite.logger, waitlist.WithSnowflakeNode(4))
	suite.Require().NoError(err)

	record, ok := restarted.Get(context.Background(), created.ID)
	suite.Require().True(ok)
	suite.Equal("farah@example.com", record.Email)

	var raw string
	suite.Require().NoError(suite.appConfig.DB.Raw("SELECT value FROM storage_slots WHERE slot_key = ?", "pledg_waitlist_entries").Scan(&raw).Error)
	suite.True(strings.HasPrefix(raw, `[{"id":`+idString(created.ID)+`,`), raw)
}

func (suite *WaitlistAPITestSuite) TestCalculator() {
	var quote struct {
		MonthlyEMI float64 `json:"monthlyEmi"`
	}
	resp := suite.request(http.MethodGet, "/v1/calculator/emi?amount=100000&rate=12&tenure=12", "")
	suite.Equal(http.StatusOK, resp.StatusCode)
	suite.decode(resp, &quote)
	suite.Equal(8885.0, quote.MonthlyEMI)
}

func idString(id int64) string {
	data, _ := json.Marshal(id)
	return string(data)
}

func TestWaitlistAPISuite(t *testing.T) {
	// Skip integration tests unless explicitly enabled
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration tests. Set RUN_INTEGRATION_TESTS=true to run them")
	}

	suite.Run(t, new(WaitlistAPITestSuite))
}
