package waitlist

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vijayesvar/PLEDG-MF/config/router"
	"github.com/Vijayesvar/PLEDG-MF/internal/log"
	"github.com/Vijayesvar/PLEDG-MF/internal/storage"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

type waitlistAPI struct {
	t      *testing.T
	rs     *router.RouterService
	slot   *storage.MemorySlot
	clock  *fakeClock
	engine http.Handler
}

func newWaitlistAPI(t *testing.T) *waitlistAPI {
	t.Helper()

	logger := log.NewDiscardLogger()
	rs := router.CreateRouterService(logger, nil, &router.RouterConfig{
		RateLimitRequests: 1000,
		RateLimitWindow:   time.Minute,
		RequestTimeout:    5 * time.Second,
	})
	t.Cleanup(rs.Cleanup)

	slot := storage.NewMemorySlot("pledg_waitlist_entries")
	clock := newFakeClock()
	store, err := NewStore(slot, logger, WithClock(clock.Now), WithMetrics(rs.MetricsRegisterer()))
	require.NoError(t, err)

	rs.MountController(NewWaitlistController(store, logger))

	return &waitlistAPI{t: t, rs: rs, slot: slot, clock: clock, engine: rs.GetEngine()}
}

func (a *waitlistAPI) do(method, path, body string) *httptest.ResponseRecorder {
	a.t.Helper()

	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	a.engine.ServeHTTP(w, req)
	return w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder, data any) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data))
	}
	return env
}

const signupBody = `{
	"firstName": "Asha",
	"lastName": "Rao",
	"email": "Asha@Example.com",
	"phone": "+919800000001",
	"company": "Rao Textiles",
	"interestType": "borrower",
	"loanAmount": "5-10lakh",
	"agreeToTerms": true
}`

func (a *waitlistAPI) signup() EntryResponse {
	a.t.Helper()

	w := a.do(http.MethodPost, "/v1/waitlist", signupBody)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())

	var entry EntryResponse
	decodeEnvelope(a.t, w, &entry)
	return entry
}

func TestWaitlistController_CreateEntry(t *testing.T) {
	api := newWaitlistAPI(t)

	w := api.do(http.MethodPost, "/v1/waitlist", signupBody)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	assert.Contains(t, w.Body.String(), `"id":"`, "ids are sent as strings")

	var entry EntryResponse
	env := decodeEnvelope(t, w, &entry)
	assert.Equal(t, "Waitlist entry created successfully", env.Message)
	assert.Equal(t, "asha@example.com", entry.Email)
	assert.Equal(t, "pending", entry.Status)
	assert.Equal(t, "2026-05-14T10:30:00.000Z", entry.SubmittedAt)
}

func TestWaitlistController_CreateEntryValidation(t *testing.T) {
	api := newWaitlistAPI(t)

	cases := map[string]string{
		"terms not accepted": strings.Replace(signupBody, `"agreeToTerms": true`, `"agreeToTerms": false`, 1),
		"unknown interest":   strings.Replace(signupBody, `"borrower"`, `"investor"`, 1),
		"missing phone":      strings.Replace(signupBody, `"phone": "+919800000001",`, "", 1),
		"malformed email":    strings.Replace(signupBody, `Asha@Example.com`, `not-an-email`, 1),
		"body is not json":   `{"firstName": `,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			w := api.do(http.MethodPost, "/v1/waitlist", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}

	assert.Equal(t, 0, api.slot.Writes())
}

func TestWaitlistController_GetUpdateDelete(t *testing.T) {
	api := newWaitlistAPI(t)
	created := api.signup()
	path := "/v1/waitlist/" + jsonID(created.ID)

	w := api.do(http.MethodGet, path, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodPut, path, `{"company": "Rao Exports", "role": "CEO"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated EntryResponse
	decodeEnvelope(t, w, &updated)
	assert.Equal(t, "Rao Exports", updated.Company)
	assert.Equal(t, "CEO", updated.Role)
	assert.Equal(t, created.Email, updated.Email)
	require.NotNil(t, updated.UpdatedAt)

	w = api.do(http.MethodPut, path, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodPatch, path+"/status", `{"status": "onboarded"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decodeEnvelope(t, w, &updated)
	assert.Equal(t, "onboarded", updated.Status)

	w = api.do(http.MethodPatch, path+"/status", `{"status": "archived"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodDelete, path, "")
	assert.Equal(t, http.StatusOK, w.Code, "deleting twice is not an error")

	w = api.do(http.MethodGet, path, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestWaitlistController_UnknownAndInvalidIDs(t *testing.T) {
	api := newWaitlistAPI(t)

	assert.Equal(t, http.StatusNotFound, api.do(http.MethodGet, "/v1/waitlist/12345", "").Code)
	assert.Equal(t, http.StatusNotFound, api.do(http.MethodPut, "/v1/waitlist/12345", `{"role":"x"}`).Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/v1/waitlist/abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/v1/waitlist/-4", "").Code)
}

func TestWaitlistController_ListFiltersAndStats(t *testing.T) {
	api := newWaitlistAPI(t)
	first := api.signup()
	api.signup()

	lender := strings.Replace(signupBody, `"borrower"`, `"lender"`, 1)
	lender = strings.Replace(lender, "Rao Textiles", "Mehta Capital", 1)
	w := api.do(http.MethodPost, "/v1/waitlist", lender)
	require.Equal(t, http.StatusCreated, w.Code)

	w = api.do(http.MethodPatch, "/v1/waitlist/"+jsonID(first.ID)+"/status", `{"status":"contacted"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var list ListEntriesResponse
	decodeEnvelope(t, api.do(http.MethodGet, "/v1/waitlist?status=all&interest=all", ""), &list)
	assert.Equal(t, 3, list.Count)

	decodeEnvelope(t, api.do(http.MethodGet, "/v1/waitlist?status=pending", ""), &list)
	assert.Equal(t, 2, list.Count)

	decodeEnvelope(t, api.do(http.MethodGet, "/v1/waitlist?status=pending&interest=borrower", ""), &list)
	assert.Equal(t, 1, list.Count)

	decodeEnvelope(t, api.do(http.MethodGet, "/v1/waitlist?search=MEHTA", ""), &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "lender", list.Entries[0].InterestType)

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/v1/waitlist?status=archived", "").Code)

	var stats Statistics
	decodeEnvelope(t, api.do(http.MethodGet, "/v1/waitlist/stats", ""), &stats)
	assert.Equal(t, Statistics{
		Total:      3,
		ByInterest: InterestCounts{Borrower: 2, Lender: 1},
		ByStatus:   StatusCounts{Pending: 2, Contacted: 1},
		Recent:     3,
	}, stats)
}

func TestWaitlistController_Export(t *testing.T) {
	api := newWaitlistAPI(t)
	api.signup()

	date := time.Now().UTC().Format("2006-01-02")

	w := api.do(http.MethodGet, "/v1/waitlist/export", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=pledg_waitlist_"+date+".json", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "[\n  {\n"), w.Body.String())

	w = api.do(http.MethodGet, "/v1/waitlist/export?format=csv", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "attachment; filename=pledg_waitlist_"+date+".csv", w.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(w.Body.String(), "id,firstName,lastName,email"), w.Body.String())

	assert.Equal(t, http.StatusBadRequest, api.do(http.MethodGet, "/v1/waitlist/export?format=pdf", "").Code)
}

func TestWaitlistController_ClearAll(t *testing.T) {
	api := newWaitlistAPI(t)
	api.signup()

	w := api.do(http.MethodDelete, "/v1/waitlist", "")
	require.Equal(t, http.StatusOK, w.Code)

	var list ListEntriesResponse
	decodeEnvelope(t, api.do(http.MethodGet, "/v1/waitlist", ""), &list)
	assert.Equal(t, 0, list.Count)
	assert.NotNil(t, list.Entries)
}

func TestWaitlistController_WriteFailureIs500(t *testing.T) {
	api := newWaitlistAPI(t)
	created := api.signup()
	api.slot.FailWrites(true)

	w := api.do(http.MethodPost, "/v1/waitlist", signupBody)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "injected")

	w = api.do(http.MethodDelete, "/v1/waitlist/"+jsonID(created.ID), "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWaitlistController_ReadFailureDoesNotOverwrite(t *testing.T) {
	api := newWaitlistAPI(t)
	created := api.signup()
	api.slot.FailReads(true)

	assert.Equal(t, http.StatusInternalServerError, api.do(http.MethodPost, "/v1/waitlist", signupBody).Code)
	assert.Equal(t, http.StatusInternalServerError, api.do(http.MethodDelete, "/v1/waitlist/999", "").Code)

	api.slot.FailReads(false)
	var list ListEntriesResponse
	decodeEnvelope(t, api.do(http.MethodGet, "/v1/waitlist", ""), &list)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, created.ID, list.Entries[0].ID)
}

func jsonID(id int64) string {
	b, _ := json.Marshal(id)
	return string(b)
}
