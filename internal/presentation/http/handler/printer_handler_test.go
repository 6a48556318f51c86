package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/posprint/internal/application/service"
	"github.com/sangkips/posprint/internal/domain/entity"
	"github.com/sangkips/posprint/internal/domain/enum"
	"github.com/sangkips/posprint/internal/presentation/http/middleware"
	"github.com/sangkips/posprint/pkg/printer"
	"github.com/sangkips/posprint/pkg/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubStrategy struct {
	err     error
	lastDoc service.PrintDocument
}

func (s *stubStrategy) Kind() enum.PrintStrategy { return enum.PrintStrategyNetworkRaw }
func (s *stubStrategy) Timeout() time.Duration   { return time.Second }

func (s *stubStrategy) Attempt(_ context.Context, doc service.PrintDocument) service.StrategyOutcome {
	s.lastDoc = doc
	return service.StrategyOutcome{Target: entity.DeviceTarget{Host: "10.0.0.7", Port: 9100}, Err: s.err}
}

type stubLister struct{}

func (stubLister) List(context.Context) ([]printer.SystemPrinter, error) {
	return []printer.SystemPrinter{{Name: "POS-80", IsDefault: true}}, nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func newRouter(t *testing.T, strategy *stubStrategy, jwt *utils.JWTManager) *gin.Engine {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := service.NewPrinterService(service.PrinterServiceDeps{
		Renderer:   service.NewReceiptRenderer(entity.ReceiptHeader{StoreName: "Creative Hands", Currency: "Rs"}),
		Dispatcher: service.NewPrintDispatcher([]service.PrintStrategy{strategy}, logger),
		Lister:     stubLister{},
		Logger:     logger,
	})
	h := NewPrinterHandler(svc)

	r := gin.New()
	g := r.Group("/api/v1/printer", middleware.AuthMiddleware(jwt))
	g.POST("/print", h.Print)
	g.POST("/test", h.TestPrint)
	g.POST("/label", h.PrintLabel)
	g.POST("/preview", h.Preview)
	g.GET("/printers", h.ListPrinters)
	g.GET("/status", h.GetStatus)
	g.GET("/jobs", h.ListJobs)
	return r
}

func do(r http.Handler, method, path, body string, header http.Header) (*httptest.ResponseRecorder, envelope) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header[k] = v
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return w, env
}

func TestPrintSuccess(t *testing.T) {
	r := newRouter(t, &stubStrategy{}, nil)
	w, env := do(r, http.MethodPost, "/api/v1/printer/print",
		`{"items":[{"name":"Pen","quantity":"2","price":10}],"paid":25}`, nil)

	if w.Code != http.StatusOK || !env.Success {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	var data struct {
		Receipt entity.Receipt     `json:"receipt"`
		Result  entity.PrintResult `json:"result"`
	}
	if err := json.Unmarshal(env.Data, &data); err != nil {
		t.Fatalf("decode data: %v", err)
	}
	if data.Receipt.Total != 20 || data.Receipt.ChangeDue != 5 {
		t.Errorf("unexpected receipt %+v", data.Receipt)
	}
	if !data.Result.Success || data.Result.StrategyUsed != "NetworkRaw" {
		t.Errorf("unexpected result %+v", data.Result)
	}
}

func TestPrintBadJSON(t *testing.T) {
	r := newRouter(t, &stubStrategy{}, nil)
	for _, body := range []string{`{`, `[1,2]`, `null`} {
		w, _ := do(r, http.MethodPost, "/api/v1/printer/print", body, nil)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %q: status %d, want 400", body, w.Code)
		}
	}
}

func TestPrintEmptyReceipt(t *testing.T) {
	strategy := &stubStrategy{}
	r := newRouter(t, strategy, nil)
	w, env := do(r, http.MethodPost, "/api/v1/printer/print", `{"items":[]}`, nil)
	if w.Code != http.StatusUnprocessableEntity || env.Success {
		t.Fatalf("status %d, want 422", w.Code)
	}
	if strategy.lastDoc != nil {
		t.Error("strategy must not be invoked")
	}
}

func TestPrintExhausted(t *testing.T) {
	r := newRouter(t, &stubStrategy{err: errors.New("connection refused")}, nil)
	w, env := do(r, http.MethodPost, "/api/v1/printer/print",
		`{"items":[{"name":"Pen","quantity":1,"price":1}]}`, nil)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status %d, want 503", w.Code)
	}
	if !strings.Contains(env.Message, "NetworkRaw: connection refused") {
		t.Errorf("message should carry the reason, got %q", env.Message)
	}
	if !strings.Contains(string(env.Data), `"attempts"`) {
		t.Error("failed response should still include the attempts")
	}
}

func TestPrintServedByFromToken(t *testing.T) {
	jwt := utils.NewJWTManager("secret")
	strategy := &stubStrategy{}
	r := newRouter(t, strategy, jwt)

	w, _ := do(r, http.MethodPost, "/api/v1/printer/print", `{"items":[{"name":"Pen","quantity":1,"price":1}]}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, want 401 without token", w.Code)
	}

	token, err := jwt.GenerateAccessToken(uuid.New(), "", "Sana", nil, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	w, _ = do(r, http.MethodPost, "/api/v1/printer/print",
		`{"items":[{"name":"Pen","quantity":1,"price":1}]}`,
		http.Header{"Authorization": {"Bearer " + token}})
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(strategy.lastDoc.PlainText(), "Served by: Sana") {
		t.Error("servedBy should default to the token name")
	}
}

func TestPrintKeepsPayloadCashierOverToken(t *testing.T) {
	jwt := utils.NewJWTManager("secret")
	token, err := jwt.GenerateAccessToken(uuid.New(), "", "Sana", nil, time.Minute)
	if err != nil {
		t.Fatal(err)
	}
	auth := http.Header{"Authorization": {"Bearer " + token}}

	for _, key := range []string{"user", "served_by", "cashier"} {
		strategy := &stubStrategy{}
		r := newRouter(t, strategy, jwt)
		body := `{"` + key + `":"Ali","items":[{"name":"Pen","quantity":1,"price":1}]}`
		if w, _ := do(r, http.MethodPost, "/api/v1/printer/print", body, auth); w.Code != http.StatusOK {
			t.Fatalf("%s: status %d body %s", key, w.Code, w.Body.String())
		}
		if text := strategy.lastDoc.PlainText(); !strings.Contains(text, "Served by: Ali") {
			t.Errorf("%s: payload cashier should win over the token\n%s", key, text)
		}
	}
}

func TestTestPrintAndStatus(t *testing.T) {
	r := newRouter(t, &stubStrategy{}, nil)
	if w, _ := do(r, http.MethodPost, "/api/v1/printer/test", "", nil); w.Code != http.StatusOK {
		t.Fatalf("test print status %d", w.Code)
	}

	w, env := do(r, http.MethodGet, "/api/v1/printer/status", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var status service.PrinterStatus
	if err := json.Unmarshal(env.Data, &status); err != nil {
		t.Fatal(err)
	}
	if status.LastResult == nil || !status.LastResult.Success {
		t.Errorf("status should report the test print, got %+v", status)
	}
}

func TestListPrinters(t *testing.T) {
	r := newRouter(t, &stubStrategy{}, nil)
	w, env := do(r, http.MethodGet, "/api/v1/printer/printers", "", nil)
	if w.Code != http.StatusOK || !strings.Contains(string(env.Data), "POS-80") {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
}

func TestPreview(t *testing.T) {
	r := newRouter(t, &stubStrategy{}, nil)
	body := `{"items":[{"name":"Pen","quantity":1,"price":5}]}`

	w, _ := do(r, http.MethodPost, "/api/v1/printer/preview?format=text", body, nil)
	if w.Code != http.StatusOK || !strings.HasPrefix(w.Header().Get("Content-Type"), "text/plain") {
		t.Fatalf("status %d content-type %q", w.Code, w.Header().Get("Content-Type"))
	}
	if !strings.Contains(w.Body.String(), "SALES RECEIPT") {
		t.Error("preview should contain the receipt")
	}

	if w, _ := do(r, http.MethodPost, "/api/v1/printer/preview?format=pdf", body, nil); w.Code != http.StatusBadRequest {
		t.Errorf("unknown format: status %d, want 400", w.Code)
	}
}

func TestPrintLabel(t *testing.T) {
	r := newRouter(t, &stubStrategy{}, nil)
	w, env := do(r, http.MethodPost, "/api/v1/printer/label", `{"name":"Shawl","price":1200,"productId":42}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(string(env.Data), `"barcode":"620100100042`) {
		t.Errorf("unexpected data %s", env.Data)
	}

	if w, _ := do(r, http.MethodPost, "/api/v1/printer/label", `{"price":1}`, nil); w.Code != http.StatusBadRequest {
		t.Errorf("missing name: status %d, want 400", w.Code)
	}
}

func TestListJobsWithoutHistory(t *testing.T) {
	r := newRouter(t, &stubStrategy{}, nil)
	if w, _ := do(r, http.MethodGet, "/api/v1/printer/jobs?page=1&per_page=10", "", nil); w.Code != http.StatusServiceUnavailable {
		t.Errorf("status %d, want 503", w.Code)
	}
	if w, _ := do(r, http.MethodGet, "/api/v1/printer/jobs?from=yesterday", "", nil); w.Code != http.StatusBadRequest {
		t.Errorf("bad date: status %d, want 400", w.Code)
	}
}
