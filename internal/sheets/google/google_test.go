package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

type recordedRequest struct {
	method string
	path   string
	body   string
}

func newTestClient(t *testing.T, status int) (*Client, *[]recordedRequest) {
	t.Helper()
	var (
		mu   sync.Mutex
		reqs []recordedRequest
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		reqs = append(reqs, recordedRequest{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status >= 400 {
			_, _ = io.WriteString(w, `{"error":{"code":400,"message":"boom"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"totalUpdatedCells": 9}`)
	}))
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return NewClient(svc, "sheet-id", "Ledger"), &reqs
}

func TestMirrorClearsThenWrites(t *testing.T) {
	c, reqs := newTestClient(t, http.StatusOK)
	snap := core.Snapshot{
		ID: "commit-1",
		Transactions: []core.Transaction{
			{Kind: core.Income, Amount: decimal.RequireFromString("1000.00"), Category: core.Salary},
		},
		Balance: core.Balance{
			Income:  decimal.RequireFromString("1000.00"),
			Expense: decimal.Zero,
			Net:     decimal.RequireFromString("1000.00"),
		},
	}

	if err := c.Mirror(context.Background(), snap); err != nil {
		t.Fatalf("mirror: %v", err)
	}

	if len(*reqs) != 2 {
		t.Fatalf("expected clear and write requests, got %d", len(*reqs))
	}
	clear, write := (*reqs)[0], (*reqs)[1]
	if clear.method != http.MethodPost || !strings.HasSuffix(clear.path, ":clear") {
		t.Fatalf("unexpected clear request: %+v", clear)
	}
	if write.method != http.MethodPost || !strings.HasSuffix(write.path, ":batchUpdate") {
		t.Fatalf("unexpected write request: %+v", write)
	}

	var body gsheet.BatchUpdateValuesRequest
	if err := json.Unmarshal([]byte(write.body), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.ValueInputOption != "RAW" || len(body.Data) != 2 {
		t.Fatalf("unexpected batch body: %s", write.body)
	}
	if !strings.Contains(write.body, `"1000.00"`) || !strings.Contains(write.body, `"Salary"`) {
		t.Fatalf("expected transaction values in body: %s", write.body)
	}
}

func TestMirrorReportsAPIErrors(t *testing.T) {
	c, _ := newTestClient(t, http.StatusBadRequest)
	if err := c.Mirror(context.Background(), core.Snapshot{ID: "x"}); err == nil {
		t.Fatal("expected error from failing API")
	}
}

func TestMirrorWithoutService(t *testing.T) {
	c := &Client{}
	if err := c.Mirror(context.Background(), core.Snapshot{}); err == nil {
		t.Fatal("expected error without service")
	}
}

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	if _, err := NewFromEnv(context.Background(), " ", "Ledger"); err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}
}

func TestNewFromEnvRequiresCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")
	if _, err := NewFromEnv(context.Background(), "sheet-id", "Ledger"); err == nil {
		t.Fatal("expected error for missing credentials")
	}
}
