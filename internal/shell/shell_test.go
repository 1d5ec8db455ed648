package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"testing/iotest"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/services"
	"fintrack/internal/storage"
)

type countingStore struct {
	storage.Store
	saves int
}

func (c *countingStore) Save(ctx context.Context, txs []core.Transaction) error {
	c.saves++
	return c.Store.Save(ctx, txs)
}

func newFileService(t *testing.T) (*services.LedgerService, *countingStore, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.json")
	store := &countingStore{Store: storage.NewFileStore(path)}
	svc := services.NewLedgerService(store, time.Second)
	if _, err := svc.Open(context.Background()); err != nil {
		t.Fatalf("open: %v", err)
	}
	return svc, store, path
}

func run(t *testing.T, svc *services.LedgerService, input string) string {
	t.Helper()
	var out bytes.Buffer
	if err := New(svc, strings.NewReader(input), &out, nil).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	return out.String()
}

func reload(t *testing.T, path string) []core.Transaction {
	t.Helper()
	txs, err := storage.NewFileStore(path).Load(context.Background())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	return txs
}

func assertContains(t *testing.T, out string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestIncomeExpenseBalanceAndExit(t *testing.T) {
	svc, _, path := newFileService(t)
	out := run(t, svc, "1\n1000\nsalary\n2\n200.50\nFOOD\n3\n8\n")

	assertContains(t, out,
		"=== Personal Finance Tracker ===",
		"8. Exit & Save",
		"enter income amount: ",
		"category (Salary, Food, Rent): ",
		"Income of 1000.00 added under 'Salary'",
		"Expense of 200.50 added under 'Food'",
		"Balance Report:",
		"  Income : 1000.00",
		"  Expense: 200.50",
		"  Balance: 799.50",
		"saved. bye!",
	)

	txs := reload(t, path)
	if len(txs) != 2 || txs[1].Category != core.Food || txs[1].Amount.String() != "200.5" {
		t.Fatalf("unexpected persisted ledger: %+v", txs)
	}
}

func TestAmountRepromptAndCategoryFallback(t *testing.T) {
	svc, _, _ := newFileService(t)
	out := run(t, svc, "1\nabc\n-5\n\n10\nbonus\n8\n")

	assertContains(t, out,
		"please enter a valid number (e.g. 123.45)",
		"amount can't be negative.",
		"Income of 10.00 added under 'Uncategorized'",
	)
	if n := strings.Count(out, "enter income amount: "); n != 4 {
		t.Fatalf("expected 4 amount prompts, got %d", n)
	}
}

func TestExpenseRejectedWhenBalanceTooLow(t *testing.T) {
	svc, _, _ := newFileService(t)
	out := run(t, svc, "2\n50\n3\n8\n")

	assertContains(t, out, "not enough balance. you only have 0.00.", "  Balance: 0.00")
	if strings.Contains(out, "category (") {
		t.Fatalf("category should not be asked after rejection:\n%s", out)
	}
	if svc.Ledger().Len() != 0 {
		t.Fatalf("ledger should stay empty")
	}
}

func TestShowTransactionsAndSummary(t *testing.T) {
	svc, _, _ := newFileService(t)
	out := run(t, svc, "4\n5\n1\n1000\nSalary\n2\n200.50\nfood\n2\n10\nrent\n4\n5\n8\n")

	assertContains(t, out,
		"no transactions yet.",
		"no transactions to summarize.",
		"Transaction History:",
		"01. Income     1000.00  (Salary)",
		"02. Expense     200.50  (Food)",
		"03. Expense      10.00  (Rent)",
		"Expense Summary:",
		"- Food            200.50",
		"- Rent            10.00",
	)
}

func TestDeleteTransaction(t *testing.T) {
	svc, _, _ := newFileService(t)
	out := run(t, svc, "6\n1\n100\nSalary\n2\n30\nFood\n6\nabc\n6\n5\n6\n1\n3\n8\n")

	assertContains(t, out,
		"nothing to delete.",
		"enter transaction number to delete: ",
		"please enter a number.",
		"invalid number.",
		"deleted: Income 100 (Salary)",
		"  Balance: -30.00",
	)
	if svc.Ledger().Len() != 1 {
		t.Fatalf("expected one remaining entry, got %d", svc.Ledger().Len())
	}
}

func TestDeleteAllConfirmationAndImmediateSave(t *testing.T) {
	svc, store, path := newFileService(t)
	out := run(t, svc, "7\n1\n5\nRent\n7\nno\n7\n YES \n8\n")

	assertContains(t, out,
		"nothing to delete.",
		"delete ALL transactions? (yes/no): ",
		"cancelled.",
		"all transactions deleted.",
	)
	if store.saves != 2 {
		t.Fatalf("expected save on bulk delete and on exit, got %d", store.saves)
	}
	if txs := reload(t, path); len(txs) != 0 {
		t.Fatalf("expected empty persisted ledger, got %+v", txs)
	}
}

func TestBulkDeletePersistsBeforeExit(t *testing.T) {
	svc, store, _ := newFileService(t)
	run(t, svc, "1\n5\nRent\n7\nyes\n")
	// bulk delete commit + end-of-input commit
	if store.saves != 2 {
		t.Fatalf("expected 2 saves, got %d", store.saves)
	}
}

func TestInvalidOption(t *testing.T) {
	svc, _, _ := newFileService(t)
	out := run(t, svc, "9\nhello\n8\n")
	if n := strings.Count(out, "invalid option."); n != 2 {
		t.Fatalf("expected 2 invalid option messages, got %d", n)
	}
}

func TestEndOfInputSaves(t *testing.T) {
	svc, _, path := newFileService(t)
	out := run(t, svc, "1\n5\nFood\n")

	assertContains(t, out, "saved. bye!")
	if txs := reload(t, path); len(txs) != 1 {
		t.Fatalf("expected 1 persisted entry, got %+v", txs)
	}
}

func TestEndOfInputMidPromptSaves(t *testing.T) {
	svc, store, _ := newFileService(t)
	run(t, svc, "1\n")
	if store.saves != 1 {
		t.Fatalf("expected a save when input ends mid prompt, got %d", store.saves)
	}
}

func TestCancelledContextSaves(t *testing.T) {
	svc, store, _ := newFileService(t)
	inR, inW := io.Pipe()
	defer inW.Close()
	outR, outW := io.Pipe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		err := New(svc, inR, outW, nil).Run(ctx)
		outW.Close()
		done <- err
	}()

	go func() {
		_, _ = io.WriteString(inW, "1\n42\nSalary\n")
	}()

	// Wait for the menu prompt that follows the added entry.
	var seen strings.Builder
	buf := make([]byte, 256)
	for {
		n, err := outR.Read(buf)
		seen.Write(buf[:n])
		s := seen.String()
		if i := strings.Index(s, "added under 'Salary'"); i >= 0 && strings.Contains(s[i:], "choose: ") {
			break
		}
		if err != nil {
			t.Fatalf("output ended early: %v\n%s", err, s)
		}
	}
	cancel()
	go io.Copy(io.Discard, outR)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("shell did not stop after cancellation")
	}
	if store.saves != 1 {
		t.Fatalf("expected final save, got %d", store.saves)
	}
	if svc.Ledger().Len() != 1 {
		t.Fatalf("expected the entry to be kept, got %d", svc.Ledger().Len())
	}
}

func TestLongLineDoesNotEndSession(t *testing.T) {
	svc, store, path := newFileService(t)

	input := "1\n100\n" + strings.Repeat("x", 70000) + "\n1\n50\nFood\n8\n"
	out := run(t, svc, input)

	assertContains(t, out, "added under 'Uncategorized'", "added under 'Food'", "saved. bye!")
	if store.saves != 1 {
		t.Fatalf("expected 1 save, got %d", store.saves)
	}
	txs := reload(t, path)
	if len(txs) != 2 || txs[0].Category != core.Uncategorized || txs[1].Category != core.Food {
		t.Fatalf("unexpected persisted ledger: %+v", txs)
	}
}

func TestReadErrorIsReportedAndSaves(t *testing.T) {
	svc, store, path := newFileService(t)

	in := io.MultiReader(
		strings.NewReader("1\n100\nSalary\n"),
		iotest.ErrReader(errors.New("terminal went away")),
	)
	var out bytes.Buffer
	if err := New(svc, in, &out, nil).Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}

	assertContains(t, out.String(), "could not read input: terminal went away", "saved. bye!")
	if store.saves != 1 {
		t.Fatalf("expected 1 save, got %d", store.saves)
	}
	if txs := reload(t, path); len(txs) != 1 || !txs[0].Amount.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("unexpected persisted ledger: %+v", txs)
	}
}

func TestInterruptedStartupKeepsStoredLedger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	seed, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open sqlite store: %v", err)
	}
	stored := []core.Transaction{{Kind: core.Income, Amount: decimal.NewFromInt(10), Category: core.Salary}}
	if err := seed.Save(context.Background(), stored); err != nil {
		t.Fatalf("seed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := services.NewLedgerService(seed, time.Second)
	if _, err := svc.Open(ctx); err == nil {
		t.Fatal("expected open to fail on a cancelled context")
	}
	var out bytes.Buffer
	err = New(svc, strings.NewReader("8\n"), &out, nil).Run(ctx)
	if !errors.Is(err, services.ErrNotLoaded) {
		t.Fatalf("expected ErrNotLoaded, got %v", err)
	}
	if err := svc.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	reopened, err := storage.NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	txs, err := reopened.Load(context.Background())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(txs) != 1 || !txs[0].Equal(stored[0]) {
		t.Fatalf("stored ledger was modified: %+v", txs)
	}
}
