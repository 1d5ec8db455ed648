// Package shell is the interactive menu on top of the ledger service.
package shell

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

const menu = `
Menu:
1. Add Income
2. Add Expense
3. Show Balance
4. Show Transactions
5. Expense Summary
6. Delete Transaction
7. Delete ALL Transactions
8. Exit & Save`

type Shell struct {
	svc    *services.LedgerService
	in     *lineReader
	out    io.Writer
	logger *log.Logger
}

func New(svc *services.LedgerService, in io.Reader, out io.Writer, logger *log.Logger) *Shell {
	if logger == nil {
		logger = log.New(log.Config{Output: io.Discard})
	}
	return &Shell{
		svc:    svc,
		in:     newLineReader(in),
		out:    out,
		logger: logger.WithComponent(log.ComponentShell),
	}
}

// Run drives the menu until the user exits, input ends, or ctx is
// cancelled. Every way out commits the ledger; only a failed final commit
// is returned.
func (s *Shell) Run(ctx context.Context) error {
	s.println("=== Personal Finance Tracker ===")

	for {
		s.println(menu)
		choice, err := s.prompt(ctx, "choose: ")
		if err != nil {
			return s.finish(ctx, err)
		}

		switch strings.TrimSpace(choice) {
		case "1":
			err = s.addTransaction(ctx, core.Income)
		case "2":
			err = s.addTransaction(ctx, core.Expense)
		case "3":
			s.showBalance()
		case "4":
			s.showTransactions()
		case "5":
			s.expenseSummary()
		case "6":
			err = s.deleteTransaction(ctx)
		case "7":
			err = s.deleteAll(ctx)
		case "8":
			if _, err := s.svc.Commit(ctx); err != nil {
				s.logger.ErrorContext(ctx, "Commit on exit failed", log.FieldError, err)
				s.printf("could not save: %v\n", err)
				if errors.Is(err, services.ErrNotLoaded) {
					return err
				}
				continue
			}
			s.println("saved. bye!")
			return nil
		default:
			s.println("invalid option.")
		}

		if err != nil {
			return s.finish(ctx, err)
		}
	}
}

// finish commits when input ends, input fails, or the session is
// interrupted.
func (s *Shell) finish(ctx context.Context, cause error) error {
	switch {
	case errors.Is(cause, io.EOF), errors.Is(cause, context.Canceled), errors.Is(cause, context.DeadlineExceeded):
		s.logger.InfoContext(ctx, "Input closed, saving ledger", "cause", cause)
	default:
		s.logger.WarnContext(ctx, "Failed to read input, saving ledger", log.FieldError, cause)
		s.printf("\ncould not read input: %v\n", cause)
	}
	// ctx may already be cancelled; the final save must still run.
	if _, err := s.svc.Commit(context.WithoutCancel(ctx)); err != nil {
		return fmt.Errorf("save on exit: %w", err)
	}
	s.println("\nsaved. bye!")
	return nil
}

func (s *Shell) addTransaction(ctx context.Context, kind core.Kind) error {
	l := s.svc.Ledger()

	amount, err := s.readAmount(ctx, fmt.Sprintf("enter %s amount: ", strings.ToLower(kind.String())))
	if err != nil {
		return err
	}

	if kind == core.Expense {
		var ife *ledger.InsufficientFundsError
		if err := l.CheckExpense(amount); errors.As(err, &ife) {
			s.logger.DebugContext(ctx, "Expense rejected",
				log.FieldAmount, core.AmountText(amount),
				log.FieldBalance, core.AmountText(ife.Balance))
			s.printf("not enough balance. you only have %s.\n", core.FormatAmount(ife.Balance))
			return nil
		}
	}

	raw, err := s.prompt(ctx, fmt.Sprintf("category (%s): ", categoryChoices()))
	if err != nil {
		return err
	}
	category := core.ParseCategory(raw)

	var tx core.Transaction
	if kind == core.Income {
		tx, err = l.AddIncome(amount, category)
	} else {
		tx, err = l.AddExpense(amount, category)
	}
	if err != nil {
		s.printf("could not add %s: %v\n", strings.ToLower(kind.String()), err)
		return nil
	}

	s.logger.DebugContext(ctx, "Transaction added",
		log.NewFields().
			WithOperation(log.OpAppend).
			WithTransaction(tx.Kind.String(), core.AmountText(tx.Amount), tx.Category.String()).
			ToSlice()...)
	s.printf("%s of %s added under '%s'\n", tx.Kind, core.FormatAmount(tx.Amount), tx.Category)
	return nil
}

// readAmount re-prompts until the input is a non-negative decimal.
func (s *Shell) readAmount(ctx context.Context, msg string) (decimal.Decimal, error) {
	for {
		raw, err := s.prompt(ctx, msg)
		if err != nil {
			return decimal.Zero, err
		}
		amount, err := core.ParseAmount(raw)
		switch {
		case err == nil:
			return amount, nil
		case errors.Is(err, core.ErrNegativeAmount):
			s.println("amount can't be negative.")
		default:
			s.println("please enter a valid number (e.g. 123.45)")
		}
	}
}

func (s *Shell) showBalance() {
	b := s.svc.Ledger().Balance()
	s.println("\nBalance Report:")
	s.printf("  Income : %s\n", core.FormatAmount(b.Income))
	s.printf("  Expense: %s\n", core.FormatAmount(b.Expense))
	s.printf("  Balance: %s\n", core.FormatAmount(b.Net))
}

func (s *Shell) showTransactions() {
	entries := s.svc.Ledger().List()
	if len(entries) == 0 {
		s.println("no transactions yet.")
		return
	}
	s.println("\nTransaction History:")
	for _, e := range entries {
		t := e.Transaction
		s.printf("%02d. %-7s %10s  (%s)\n", e.Position, t.Kind, core.FormatAmount(t.Amount), t.Category)
	}
}

func (s *Shell) expenseSummary() {
	l := s.svc.Ledger()
	if l.Len() == 0 {
		s.println("no transactions to summarize.")
		return
	}
	s.println("\nExpense Summary:")
	for _, c := range l.CategorySummary() {
		s.printf("- %-15s %s\n", c.Category, core.FormatAmount(c.Amount))
	}
}

func (s *Shell) deleteTransaction(ctx context.Context) error {
	l := s.svc.Ledger()
	if l.Len() == 0 {
		s.println("nothing to delete.")
		return nil
	}
	s.showTransactions()

	raw, err := s.prompt(ctx, "\nenter transaction number to delete: ")
	if err != nil {
		return err
	}
	position, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		s.println("please enter a number.")
		return nil
	}

	removed, err := l.DeleteAt(position)
	if errors.Is(err, ledger.ErrOutOfRange) {
		s.println("invalid number.")
		return nil
	}
	if err != nil {
		return err
	}

	s.logger.DebugContext(ctx, "Transaction deleted",
		log.NewFields().
			WithOperation(log.OpDelete).
			WithPosition(position).
			WithTransaction(removed.Kind.String(), core.AmountText(removed.Amount), removed.Category.String()).
			ToSlice()...)
	s.printf("deleted: %s %s (%s)\n", removed.Kind, core.AmountText(removed.Amount), removed.Category)
	return nil
}

func (s *Shell) deleteAll(ctx context.Context) error {
	if s.svc.Ledger().Len() == 0 {
		s.println("nothing to delete.")
		return nil
	}

	raw, err := s.prompt(ctx, "delete ALL transactions? (yes/no): ")
	if err != nil {
		return err
	}
	confirmed := strings.ToLower(strings.TrimSpace(raw)) == "yes"

	_, err = s.svc.DeleteAll(ctx, confirmed)
	switch {
	case errors.Is(err, services.ErrNotConfirmed):
		s.println("cancelled.")
	case err != nil:
		s.logger.ErrorContext(ctx, "Commit after bulk delete failed", log.FieldError, err)
		s.printf("all transactions deleted, but saving failed: %v\n", err)
	default:
		s.println("all transactions deleted.")
	}
	return nil
}

func (s *Shell) prompt(ctx context.Context, msg string) (string, error) {
	fmt.Fprint(s.out, msg)
	return s.in.next(ctx)
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func (s *Shell) printf(format string, a ...any) {
	fmt.Fprintf(s.out, format, a...)
}

func categoryChoices() string {
	names := make([]string, len(core.AllowedCategories))
	for i, c := range core.AllowedCategories {
		names[i] = c.String()
	}
	return strings.Join(names, ", ")
}
