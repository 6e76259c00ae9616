package dataloader

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"findash/internal/logging"
	"findash/internal/models"
	"findash/internal/services/storage"
)

// Loader reads per-user inputs from the data directory:
//
//	users/<id>/transactions/*.csv
//	users/<id>/accounts.json
//	users/<id>/holdings.json
//	users/<id>/profile.json
//	users/<id>/usage.json
//	prices/<SYMBOL>.json
type Loader struct {
	store  *storage.Storage
	logger *logging.Logger
	now    func() time.Time

	// usageMu serialises read-modify-write of usage files
	usageMu sync.Mutex
}

// columnMappings maps common bank export column names (lower-cased) to our
// standard names
var columnMappings = map[string][]string{
	"Date": {
		"date", "transaction date", "posted date", "post date",
		"trans date", "posting date", "value date",
	},
	"Description": {
		"description", "memo", "details", "payee", "name",
		"transaction description", "merchant", "narrative", "reference",
	},
	"Amount": {
		"amount", "value", "transaction amount", "sum", "amount (gbp)",
	},
	"Category": {
		"category", "type", "category name",
	},
	"Debit": {
		"debit", "withdrawal", "withdrawals", "money out", "paid out", "expense",
	},
	"Credit": {
		"credit", "deposit", "deposits", "money in", "paid in", "income",
	},
	"Account": {
		"account", "account id", "account name", "account number",
	},
}

// New creates a loader over store. A nil logger discards output.
func New(store *storage.Storage, logger *logging.Logger) *Loader {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Loader{
		store:  store,
		logger: logger.Named("dataloader"),
		now:    time.Now,
	}
}

func (l *Loader) userPath(userID string, elem ...string) string {
	return l.store.Path(append([]string{"users", userID}, elem...)...)
}

// normalizeColumnName maps a bank export column name to our standard name
func normalizeColumnName(col string) string {
	key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff")))
	for standard, variants := range columnMappings {
		for _, variant := range variants {
			if key == variant {
				return standard
			}
		}
	}
	return strings.TrimSpace(col)
}

// buildColumnIndex creates a normalized column index from CSV headers
func buildColumnIndex(header []string) map[string]int {
	colIndex := make(map[string]int)
	for i, col := range header {
		normalized := normalizeColumnName(col)
		// first match wins
		if _, exists := colIndex[normalized]; !exists {
			colIndex[normalized] = i
		}
	}
	return colIndex
}

// Transactions loads every CSV export for the user. Files that cannot be
// parsed are skipped with a warning; a locked store is an error. Dates are
// left unparsed so callers can count what they drop.
func (l *Loader) Transactions(ctx context.Context, userID string) ([]models.TransactionRecord, error) {
	pattern := l.userPath(userID, "transactions", "*.csv")
	files, err := l.store.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("error finding CSV files: %w", err)
	}
	if len(files) == 0 {
		l.logger.Debug("no transaction files", zap.String("user", userID))
		return []models.TransactionRecord{}, nil
	}

	records := make([]models.TransactionRecord, 0)
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		filename := filepath.Base(file)

		loaded, err := l.loadCSVFile(file)
		if errors.Is(err, storage.ErrLocked) {
			return nil, err
		}
		if err != nil {
			l.logger.Warn("skipping transaction file", zap.String("file", filename), zap.Error(err))
			continue
		}

		l.logger.Debug("loaded transactions", zap.String("file", filename), zap.Int("count", len(loaded)))
		records = append(records, loaded...)
	}
	return records, nil
}

// loadCSVFile loads transaction records from a single CSV file
func (l *Loader) loadCSVFile(filePath string) ([]models.TransactionRecord, error) {
	file, err := l.store.OpenFile(filePath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("error reading header: %w", err)
	}
	colIndex := buildColumnIndex(header)

	_, hasAmount := colIndex["Amount"]
	_, hasDebit := colIndex["Debit"]
	_, hasCredit := colIndex["Credit"]
	useDebitCredit := !hasAmount && (hasDebit || hasCredit)

	if _, ok := colIndex["Date"]; !ok {
		return nil, fmt.Errorf("missing required column: Date (tried: %v)", columnMappings["Date"])
	}
	if !hasAmount && !useDebitCredit {
		return nil, fmt.Errorf("missing required column: Amount or Debit/Credit (tried: %v)", columnMappings["Amount"])
	}

	var records []models.TransactionRecord
	lineNum := 1
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		lineNum++
		if err != nil {
			l.logger.Debug("unreadable csv line", zap.String("file", filepath.Base(filePath)), zap.Int("line", lineNum), zap.Error(err))
			continue
		}

		r := models.TransactionRecord{
			Date:        field(row, colIndex, "Date"),
			Description: field(row, colIndex, "Description"),
			Category:    field(row, colIndex, "Category"),
			AccountID:   field(row, colIndex, "Account"),
		}
		if useDebitCredit {
			r.Amount = parseDebitCredit(row, colIndex)
		} else {
			r.Amount = parseAmount(field(row, colIndex, "Amount"))
		}
		records = append(records, r)
	}
	return records, nil
}

// field returns the trimmed value of a standard column, or "" when absent
func field(row []string, colIndex map[string]int, name string) string {
	if idx, ok := colIndex[name]; ok && idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}

// parseDebitCredit combines Debit and Credit columns into a single amount.
// Credits are positive (income), debits are negative (expenses).
func parseDebitCredit(row []string, colIndex map[string]int) float64 {
	var amount float64
	if credit := parseAmount(field(row, colIndex, "Credit")); credit != 0 {
		amount = abs(credit)
	}
	if debit := parseAmount(field(row, colIndex, "Debit")); debit != 0 {
		amount = -abs(debit)
	}
	return amount
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// parseAmount parses an amount string, handling currency symbols, thousands
// separators and parentheses for negatives
func parseAmount(s string) float64 {
	s = strings.NewReplacer("£", "", "$", "", "€", "", ",", "", "GBP", "").Replace(s)
	s = strings.TrimSpace(s)

	// (100.00) -> -100.00
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		s = "-" + s[1:len(s)-1]
	}

	amount, _ := strconv.ParseFloat(s, 64)
	return amount
}

// Accounts loads the account balance snapshots; a missing file means none
func (l *Loader) Accounts(ctx context.Context, userID string) ([]models.Account, error) {
	accounts := []models.Account{}
	if err := l.readOptional(l.userPath(userID, "accounts.json"), &accounts); err != nil {
		return nil, err
	}
	for _, a := range accounts {
		if !a.Type.Valid() {
			l.logger.Warn("unknown account type", zap.String("user", userID), zap.String("type", string(a.Type)))
		}
	}
	return accounts, nil
}

// Holdings loads the investment positions; a missing file means none
func (l *Loader) Holdings(ctx context.Context, userID string) ([]models.Holding, error) {
	holdings := []models.Holding{}
	if err := l.readOptional(l.userPath(userID, "holdings.json"), &holdings); err != nil {
		return nil, err
	}
	return holdings, nil
}

// Profile loads the user's profile. A missing file yields a free-tier profile
// with no wealth plan.
func (l *Loader) Profile(ctx context.Context, userID string) (models.Profile, error) {
	profile := models.Profile{UserID: userID, Tier: models.TierFree}
	if err := l.readOptional(l.userPath(userID, "profile.json"), &profile); err != nil {
		return models.Profile{}, err
	}
	if profile.Tier == "" {
		profile.Tier = models.TierFree
	}
	return profile, nil
}

// PriceHistory loads prices/<SYMBOL>.json for each symbol. Symbols without a
// history file are skipped.
func (l *Loader) PriceHistory(ctx context.Context, symbols []string) ([]models.PriceSeries, error) {
	out := make([]models.PriceSeries, 0, len(symbols))
	for _, sym := range symbols {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		sym = strings.ToUpper(strings.TrimSpace(sym))
		if sym == "" || strings.ContainsAny(sym, `/\`) {
			continue
		}

		var series models.PriceSeries
		err := l.store.ReadJSON(l.store.Path("prices", sym+".json"), &series)
		if errors.Is(err, os.ErrNotExist) {
			l.logger.Debug("no price history", zap.String("symbol", sym))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load prices for %s: %w", sym, err)
		}
		if series.Symbol == "" {
			series.Symbol = sym
		}
		out = append(out, series)
	}
	return out, nil
}

// readOptional decodes path into v, leaving v untouched when the file is missing
func (l *Loader) readOptional(path string, v any) error {
	err := l.store.ReadJSON(path, v)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
