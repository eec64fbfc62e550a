package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"notare/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

const defaultRowCacheDuration = 2 * time.Minute

// Options selects the spreadsheet and the service account used to write it.
type Options struct {
	SpreadsheetID   string
	SheetName       string // base name; the record year is prefixed
	CredentialsJSON string
	CredentialsFile string
}

// Client appends backup rows to a per-year sheet.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetBase     string

	// Next-row cache. Appends are serialized through mu so two workers in one
	// process do not race for the same row.
	mu                 sync.Mutex
	cachedSheet        string
	cachedRowCount     int
	cacheExpiresAt     time.Time
	cacheValidDuration time.Duration
}

var _ sheets.BackupWriter = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, opts Options, extra ...goption.ClientOption) (*Client, error) {
	spreadsheetID := strings.TrimSpace(opts.SpreadsheetID)
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	base := strings.TrimSpace(opts.SheetName)
	if base == "" {
		base = "Backup"
	}

	svc, err := newSheetsService(ctx, opts, extra...)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(svc, spreadsheetID, base), nil
}

func newClient(svc *gsheet.Service, spreadsheetID, base string) *Client {
	return &Client{
		svc:                svc,
		spreadsheetID:      spreadsheetID,
		sheetBase:          base,
		cacheValidDuration: defaultRowCacheDuration,
	}
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials. Inline JSON wins over a file; GOOGLE_APPLICATION_CREDENTIALS is
// the last resort. Extra options are appended, which lets tests point the
// client at a local endpoint.
func newSheetsService(ctx context.Context, opts Options, extra ...goption.ClientOption) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(opts.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(opts.CredentialsFile)

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	clientOpts := append([]goption.ClientOption{
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope),
	}, extra...)

	service, err := gsheet.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created successfully")
	return service, nil
}

// AppendRow writes row below the last used row of the year's sheet. A new
// sheet gets the header first.
func (c *Client) AppendRow(ctx context.Context, row sheets.BackupRow) (string, error) {
	if row.Kind == "" || row.ID == "" {
		return "", errors.New("backup row needs kind and id")
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	sheet := yearPrefixedName(c.sheetBase, row.Year())

	c.mu.Lock()
	defer c.mu.Unlock()

	count, err := c.rowCount(ctx, sheet)
	if err != nil {
		return "", err
	}

	if count == 0 {
		if err := c.update(ctx, sheet, 1, sheets.Header); err != nil {
			c.invalidateLocked()
			return "", err
		}
		count = 1
	}

	nextRow := count + 1
	if err := c.update(ctx, sheet, nextRow, row.Values()); err != nil {
		c.invalidateLocked()
		return "", err
	}

	c.cachedSheet = sheet
	c.cachedRowCount = nextRow
	c.cacheExpiresAt = time.Now().Add(c.cacheValidDuration)

	return fmt.Sprintf("%s!A%d:G%d", sheet, nextRow, nextRow), nil
}

// rowCount returns the number of used rows, from cache when fresh. Callers
// hold mu.
func (c *Client) rowCount(ctx context.Context, sheet string) (int, error) {
	if c.cachedSheet == sheet && time.Now().Before(c.cacheExpiresAt) {
		return c.cachedRowCount, nil
	}

	rng := fmt.Sprintf("%s!A:A", sheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get sheet dimensions for %s: %w", sheet, err)
	}
	return len(resp.Values), nil
}

func (c *Client) update(ctx context.Context, sheet string, row int, values []any) error {
	rng := fmt.Sprintf("%s!A%d:G%d", sheet, row, row)
	vr := &gsheet.ValueRange{Values: [][]any{values}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update %s: %w", rng, err)
	}
	return nil
}

// InvalidateRowCache forces the next append to re-read the sheet size.
func (c *Client) InvalidateRowCache() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidateLocked()
}

func (c *Client) invalidateLocked() {
	c.cachedRowCount = 0
	c.cacheExpiresAt = time.Time{}
}

// yearPrefixedName returns "<year> <base>" unless base already starts with a 4-digit year.
func yearPrefixedName(base string, year int) string {
	base = strings.TrimSpace(base)
	if base == "" {
		return base
	}
	if len(base) >= 5 {
		if y, err := strconv.Atoi(base[0:4]); err == nil && base[4] == ' ' && y > 1900 && y < 3000 {
			return base
		}
	}
	return fmt.Sprintf("%d %s", year, base)
}
