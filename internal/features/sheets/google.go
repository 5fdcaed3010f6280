package sheets

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"

	"board-sync/internal/common/apperr"
	"board-sync/internal/config"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// GoogleReader reads ranges from one spreadsheet through the Sheets v4 API.
type GoogleReader struct {
	service       *sheets.Service
	spreadsheetID string
}

func NewGoogleReader(ctx context.Context, spreadsheetID string, opts ...option.ClientOption) (*GoogleReader, error) {
	if spreadsheetID == "" {
		return nil, apperr.E(apperr.KindFailedPrecondition, "sheets", errors.New("spreadsheet id is not configured"))
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &GoogleReader{
		service:       service,
		spreadsheetID: spreadsheetID,
	}, nil
}

// NewGoogleReaderWithJSONKeyData authenticates with a service account key.
func NewGoogleReaderWithJSONKeyData(ctx context.Context, spreadsheetID string, jsonData []byte) (*GoogleReader, error) {
	creds, err := google.CredentialsFromJSON(ctx, jsonData, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, apperr.E(apperr.KindFailedPrecondition, "sheets", fmt.Errorf("failed to parse credentials: %w", err))
	}
	return NewGoogleReader(ctx, spreadsheetID, option.WithCredentials(creds))
}

// NewGoogleReaderWithDefaultCredentials uses Application Default Credentials.
func NewGoogleReaderWithDefaultCredentials(ctx context.Context, spreadsheetID string) (*GoogleReader, error) {
	tokenSource, err := google.DefaultTokenSource(ctx, sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, apperr.E(apperr.KindFailedPrecondition, "sheets", fmt.Errorf("failed to get default token source: %w", err))
	}
	return NewGoogleReader(ctx, spreadsheetID, option.WithTokenSource(tokenSource))
}

// NewReader builds the Reader selected by cfg.Source.
func NewReader(ctx context.Context, cfg config.SheetsConfig) (Reader, error) {
	switch cfg.Source {
	case "xlsx":
		return NewXLSXReader(cfg.XLSXPath), nil
	case "google", "":
		if cfg.CredentialsFile == "" {
			return NewGoogleReaderWithDefaultCredentials(ctx, cfg.SpreadsheetID)
		}
		data, err := os.ReadFile(cfg.CredentialsFile)
		if err != nil {
			return nil, apperr.E(apperr.KindFailedPrecondition, "sheets", fmt.Errorf("failed to read JSON key file: %w", err))
		}
		return NewGoogleReaderWithJSONKeyData(ctx, cfg.SpreadsheetID, data)
	default:
		return nil, apperr.E(apperr.KindFailedPrecondition, "sheets", fmt.Errorf("unknown sheets source %q", cfg.Source))
	}
}

func (r *GoogleReader) FetchRange(ctx context.Context, ref RangeRef) ([]RawRow, error) {
	resp, err := r.service.Spreadsheets.Values.Get(r.spreadsheetID, ref.A1()).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("fetch "+ref.A1(), err)
	}

	rows := make([]RawRow, len(resp.Values))
	for i, values := range resp.Values {
		row := make(RawRow, len(values))
		for j, v := range values {
			row[j] = cellString(v)
		}
		rows[i] = row
	}
	return rows, nil
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	default:
		return fmt.Sprint(val)
	}
}

func classify(op string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch {
		case gerr.Code == http.StatusTooManyRequests || gerr.Code >= 500:
			return apperr.E(apperr.KindUnavailable, op, err)
		case gerr.Code == http.StatusUnauthorized:
			return apperr.E(apperr.KindUnauthorized, op, err)
		default:
			return apperr.E(apperr.KindFailedPrecondition, op, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.E(apperr.KindUnavailable, op, err)
	}
	return apperr.E(apperr.KindInternal, op, err)
}
