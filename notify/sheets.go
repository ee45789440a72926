package notify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"google.golang.org/api/option"
	sheetsv4 "google.golang.org/api/sheets/v4"
)

const SheetPaidRegistrations = "Paid_Registrations"

// SheetsNotifier appends paid registrations to a Google spreadsheet.
type SheetsNotifier struct {
	srv           *sheetsv4.Service
	spreadsheetID string
}

// NewSheetsNotifier accepts either a path to a service account file or the
// JSON document itself.
func NewSheetsNotifier(ctx context.Context, serviceAccount, spreadsheetID string) (*SheetsNotifier, error) {
	creds := option.WithCredentialsFile(serviceAccount)
	if strings.HasPrefix(strings.TrimSpace(serviceAccount), "{") {
		creds = option.WithCredentialsJSON([]byte(serviceAccount))
	}

	srv, err := sheetsv4.NewService(ctx, creds, option.WithScopes(sheetsv4.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return &SheetsNotifier{srv: srv, spreadsheetID: spreadsheetID}, nil
}

func (n *SheetsNotifier) Notify(ctx context.Context, e Event) error {
	if e.Type != RegistrationPaid {
		return nil
	}
	vr := &sheetsv4.ValueRange{Values: [][]interface{}{paidRow(e)}}
	_, err := n.srv.Spreadsheets.Values.Append(n.spreadsheetID, SheetPaidRegistrations+"!A:Z", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("sheets append: %w", err)
	}
	return nil
}

func paidRow(e Event) []interface{} {
	return []interface{}{
		e.OccurredAt.Format(time.RFC3339),
		e.RegistrationID,
		e.CampID,
		e.CampName,
		e.ParticipantName,
		e.ParticipantEmail,
		e.CampFees,
		e.TransactionID,
	}
}
