// internal/output/output.go
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"affinet/internal/affiliate"
)

// Output formats for list and get.
const (
	FormatTable = "table"
	FormatCSV   = "csv"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
	FormatIDs   = "ids"
	FormatCount = "count"
)

// DefaultFields is the column order used when the operator does not narrow
// the output.
var DefaultFields = []string{
	"affiliate_id", "user_id", "user_login", "rate", "rate_type",
	"payment_email", "status", "earnings", "referrals", "visits",
	"date_registered",
}

// Value returns the named field from a record. Unknown fields are an error so
// typos surface instead of printing blanks.
func Value(rec affiliate.Record, field string) (any, error) {
	switch field {
	case "affiliate_id":
		return rec.AffiliateID, nil
	case "user_id":
		return rec.UserID, nil
	case "user_login":
		return rec.UserLogin, nil
	case "rate":
		return rec.Rate, nil
	case "rate_type":
		return rec.RateType, nil
	case "payment_email":
		return rec.PaymentEmail, nil
	case "status":
		return rec.Status, nil
	case "earnings":
		return rec.Earnings, nil
	case "referrals":
		return rec.Referrals, nil
	case "visits":
		return rec.Visits, nil
	case "date_registered":
		return rec.DateRegistered.Format("2006-01-02 15:04:05"), nil
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
}

func formatValue(v any) string {
	switch n := v.(type) {
	case string:
		return n
	case int64:
		return strconv.FormatInt(n, 10)
	default:
		return fmt.Sprint(v)
	}
}

// Render writes records in the requested format. The count format is handled
// by the caller, which never materializes records for it.
func Render(w io.Writer, records []affiliate.Record, fields []string, format string) error {
	if len(fields) == 0 {
		fields = DefaultFields
	}

	switch format {
	case FormatTable, "":
		return renderTable(w, records, fields)
	case FormatCSV:
		return renderCSV(w, records, fields)
	case FormatJSON:
		rows, err := toMaps(records, fields)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	case FormatYAML:
		rows, err := toMaps(records, fields)
		if err != nil {
			return err
		}
		return yaml.NewEncoder(w).Encode(rows)
	case FormatIDs:
		for i, rec := range records {
			if i > 0 {
				fmt.Fprint(w, " ")
			}
			fmt.Fprintf(w, "%d", rec.AffiliateID)
		}
		fmt.Fprintln(w)
		return nil
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// RenderOne writes a single record; the table format becomes a field/value
// listing rather than a one-row table.
func RenderOne(w io.Writer, rec affiliate.Record, fields []string, format string) error {
	if len(fields) == 0 {
		fields = DefaultFields
	}

	switch format {
	case FormatTable, "":
		tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
		for _, field := range fields {
			v, err := Value(rec, field)
			if err != nil {
				return err
			}
			fmt.Fprintf(tw, "%s\t%s\n", field, formatValue(v))
		}
		return tw.Flush()
	case FormatJSON:
		row, err := toMap(rec, fields)
		if err != nil {
			return err
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(row)
	case FormatYAML:
		row, err := toMap(rec, fields)
		if err != nil {
			return err
		}
		return yaml.NewEncoder(w).Encode(row)
	case FormatCSV:
		return renderCSV(w, []affiliate.Record{rec}, fields)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, records []affiliate.Record, fields []string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for i, field := range fields {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, field)
	}
	fmt.Fprintln(tw)

	for _, rec := range records {
		for i, field := range fields {
			v, err := Value(rec, field)
			if err != nil {
				return err
			}
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			fmt.Fprint(tw, formatValue(v))
		}
		fmt.Fprintln(tw)
	}
	return tw.Flush()
}

func renderCSV(w io.Writer, records []affiliate.Record, fields []string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(fields); err != nil {
		return err
	}
	for _, rec := range records {
		row := make([]string, 0, len(fields))
		for _, field := range fields {
			v, err := Value(rec, field)
			if err != nil {
				return err
			}
			row = append(row, formatValue(v))
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func toMaps(records []affiliate.Record, fields []string) ([]map[string]any, error) {
	rows := make([]map[string]any, 0, len(records))
	for _, rec := range records {
		row, err := toMap(rec, fields)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func toMap(rec affiliate.Record, fields []string) (map[string]any, error) {
	row := make(map[string]any, len(fields))
	for _, field := range fields {
		v, err := Value(rec, field)
		if err != nil {
			return nil, err
		}
		row[field] = v
	}
	return row, nil
}
