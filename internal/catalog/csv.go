package catalog

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ImportResult summarizes one CSV bulk upload. Row failures do not abort the
// import; every failed line is reported back to the uploader.
type ImportResult struct {
	Created int      `json:"created"`
	Updated int      `json:"updated"`
	Errors  []string `json:"errors,omitempty"`
}

// ImportCSV reads rows of the form `name,price,quantity` (header required)
// and creates the vendor's items, or overwrites price and quantity for items
// the vendor already sells under the same name.
func ImportCSV(ctx context.Context, repo Repository, vendorID string, r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 3 || !strings.EqualFold(header[0], "name") ||
		!strings.EqualFold(header[1], "price") || !strings.EqualFold(header[2], "quantity") {
		return nil, errors.New("csv header must be: name,price,quantity")
	}

	res := &ImportResult{}
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if err := importRow(ctx, repo, vendorID, rec, res); err != nil {
			res.Errors = append(res.Errors, fmt.Sprintf("line %d: %v", line, err))
		}
	}
	return res, nil
}

func importRow(ctx context.Context, repo Repository, vendorID string, rec []string, res *ImportResult) error {
	if len(rec) < 3 {
		return errors.New("expected 3 columns")
	}
	name := strings.TrimSpace(rec[0])
	if name == "" {
		return errors.New("empty name")
	}
	price, err := decimal.NewFromString(strings.TrimSpace(rec[1]))
	if err != nil || price.IsNegative() {
		return fmt.Errorf("invalid price %q", rec[1])
	}
	qty, err := strconv.Atoi(strings.TrimSpace(rec[2]))
	if err != nil || qty < 0 {
		return fmt.Errorf("invalid quantity %q", rec[2])
	}

	existing, err := repo.GetByName(ctx, name)
	switch {
	case err == nil:
		if existing.VendorID != vendorID {
			return fmt.Errorf("name %q belongs to another vendor", name)
		}
		existing.Price = price.StringFixed(2)
		existing.Quantity = qty
		if err := repo.Update(ctx, existing, true); err != nil {
			return err
		}
		res.Updated++
		return nil
	case errors.Is(err, ErrNotFound):
		it := &Item{
			ID:       uuid.NewString(),
			Name:     name,
			VendorID: vendorID,
			Price:    price.StringFixed(2),
			Quantity: qty,
			IsActive: true,
		}
		if err := repo.Create(ctx, it); err != nil {
			return err
		}
		res.Created++
		return nil
	default:
		return err
	}
}
