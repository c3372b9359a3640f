package notify

import (
	"bytes"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

// invoicePDF renders the back-office invoice attached to invoice_ready mail.
func invoicePDF(inv *Invoice) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, "Invoice for order "+inv.OrderID)
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 8, "Customer: "+inv.CustomerName+" <"+inv.CustomerEmail+">")
	pdf.Ln(8)
	pdf.Cell(0, 8, "Placed at: "+inv.CreatedAt.Format("2006-01-02 15:04"))
	pdf.Ln(12)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "1", 0, "", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Price", "1", 0, "R", false, 0, "")
	pdf.CellFormat(35, 8, "Total", "1", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, l := range inv.Lines {
		pdf.CellFormat(90, 8, l.Name, "1", 0, "", false, 0, "")
		pdf.CellFormat(20, 8, strconv.Itoa(l.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, l.Price, "1", 0, "R", false, 0, "")
		pdf.CellFormat(35, 8, l.Total, "1", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(145, 10, "Order total", "", 0, "R", false, 0, "")
	pdf.CellFormat(35, 10, inv.Total, "1", 1, "R", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
