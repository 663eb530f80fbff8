package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/printer"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingPrinter keeps what it was asked to print.
type recordingPrinter struct {
	jobs [][]byte
	err  error
}

func (p *recordingPrinter) Print(_ context.Context, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.jobs = append(p.jobs, data)
	return nil
}

func (p *recordingPrinter) Connected(context.Context) bool { return p.err == nil }
func (p *recordingPrinter) Kind() string                   { return printer.TypeNetwork }
func (p *recordingPrinter) Target() string                 { return "10.0.0.5:9100" }

func sampleBill() *entity.Bill {
	lines := []entity.BillLine{
		priceLine(1, &entity.Product{Name: "Shampoo", HSN: "3305", Price: decimal.NewFromInt(100), CGST: decimal.NewFromInt(9), SGST: decimal.NewFromInt(9)}, 2),
	}
	totals := computeTotals(lines)
	return &entity.Bill{
		BillNumber:       "INV-250101093000-0A1F",
		Subtotal:         totals.Subtotal,
		CGSTTotal:        totals.CGSTTotal,
		SGSTTotal:        totals.SGSTTotal,
		Tax:              totals.Tax,
		Total:            totals.Total,
		PaymentMethod:    enum.PaymentMethodUPI,
		PaymentReference: "UTR42",
		CustomerName:     "Asha",
		CustomerPhone:    "9000000001",
		CreatedAt:        fixedNow,
		Lines:            lines,
	}
}

func TestBuildReceipt(t *testing.T) {
	settings := entity.DefaultStoreSettings()
	settings.ReceiptWidthMM = 0

	r := BuildReceipt(sampleBill(), settings)

	local := fixedNow.In(time.Local)
	assert.Equal(t, "My Retail Store", r.Header.StoreName)
	assert.Equal(t, local.Format("02/01/2006"), r.Date)
	assert.Equal(t, local.Format("03:04 PM"), r.Time)
	assert.Equal(t, "Asha (9000000001)", r.Customer)
	assert.Equal(t, "UPI", r.PaymentMethod)
	assert.Equal(t, "200.00", r.Subtotal)
	assert.Equal(t, "18.00", r.CGST)
	assert.Equal(t, "236.00", r.Total)
	assert.Equal(t, entity.DefaultReceiptWidthMM, r.WidthMM)
	require.Len(t, r.Items, 1)
	assert.Equal(t, entity.ReceiptItem{Name: "Shampoo", HSN: "3305", Quantity: 2, Rate: "100.00", Amount: "200.00"}, r.Items[0])
}

func TestFormatReceiptNarrowPaper(t *testing.T) {
	settings := entity.DefaultStoreSettings()
	settings.ReceiptWidthMM = 58
	out := string(FormatReceipt(BuildReceipt(sampleBill(), settings)))

	assert.Contains(t, out, "My Retail Store")
	assert.Contains(t, out, "GSTIN: 22AAAAA0000A1Z5")
	assert.Contains(t, out, "Reference:                 UTR42")
	assert.Contains(t, out, "Total:                    236.00")
	assert.Contains(t, out, receiptFooter)
	assert.Contains(t, out, "Shampoo       2  100.00   200.00")

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "---") {
			assert.Len(t, line, printer.NarrowPaperChars)
		}
	}
}

func TestPrinterServicePrintBill(t *testing.T) {
	f := newFEFOFixture(t)
	p := f.product("Soap", "30.00", "9", "9")
	f.batch(p.ID, "Main", "S1", 10, nil)
	bill, err := f.billing.Checkout(f.ctx, cash(CartLine{ProductID: p.ID, Quantity: 1}))
	require.NoError(t, err)

	dev := &recordingPrinter{}
	svc := NewPrinterService(dev, f.billing, f.settings)

	status := svc.GetStatus(f.ctx)
	assert.True(t, status.Configured)
	assert.True(t, status.Connected)

	receipt, err := svc.PrintBill(f.ctx, bill.ID)
	require.NoError(t, err)
	assert.Equal(t, bill.BillNumber, receipt.BillNumber)
	require.Len(t, dev.jobs, 1)
	assert.True(t, bytes.Contains(dev.jobs[0], []byte(bill.BillNumber)))

	dev.err = errors.New("paper out")
	_, err = svc.PrintBill(f.ctx, bill.ID)
	assert.True(t, errors.Is(err, apperror.ErrPersistence))

	var pdf bytes.Buffer
	name, err := svc.WriteReceiptPDF(f.ctx, bill.ID, &pdf)
	require.NoError(t, err)
	assert.Equal(t, "bill-"+bill.BillNumber+".pdf", name)
	assert.True(t, bytes.HasPrefix(pdf.Bytes(), []byte("%PDF")))
}

func TestPrinterServiceWithoutPrinter(t *testing.T) {
	f := newFEFOFixture(t)
	svc := NewPrinterService(nil, f.billing, f.settings)

	status := svc.GetStatus(f.ctx)
	assert.False(t, status.Configured)
	assert.Equal(t, printer.TypeNone, status.Type)

	receipt, err := svc.TestPrint(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "TEST-001", receipt.BillNumber)
	assert.Len(t, receipt.Items, 2)
}
