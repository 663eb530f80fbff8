package service

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/internal/domain/enum"
	"github.com/sangkips/retailpos/internal/infrastructure/pdf"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/printer"
	"github.com/shopspring/decimal"
)

// PrinterService renders bills as receipts and sends them to the printer.
type PrinterService struct {
	printer  printer.Printer
	billing  *BillingService
	settings *SettingsService
}

// NewPrinterService creates a new printer service.
func NewPrinterService(p printer.Printer, billing *BillingService, settings *SettingsService) *PrinterService {
	if p == nil {
		p = printer.NewNullPrinter()
	}
	return &PrinterService{
		printer:  p,
		billing:  billing,
		settings: settings,
	}
}

// PrinterStatus returns the current printer status information.
type PrinterStatus struct {
	Configured bool   `json:"configured"`
	Connected  bool   `json:"connected"`
	Type       string `json:"type"`
	Target     string `json:"target,omitempty"`
}

// GetStatus returns printer connection status.
func (s *PrinterService) GetStatus(ctx context.Context) *PrinterStatus {
	return &PrinterStatus{
		Configured: s.printer.Kind() != printer.TypeNone,
		Connected:  s.printer.Connected(ctx),
		Type:       s.printer.Kind(),
		Target:     s.printer.Target(),
	}
}

// TestPrint prints a sample receipt with the current store header. The
// receipt is returned either way so a caller without hardware can preview it.
func (s *PrinterService) TestPrint(ctx context.Context) (*entity.Receipt, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}

	lines := []entity.BillLine{
		priceLine(1, &entity.Product{Name: "Test Item 1", Price: decimal.NewFromInt(10), CGST: decimal.NewFromInt(9), SGST: decimal.NewFromInt(9)}, 1),
		priceLine(2, &entity.Product{Name: "Test Item 2", Price: decimal.NewFromInt(5)}, 2),
	}
	totals := computeTotals(lines)
	sample := &entity.Bill{
		BillNumber:    "TEST-001",
		Subtotal:      totals.Subtotal,
		CGSTTotal:     totals.CGSTTotal,
		SGSTTotal:     totals.SGSTTotal,
		Tax:           totals.Tax,
		Total:         totals.Total,
		PaymentMethod: enum.PaymentMethodCash,
		CreatedAt:     time.Now(),
		Lines:         lines,
	}

	receipt := BuildReceipt(sample, settings)
	if err := s.printer.Print(ctx, FormatReceipt(receipt)); err != nil {
		return receipt, apperror.NewPersistenceError("print test page", err)
	}
	return receipt, nil
}

// Receipt builds the receipt of a stored bill.
func (s *PrinterService) Receipt(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	bill, settings, err := s.load(ctx, billID)
	if err != nil {
		return nil, err
	}
	return BuildReceipt(bill, settings), nil
}

// PrintBill sends a stored bill to the receipt printer.
func (s *PrinterService) PrintBill(ctx context.Context, billID uuid.UUID) (*entity.Receipt, error) {
	receipt, err := s.Receipt(ctx, billID)
	if err != nil {
		return nil, err
	}

	if err := s.printer.Print(ctx, FormatReceipt(receipt)); err != nil {
		log.Error().Err(err).Str("bill_number", receipt.BillNumber).Str("printer", s.printer.Kind()).Msg("receipt print failed")
		return receipt, apperror.NewPersistenceError("print receipt", err)
	}
	log.Info().Str("bill_number", receipt.BillNumber).Str("printer", s.printer.Kind()).Msg("receipt printed")
	return receipt, nil
}

// WriteReceiptPDF renders a stored bill as a PDF sized to the receipt paper
// and returns a file name for it.
func (s *PrinterService) WriteReceiptPDF(ctx context.Context, billID uuid.UUID, w io.Writer) (string, error) {
	bill, settings, err := s.load(ctx, billID)
	if err != nil {
		return "", err
	}
	if err := pdf.WriteReceipt(w, BuildReceipt(bill, settings), settings.Logo); err != nil {
		return "", err
	}
	return fmt.Sprintf("bill-%s.pdf", bill.BillNumber), nil
}

func (s *PrinterService) load(ctx context.Context, billID uuid.UUID) (*entity.Bill, *entity.StoreSettings, error) {
	bill, err := s.billing.GetBill(ctx, billID)
	if err != nil {
		return nil, nil, err
	}
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, nil, err
	}
	return bill, settings, nil
}
