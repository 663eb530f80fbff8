package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/upi"
	"github.com/shopspring/decimal"
)

// PaymentLink is a UPI deep link with its QR code.
type PaymentLink struct {
	URI        string          `json:"uri"`
	QRCode     string          `json:"qr_code"`
	Amount     decimal.Decimal `json:"amount"`
	Note       string          `json:"note"`
	BillNumber string          `json:"bill_number,omitempty"`
}

// PaymentService builds UPI payment links against the store's UPI ID.
type PaymentService struct {
	billing  *BillingService
	settings *SettingsService
	qrSize   int
}

// NewPaymentService creates a new payment service
func NewPaymentService(billing *BillingService, settings *SettingsService) *PaymentService {
	return &PaymentService{
		billing:  billing,
		settings: settings,
		qrSize:   upi.DefaultQRSize,
	}
}

// LinkForBill builds a link paying the total of a stored bill.
func (s *PaymentService) LinkForBill(ctx context.Context, billID uuid.UUID) (*PaymentLink, error) {
	bill, err := s.billing.GetBill(ctx, billID)
	if err != nil {
		return nil, err
	}
	link, err := s.link(ctx, bill.Total, upi.NoteForBill(bill.BillNumber))
	if err != nil {
		return nil, err
	}
	link.BillNumber = bill.BillNumber
	return link, nil
}

// LinkForAmount builds a link for an arbitrary amount, used to show a QR
// before the bill is committed.
func (s *PaymentService) LinkForAmount(ctx context.Context, amount decimal.Decimal, note string) (*PaymentLink, error) {
	return s.link(ctx, amount, note)
}

func (s *PaymentService) link(ctx context.Context, amount decimal.Decimal, note string) (*PaymentLink, error) {
	settings, err := s.settings.GetSettings(ctx)
	if err != nil {
		return nil, err
	}
	if settings.UPIID == "" {
		return nil, apperror.NewFieldError("upi_id", "UPI ID is not configured in store settings")
	}
	if note == "" {
		note = upi.DefaultNote
	}

	uri, err := upi.BuildURI(upi.Payment{
		VPA:       settings.UPIID,
		PayeeName: settings.Name,
		Amount:    amount,
		Note:      note,
	})
	if err != nil {
		return nil, err
	}

	png, err := upi.QRCode(uri, s.qrSize)
	if err != nil {
		return nil, apperror.NewPersistenceError("render qr code", err)
	}

	return &PaymentLink{
		URI:    uri,
		QRCode: upi.DataURL(png),
		Amount: amount.Round(2),
		Note:   note,
	}, nil
}
