// Package upi builds UPI deep links (upi://pay?...) and their QR codes.
package upi

import (
	"encoding/base64"
	"net/url"
	"regexp"
	"strings"

	"github.com/sangkips/retailpos/pkg/apperror"
	"github.com/sangkips/retailpos/pkg/money"
	"github.com/shopspring/decimal"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	Currency        = "INR"
	DefaultQRSize   = 200
	DefaultNote     = "Payment"
	billNotePrefix  = "Bill #"
	maxPayeeNameLen = 99
)

var vpaPattern = regexp.MustCompile(`^[a-zA-Z0-9._-]+@[a-zA-Z0-9]+$`)

// Payment is everything encoded into one link.
type Payment struct {
	VPA          string
	PayeeName    string
	Amount       decimal.Decimal
	Note         string
	MerchantCode string
}

// ValidVPA reports whether vpa looks like local-part@provider.
func ValidVPA(vpa string) bool {
	return vpaPattern.MatchString(vpa)
}

// NoteForBill is the transaction note used when a link pays a bill.
func NoteForBill(billNumber string) string {
	if billNumber == "" {
		return DefaultNote
	}
	return billNotePrefix + billNumber
}

// Validate returns a validation AppError listing every bad field.
func (p Payment) Validate() error {
	var errs []apperror.FieldError
	if !ValidVPA(p.VPA) {
		errs = append(errs, apperror.FieldError{Field: "upi_id", Message: "UPI ID must look like name@provider"})
	}
	if strings.TrimSpace(p.PayeeName) == "" {
		errs = append(errs, apperror.FieldError{Field: "payee_name", Message: "Payee name is required"})
	}
	if !p.Amount.IsPositive() {
		errs = append(errs, apperror.FieldError{Field: "amount", Message: "Amount must be greater than zero"})
	}
	if len(errs) > 0 {
		return apperror.NewValidationError(errs)
	}
	return nil
}

// BuildURI returns upi://pay?pa=..&pn=..&am=..&tn=..[&mc=..]&cu=INR with the
// parameters in that order. Values are form-encoded.
func BuildURI(p Payment) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}

	note := p.Note
	if note == "" {
		note = DefaultNote
	}
	name := strings.TrimSpace(p.PayeeName)
	if r := []rune(name); len(r) > maxPayeeNameLen {
		name = string(r[:maxPayeeNameLen])
	}

	var sb strings.Builder
	sb.WriteString("upi://pay?")
	param := func(key, value string, first bool) {
		if !first {
			sb.WriteByte('&')
		}
		sb.WriteString(key)
		sb.WriteByte('=')
		sb.WriteString(url.QueryEscape(value))
	}
	param("pa", p.VPA, true)
	param("pn", name, false)
	param("am", money.Format(money.Round(p.Amount)), false)
	param("tn", note, false)
	if p.MerchantCode != "" {
		param("mc", p.MerchantCode, false)
	}
	param("cu", Currency, false)
	return sb.String(), nil
}

// QRCode renders uri as a square PNG of size pixels.
func QRCode(uri string, size int) ([]byte, error) {
	if size <= 0 {
		size = DefaultQRSize
	}
	return qrcode.Encode(uri, qrcode.Medium, size)
}

// DataURL wraps a PNG for direct use in an <img src>.
func DataURL(png []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
}
