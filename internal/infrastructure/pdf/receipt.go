// Package pdf renders receipts as PDF documents sized to the receipt paper.
package pdf

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/sangkips/retailpos/internal/domain/entity"
)

const (
	margin     = 3.0
	lineHeight = 4.0
	logoHeight = 14.0
)

// WriteReceipt renders r onto a page of r.WidthMM x r.HeightMM and writes the
// PDF to w. logo is the stored data URL; unsupported or broken logos are
// skipped rather than failing the receipt.
func WriteReceipt(w io.Writer, r *entity.Receipt, logo string) error {
	width, height := float64(r.WidthMM), float64(r.HeightMM)
	if width <= 0 {
		width = entity.DefaultReceiptWidthMM
	}
	if height <= 0 {
		height = entity.DefaultReceiptHeightMM
	}

	doc := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: width, Ht: height},
	})
	doc.SetMargins(margin, margin, margin)
	doc.SetAutoPageBreak(true, margin)
	doc.AddPage()

	tr := doc.UnicodeTranslatorFromDescriptor("")
	contentW := width - 2*margin
	// small rolls get a smaller font
	base := 8.0
	if width <= 58 {
		base = 7.0
	}

	cell := func(w float64, text, align string, ln int) {
		doc.CellFormat(w, lineHeight, tr(text), "", ln, align, false, 0, "")
	}
	rule := func() {
		y := doc.GetY() + 1
		doc.SetDashPattern([]float64{0.8, 0.6}, 0)
		doc.Line(margin, y, width-margin, y)
		doc.SetDashPattern([]float64{}, 0)
		doc.Ln(2)
	}

	if r.Header.HasLogo {
		drawLogo(doc, logo, width)
	}

	doc.SetFont("Helvetica", "B", base+3)
	doc.CellFormat(contentW, lineHeight+2, tr(r.Header.StoreName), "", 1, "C", false, 0, "")
	doc.SetFont("Helvetica", "", base-1)
	if r.Header.Address != "" {
		doc.MultiCell(contentW, lineHeight-0.5, tr(r.Header.Address), "", "C", false)
	}
	if r.Header.Phone != "" {
		cell(contentW, "Tel: "+r.Header.Phone, "C", 1)
	}
	if r.Header.TaxID != "" {
		cell(contentW, "GSTIN: "+r.Header.TaxID, "C", 1)
	}
	rule()

	doc.SetFont("Helvetica", "", base)
	cell(contentW, "Bill No: "+r.BillNumber, "L", 1)
	cell(contentW/2, "Date: "+r.Date, "L", 0)
	cell(contentW/2, "Time: "+r.Time, "R", 1)
	if r.Customer != "" {
		cell(contentW, "Customer: "+r.Customer, "L", 1)
	}
	rule()

	colItem := contentW * 0.46
	colQty := contentW * 0.12
	colRate := contentW * 0.21
	colAmt := contentW - colItem - colQty - colRate

	doc.SetFont("Helvetica", "B", base-1)
	cell(colItem, "Item", "L", 0)
	cell(colQty, "Qty", "R", 0)
	cell(colRate, "Rate", "R", 0)
	cell(colAmt, "Amt", "R", 1)
	rule()

	doc.SetFont("Helvetica", "", base-1)
	for _, it := range r.Items {
		doc.CellFormat(colItem, lineHeight, truncate(doc, tr(it.Name), colItem), "", 0, "L", false, 0, "")
		cell(colQty, fmt.Sprintf("%d", it.Quantity), "R", 0)
		cell(colRate, it.Rate, "R", 0)
		cell(colAmt, it.Amount, "R", 1)
		if it.HSN != "" {
			doc.SetFont("Helvetica", "I", base-2)
			cell(colItem, "HSN "+it.HSN, "L", 1)
			doc.SetFont("Helvetica", "", base-1)
		}
	}
	rule()

	doc.SetFont("Helvetica", "", base)
	labelW := contentW - colAmt - colRate
	totalLine := func(label, value string) {
		cell(labelW, label, "L", 0)
		cell(colAmt+colRate, "Rs. "+value, "R", 1)
	}
	totalLine("Subtotal:", r.Subtotal)
	totalLine("CGST:", r.CGST)
	totalLine("SGST:", r.SGST)
	rule()
	doc.SetFont("Helvetica", "B", base+1)
	totalLine("Total:", r.Total)

	doc.Ln(2)
	doc.SetFont("Helvetica", "", base-1)
	cell(contentW, "Payment Method: "+r.PaymentMethod, "L", 1)
	if r.PaymentReference != "" {
		cell(contentW, "Reference: "+r.PaymentReference, "L", 1)
	}

	doc.Ln(3)
	cell(contentW, "Thank you for shopping with us!", "C", 1)

	if err := doc.Error(); err != nil {
		return fmt.Errorf("pdf: render receipt %s: %w", r.BillNumber, err)
	}
	if err := doc.Output(w); err != nil {
		return fmt.Errorf("pdf: write receipt %s: %w", r.BillNumber, err)
	}
	return nil
}

// drawLogo places a PNG or JPEG data URL centred at the top of the page.
func drawLogo(doc *fpdf.Fpdf, dataURL string, pageW float64) {
	imgType, raw, ok := decodeDataURL(dataURL)
	if !ok {
		return
	}
	opts := fpdf.ImageOptions{ImageType: imgType, ReadDpi: true}
	info := doc.RegisterImageOptionsReader("logo", opts, bytes.NewReader(raw))
	if doc.Err() {
		// drop the error so the rest of the receipt still renders
		doc.ClearError()
		return
	}
	w := logoHeight * info.Width() / info.Height()
	doc.ImageOptions("logo", (pageW-w)/2, doc.GetY(), w, logoHeight, false, opts, 0, "")
	doc.Ln(logoHeight + 1)
}

func decodeDataURL(s string) (imgType string, data []byte, ok bool) {
	meta, payload, found := strings.Cut(s, ",")
	if !found || !strings.HasPrefix(meta, "data:image/") || !strings.HasSuffix(meta, ";base64") {
		return "", nil, false
	}
	switch strings.TrimSuffix(strings.TrimPrefix(meta, "data:image/"), ";base64") {
	case "png":
		imgType = "PNG"
	case "jpeg", "jpg":
		imgType = "JPG"
	default:
		return "", nil, false
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil || len(data) == 0 {
		return "", nil, false
	}
	return imgType, data, true
}

// truncate shortens s until it fits width, marking the cut with "..".
func truncate(doc *fpdf.Fpdf, s string, width float64) string {
	if doc.GetStringWidth(s) <= width-1 {
		return s
	}
	// s is already single-byte cp1252 here
	b := []byte(s)
	for len(b) > 0 && doc.GetStringWidth(string(b)+"..") > width-1 {
		b = b[:len(b)-1]
	}
	return string(b) + ".."
}
