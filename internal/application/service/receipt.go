package service

import (
	"strconv"
	"time"

	"github.com/sangkips/retailpos/internal/domain/entity"
	"github.com/sangkips/retailpos/pkg/money"
	"github.com/sangkips/retailpos/pkg/printer"
)

const receiptFooter = "Thank you for shopping with us!"

// BuildReceipt lays out bill for printing with the store identity from
// settings. It has no side effects; every renderer works from its output.
func BuildReceipt(bill *entity.Bill, settings *entity.StoreSettings) *entity.Receipt {
	if settings == nil {
		settings = entity.DefaultStoreSettings()
	}
	at := bill.CreatedAt.In(time.Local)

	r := &entity.Receipt{
		Header: entity.ReceiptHeader{
			StoreName: settings.Name,
			Address:   settings.Address,
			Phone:     settings.Phone,
			Email:     settings.Email,
			TaxID:     settings.TaxID,
			HasLogo:   settings.Logo != "",
		},
		BillNumber:       bill.BillNumber,
		Date:             at.Format("02/01/2006"),
		Time:             at.Format("03:04 PM"),
		Items:            make([]entity.ReceiptItem, 0, len(bill.Lines)),
		Subtotal:         money.Format(bill.Subtotal),
		CGST:             money.Format(bill.CGSTTotal),
		SGST:             money.Format(bill.SGSTTotal),
		Total:            money.Format(bill.Total),
		PaymentMethod:    bill.PaymentMethod.Label(),
		PaymentReference: bill.PaymentReference,
		WidthMM:          settings.ReceiptWidthMM,
		HeightMM:         settings.ReceiptHeightMM,
	}
	if r.WidthMM <= 0 {
		r.WidthMM = entity.DefaultReceiptWidthMM
	}
	if r.HeightMM <= 0 {
		r.HeightMM = entity.DefaultReceiptHeightMM
	}

	switch {
	case bill.CustomerName != "" && bill.CustomerPhone != "":
		r.Customer = bill.CustomerName + " (" + bill.CustomerPhone + ")"
	case bill.CustomerName != "":
		r.Customer = bill.CustomerName
	case bill.CustomerPhone != "":
		r.Customer = bill.CustomerPhone
	}

	for _, l := range bill.Lines {
		r.Items = append(r.Items, entity.ReceiptItem{
			Name:     l.Name,
			HSN:      l.HSN,
			Quantity: l.Quantity,
			Rate:     money.Format(l.Price),
			Amount:   money.Format(money.Round(l.Amount)),
		})
	}
	return r
}

// FormatReceipt converts a Receipt into ESC/POS bytes, 32 columns on 58 mm
// paper and 48 on anything wider.
func FormatReceipt(r *entity.Receipt) []byte {
	doc := printer.NewDocument(printer.CharsForPaper(r.WidthMM))

	doc.SetAlign(printer.AlignCenter).
		SetBold(true).
		SetFontSize(printer.FontDouble).
		Text(r.Header.StoreName).
		SetFontSize(printer.FontNormal).
		SetBold(false).
		Text(r.Header.Address)
	if r.Header.Phone != "" {
		doc.Text("Tel: " + r.Header.Phone)
	}
	if r.Header.TaxID != "" {
		doc.Text("GSTIN: " + r.Header.TaxID)
	}

	doc.SetAlign(printer.AlignLeft).
		Separator('-').
		KeyValue("Bill No:", r.BillNumber).
		KeyValue("Date: "+r.Date, "Time: "+r.Time)
	if r.Customer != "" {
		doc.KeyValue("Customer:", r.Customer)
	}
	doc.Separator('-')

	doc.SetBold(true).
		Row(receiptColumns("Item", "Qty", "Rate", "Amt")...).
		SetBold(false).
		Separator('-')
	for _, it := range r.Items {
		doc.Row(receiptColumns(it.Name, strconv.Itoa(it.Quantity), it.Rate, it.Amount)...)
	}
	doc.Separator('-')

	doc.KeyValue("Subtotal:", r.Subtotal).
		KeyValue("CGST:", r.CGST).
		KeyValue("SGST:", r.SGST).
		Separator('-').
		SetBold(true).
		KeyValue("Total:", r.Total).
		SetBold(false).
		LineFeed().
		KeyValue("Payment Method:", r.PaymentMethod)
	if r.PaymentReference != "" {
		doc.KeyValue("Reference:", r.PaymentReference)
	}

	doc.SetAlign(printer.AlignCenter).
		LineFeed().
		Text(receiptFooter).
		SetAlign(printer.AlignLeft).
		FeedLines(3).
		PartialCut()

	return doc.Bytes()
}

// 11 + 4 + 8 + 9 fills 32 columns exactly and leaves amounts up to 99999.99
// untruncated on the narrow roll.
func receiptColumns(item, qty, rate, amount string) []printer.Column {
	return []printer.Column{
		{Text: item, Weight: 11},
		{Text: qty, Weight: 4, AlignRight: true},
		{Text: rate, Weight: 8, AlignRight: true},
		{Text: amount, Weight: 9, AlignRight: true},
	}
}
