// Package invoice renders bilingual simplified tax invoices as Excel
// workbooks.
package invoice

import (
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/Nicolas4485/allam-demo-payment-integration/internal/payment"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/vat"
	"github.com/Nicolas4485/allam-demo-payment-integration/internal/zatca"
)

// SheetName is the single worksheet of an exported invoice
const SheetName = "Invoice"

const qrImageSize = 200

// Document is the data printed on one simplified tax invoice
type Document struct {
	Number      string
	Seller      payment.Seller
	Timestamp   string
	Currency    string
	Subtotal    decimal.Decimal
	VAT         decimal.Decimal
	Total       decimal.Decimal
	QRCode      string
	Description string
}

// FromQuote builds a document for a quoted sale. A random number is assigned
// since nothing has been charged yet.
func FromQuote(q *payment.Quote) Document {
	return Document{
		Number:    "Q-" + uuid.NewString(),
		Seller:    q.Seller,
		Timestamp: q.Timestamp,
		Currency:  q.Currency,
		Subtotal:  q.Subtotal,
		VAT:       q.VAT,
		Total:     q.Total,
		QRCode:    q.QRCode,
	}
}

// FromResult builds a document for a completed charge, numbered by the
// gateway charge id.
func FromResult(r *payment.Result, seller payment.Seller) Document {
	number := r.ChargeID
	if number == "" {
		number = uuid.NewString()
	}
	return Document{
		Number:    number,
		Seller:    seller,
		Timestamp: r.Timestamp,
		Currency:  r.Currency,
		Subtotal:  r.Subtotal,
		VAT:       r.VAT,
		Total:     r.Total,
		QRCode:    r.QRCode,
	}
}

// row is one labelled line of the invoice: English label, value, Arabic label
type row struct {
	label   string
	labelAR string
	value   any
	amount  bool
}

// Exporter writes invoice workbooks
type Exporter struct {
	logger *zap.Logger
}

// NewExporter creates a new invoice exporter
func NewExporter(logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exporter{logger: logger}
}

// Export writes the invoice for a completed charge to path
func (e *Exporter) Export(result *payment.Result, seller payment.Seller, path string) error {
	f, err := e.Build(FromResult(result, seller))
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save invoice workbook: %w", err)
	}

	e.logger.Info("Invoice exported",
		zap.String("charge_id", result.ChargeID),
		zap.String("output_path", path))
	return nil
}

// WriteTo streams the workbook for doc to w
func (e *Exporter) WriteTo(w io.Writer, doc Document) error {
	f, err := e.Build(doc)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write invoice workbook: %w", err)
	}
	return nil
}

// Build lays out the workbook. The caller owns the returned file.
func (e *Exporter) Build(doc Document) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	titleStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 14},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create title style: %w", err)
	}
	// Built-in format 4 is #,##0.00
	amountStyle, err := f.NewStyle(&excelize.Style{NumFmt: 4})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create amount style: %w", err)
	}

	e.setCell(f, "A1", "Simplified Tax Invoice")
	e.setCell(f, "C1", "فاتورة ضريبية مبسطة")
	_ = f.SetCellStyle(SheetName, "A1", "C1", titleStyle)

	rows := []row{
		{label: "Invoice Number", labelAR: "رقم الفاتورة", value: doc.Number},
		{label: "Seller Name", labelAR: "اسم البائع", value: doc.Seller.Name},
		{label: "VAT Number", labelAR: "الرقم الضريبي", value: doc.Seller.VATNumber},
		{label: "Invoice Date", labelAR: "تاريخ الفاتورة", value: doc.Timestamp},
		{label: "Currency", labelAR: "العملة", value: doc.Currency},
		{label: "Subtotal", labelAR: "المجموع قبل الضريبة", value: doc.Subtotal, amount: true},
		{label: "VAT (15%)", labelAR: "ضريبة القيمة المضافة (15%)", value: doc.VAT, amount: true},
		{label: "Total incl. VAT", labelAR: "الإجمالي شامل الضريبة", value: doc.Total, amount: true},
		{label: "QR Payload", labelAR: "بيانات رمز الاستجابة", value: doc.QRCode},
	}

	for i, r := range rows {
		line := i + 3
		e.setCell(f, fmt.Sprintf("A%d", line), r.label)
		e.setCell(f, fmt.Sprintf("C%d", line), r.labelAR)

		valueCell := fmt.Sprintf("B%d", line)
		if r.amount {
			amount := r.value.(decimal.Decimal).Round(2)
			e.setCell(f, valueCell, amount.InexactFloat64())
			_ = f.SetCellStyle(SheetName, valueCell, valueCell, amountStyle)
			continue
		}
		e.setCell(f, valueCell, r.value)
	}

	_ = f.SetColWidth(SheetName, "A", "A", 20)
	_ = f.SetColWidth(SheetName, "B", "B", 48)
	_ = f.SetColWidth(SheetName, "C", "C", 30)

	if doc.QRCode != "" {
		png, err := zatca.RenderPNG(doc.QRCode, qrImageSize)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to render QR image: %w", err)
		}
		if err := f.AddPictureFromBytes(SheetName, QRImageCell(len(rows)), &excelize.Picture{
			Extension: ".png",
			File:      png,
			Format:    &excelize.GraphicOptions{AltText: "ZATCA QR"},
		}); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to insert QR image: %w", err)
		}
	}

	e.logger.Debug("Invoice workbook built",
		zap.String("number", doc.Number),
		zap.String("total", vat.FormatAmount(doc.Total)))

	return f, nil
}

// QRImageCell is the anchor of the QR picture below n invoice rows
func QRImageCell(n int) string {
	return fmt.Sprintf("B%d", n+4)
}

// setCell sets a cell value in the invoice sheet
func (e *Exporter) setCell(f *excelize.File, cell string, value any) {
	if err := f.SetCellValue(SheetName, cell, value); err != nil {
		e.logger.Warn("Failed to set cell value",
			zap.String("cell", cell),
			zap.Error(err))
	}
}
