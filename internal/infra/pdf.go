package infra

// pdf.go: payment receipts using go-pdf/fpdf.
// Narrow receipt layout with:
//   - Business name header
//   - Sale number, payment id and timestamp
//   - Client and collector
//   - Balance before, amount paid, balance after
//
// The output file is saved to storagePath/recibo_{abonoID}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/hepuentes/creditappweb/internal/dto"

	"github.com/go-pdf/fpdf"
)

// GenerarReciboAbonoPDF writes the receipt of a payment and returns its path.
// storagePath is created if needed.
func GenerarReciboAbonoPDF(r *dto.ReciboAbono, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	filePath := filepath.Join(storagePath, fmt.Sprintf("recibo_%s.pdf", r.AbonoID))

	// 80mm roll width, fixed height is enough for a single payment
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: 80, Ht: 120},
	})
	pdf.SetMargins(4, 4, 4)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 8
	moneda := func(v int64) string { return r.SimboloMoneda + FormatearMoneda(v) }

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(contentW, 7, tr(r.NombreNegocio), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 8)
	pdf.CellFormat(contentW, 5, "Recibo de Abono", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	// ── Info ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 8)
	pdf.CellFormat(contentW, 5, tr(fmt.Sprintf("Venta N° %d", r.VentaNumero)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 7)
	pdf.CellFormat(contentW, 4, r.Fecha.Format("02/01/2006  15:04"), "", 1, "L", false, 0, "")
	pdf.CellFormat(contentW, 4, tr("Cliente: "+r.ClienteNombre), "", 1, "L", false, 0, "")
	if r.ClienteCedula != "" {
		pdf.CellFormat(contentW, 4, "Documento: "+r.ClienteCedula, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 4, tr("Recibido por: "+r.CobradorNombre), "", 1, "L", false, 0, "")
	if r.CajaNombre != "" {
		pdf.CellFormat(contentW, 4, tr("Caja: "+r.CajaNombre), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)

	pdf.Line(4, pdf.GetY(), pageW-4, pdf.GetY())
	pdf.Ln(2)

	// ── Amounts ──────────────────────────────────────────────────────────────
	label := contentW * 0.6
	valor := contentW * 0.4
	fila := func(nombre, monto string) {
		pdf.CellFormat(label, 5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(valor, 5, monto, "", 1, "R", false, 0, "")
	}
	pdf.SetFont("Helvetica", "", 8)
	fila("Total venta:", moneda(r.TotalVenta))
	fila("Saldo anterior:", moneda(r.SaldoAnterior))
	pdf.SetFont("Helvetica", "B", 9)
	fila("ABONO:", moneda(r.Monto))
	pdf.SetFont("Helvetica", "", 8)
	fila("Saldo pendiente:", moneda(r.SaldoPosterior))

	// ── Footer ───────────────────────────────────────────────────────────────
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 4, tr("¡Gracias por su pago!"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 6)
	pdf.CellFormat(contentW, 4, "Comprobante "+r.AbonoID, "", 1, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}
	return filePath, nil
}
