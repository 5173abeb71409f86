package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf/v2"
	qrcode "github.com/skip2/go-qrcode"
)

const qrDir = "statics/qrcodes"

// Card holds what gets printed on one student card. The QR payload is the
// NIS so scanners resolve the student without an extra lookup.
type Card struct {
	NIS       string
	FullName  string
	ClassName string
}

// StudentQrCode renders the student's QR code to a PNG and returns its path.
func StudentQrCode(nis string) (string, error) {
	if err := os.MkdirAll(qrDir, os.ModePerm); err != nil {
		return "", err
	}

	filePath := filepath.Join(qrDir, fmt.Sprintf("%s.png", nis))
	if err := qrcode.WriteFile(nis, qrcode.Medium, 256, filePath); err != nil {
		return "", fmt.Errorf("generating qr code: %w", err)
	}

	return filePath, nil
}

// StudentCardSheet lays the cards out on A4 pages, eight cards per page,
// and returns the PDF path.
func StudentCardSheet(cards []Card, fileName string) (string, error) {
	if err := os.MkdirAll(qrDir, os.ModePerm); err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetFont("Arial", "", 10)

	const (
		cardWidth  = 90.0
		cardHeight = 60.0
		marginX    = 12.0
		marginY    = 15.0
		qrSize     = 35.0
	)

	for i, card := range cards {
		slot := i % 8
		if slot == 0 {
			pdf.AddPage()
		}

		col := slot % 2
		row := slot / 2
		x := marginX + float64(col)*(cardWidth+6)
		y := marginY + float64(row)*(cardHeight+6)

		pngPath, err := StudentQrCode(card.NIS)
		if err != nil {
			return "", err
		}

		pdf.Rect(x, y, cardWidth, cardHeight, "D")
		pdf.ImageOptions(pngPath, x+5, y+12, qrSize, qrSize, false,
			gofpdf.ImageOptions{ImageType: "PNG"}, 0, "")

		pdf.SetXY(x+qrSize+10, y+15)
		pdf.CellFormat(cardWidth-qrSize-15, 6, card.FullName, "", 2, "L", false, 0, "")
		pdf.CellFormat(cardWidth-qrSize-15, 6, "NIS: "+card.NIS, "", 2, "L", false, 0, "")
		pdf.CellFormat(cardWidth-qrSize-15, 6, card.ClassName, "", 2, "L", false, 0, "")
	}

	pdfPath := filepath.Join(qrDir, fileName)
	if err := pdf.OutputFileAndClose(pdfPath); err != nil {
		return "", fmt.Errorf("writing card sheet: %w", err)
	}

	return pdfPath, nil
}
