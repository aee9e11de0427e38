package cv

import (
	"bytes"
	"fmt"
	"time"

	"github.com/hericraft/campus-api/internal/moodle"
	"github.com/jung-kurt/gofpdf"
	"github.com/oklog/ulid/v2"
	qrcode "github.com/skip2/go-qrcode"
)

const (
	pageMargin = 15.0
	qrSize     = 26.0
)

// Render produces the printable CV and its document reference. The QR in
// the header links back to the LMS profile page.
func Render(doc *Document, lmsBaseURL string) ([]byte, string, error) {
	ref := ulid.Make().String()

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Perfil Académico Profesional", true)
	pdf.SetMargins(pageMargin, pageMargin, pageMargin)

	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 6, tr(fmt.Sprintf("Documento: %s", ref)), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()

	// Header: identity block on the left, profile QR on the right.
	pdf.SetTextColor(28, 28, 28)
	pdf.SetFont("Helvetica", "B", 20)
	pdf.CellFormat(0, 10, tr(doc.User.FullName), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(232, 62, 76)
	pdf.CellFormat(0, 6, tr("PERFIL ACADÉMICO PROFESIONAL"), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 6, tr(doc.User.Email), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, tr(doc.Phone), "", 1, "L", false, 0, "")

	if doc.User.ID != 0 && lmsBaseURL != "" {
		profileURL := fmt.Sprintf("%s/user/profile.php?id=%d", lmsBaseURL, doc.User.ID)
		png, err := qrcode.Encode(profileURL, qrcode.Medium, 256)
		if err != nil {
			return nil, "", fmt.Errorf("encode profile qr: %w", err)
		}
		opts := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("profile-qr", opts, bytes.NewReader(png))
		pageWidth, _ := pdf.GetPageSize()
		pdf.ImageOptions("profile-qr", pageWidth-pageMargin-qrSize, pageMargin, qrSize, qrSize, false, opts, 0, "")
	}

	pdf.Ln(4)

	if summary := StripHTML(doc.User.Description); summary != "" {
		sectionTitle(pdf, tr, "Resumen Profesional")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(28, 28, 28)
		pdf.MultiCell(0, 5, tr(summary), "", "L", false)
		pdf.Ln(3)
	}

	completed := doc.CompletedCourses()
	inProgress := doc.InProgressCourses()

	sectionTitle(pdf, tr, "Resumen")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(28, 28, 28)
	stats := fmt.Sprintf("Materias concluidas: %d    En curso: %d    Insignias: %d",
		len(completed), len(inProgress), len(doc.Badges))
	pdf.CellFormat(0, 6, tr(stats), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if len(completed) > 0 {
		sectionTitle(pdf, tr, "Historial Académico")
		for _, c := range completed {
			courseEntry(pdf, tr, c)
		}
		pdf.Ln(2)
	}

	if len(inProgress) > 0 {
		sectionTitle(pdf, tr, "Formación en Curso")
		for _, c := range inProgress {
			courseEntry(pdf, tr, c)
		}
		pdf.Ln(2)
	}

	if len(doc.Badges) > 0 {
		sectionTitle(pdf, tr, "Insignias")
		pdf.SetFont("Helvetica", "", 10)
		pdf.SetTextColor(28, 28, 28)
		for _, badge := range doc.Badges {
			pdf.CellFormat(0, 5, tr("• "+badge.Name), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", fmt.Errorf("render cv pdf: %w", err)
	}

	return buf.Bytes(), ref, nil
}

func sectionTitle(pdf *gofpdf.Fpdf, tr func(string) string, title string) {
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetTextColor(232, 62, 76)
	pdf.CellFormat(0, 7, tr(title), "B", 1, "L", false, 0, "")
	pdf.Ln(1)
}

func courseEntry(pdf *gofpdf.Fpdf, tr func(string) string, c moodle.Course) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetTextColor(28, 28, 28)
	pdf.CellFormat(0, 5, tr(c.FullName), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(102, 102, 102)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("%s | %d", c.ShortName, courseYear(c))), "", 1, "L", false, 0, "")
	pdf.MultiCell(0, 4.5, tr(CourseDescription(c)), "", "L", false)
	pdf.Ln(2)
}

// courseYear falls back to the current year when the course has no start
// date.
func courseYear(c moodle.Course) int {
	if c.StartDate > 0 {
		return time.Unix(c.StartDate, 0).Year()
	}
	return time.Now().Year()
}
