package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/phpdave11/gofpdf"
	"github.com/skip2/go-qrcode"

	"github.com/spec-kit/hotel-service/internal/domain"
)

// TaskRow is one line of the task report.
type TaskRow struct {
	Task       domain.Task
	RoomNumber string
	StaffName  string
}

// TaskReport renders the given rows as an A4 landscape PDF.
func TaskReport(title string, generatedAt time.Time, rows []TaskRow) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, title)
	pdf.Ln(8)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, "Generated "+generatedAt.UTC().Format(time.RFC1123))
	pdf.Ln(10)

	widths := []float64{30, 20, 45, 25, 40, 40, 77}
	headers := []string{"Kind", "Room", "Assignee", "Status", "Scheduled", "Completed", "Description"}

	pdf.SetFont("Arial", "B", 10)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, row := range rows {
		completed := "-"
		if row.Task.CompletedAt != nil {
			completed = row.Task.CompletedAt.UTC().Format("2006-01-02 15:04")
		}
		assignee := row.StaffName
		if assignee == "" {
			assignee = "unassigned"
		}
		cells := []string{
			string(row.Task.Kind),
			row.RoomNumber,
			assignee,
			string(row.Task.Status),
			row.Task.ScheduledFor.UTC().Format("2006-01-02 15:04"),
			completed,
			truncate(row.Task.Description, 48),
		}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}
	if len(rows) == 0 {
		pdf.Cell(0, 8, "No tasks in range.")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render task report: %w", err)
	}
	return buf.Bytes(), nil
}

// Voucher renders a one-page booking confirmation with a QR code of the booking id.
func Voucher(hotelName string, booking *domain.Booking, room *domain.Room, guest *domain.User) ([]byte, error) {
	png, err := qrcode.Encode("booking:"+booking.ID, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, hotelName)
	pdf.Ln(12)
	pdf.SetFont("Arial", "B", 14)
	pdf.Cell(0, 8, "Booking voucher")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	lines := []string{
		"Booking: " + booking.ID,
		"Guest: " + guest.Name,
		"Room: " + room.Number + " (" + room.Type + ")",
		"Check-in: " + booking.CheckIn.Format("Mon 02 Jan 2006"),
		"Check-out: " + booking.CheckOut.Format("Mon 02 Jan 2006"),
		fmt.Sprintf("Guests: %d", booking.Guests),
		fmt.Sprintf("Nights: %d", booking.Nights()),
		fmt.Sprintf("Total: %.2f", booking.Total),
		"Status: " + string(booking.Status),
	}
	for _, line := range lines {
		pdf.Cell(0, 8, line)
		pdf.Ln(8)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", opts, bytes.NewReader(png))
	pdf.ImageOptions("qr", 150, 40, 40, 40, false, opts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render voucher: %w", err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "~"
}
