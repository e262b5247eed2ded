package merchants

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/maxp/merchant-portal/internal/shared"
)

const spreadsheetContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ReportSource downloads the raw spreadsheet for a date range.
type ReportSource interface {
	ExportReport(ctx context.Context, startDate, endDate string) ([]byte, error)
}

// ReportService turns a selected date range into a downloadable report.
type ReportService struct {
	source    ReportSource
	logger    *slog.Logger
	validator *validator.Validate
}

// NewReportService wires the export source. A nil logger discards operator logs.
func NewReportService(source ReportSource, logger *slog.Logger) *ReportService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ReportService{source: source, logger: logger, validator: validator.New()}
}

type rangeForm struct {
	Start string `validate:"required"`
	End   string `validate:"required"`
}

// ParseDateRange reads a date range from form values. It returns nil when neither end
// was picked, so that Request reports the range as unset.
func (s *ReportService) ParseDateRange(start, end string) (*DateRange, error) {
	form := rangeForm{Start: strings.TrimSpace(start), End: strings.TrimSpace(end)}
	if form.Start == "" && form.End == "" {
		return nil, nil
	}
	if err := s.validator.Struct(form); err != nil {
		if fieldErrs, ok := err.(validator.ValidationErrors); ok && len(fieldErrs) > 0 {
			return nil, shared.NewValidationError(strings.ToLower(fieldErrs[0].Field()), "Please select a valid date range")
		}
		return nil, err
	}
	from, err := time.Parse(dateLayout, form.Start)
	if err != nil {
		return nil, shared.NewValidationError("start", "Please select a valid date range")
	}
	to, err := time.Parse(dateLayout, form.End)
	if err != nil {
		return nil, shared.NewValidationError("end", "Please select a valid date range")
	}
	return &DateRange{Start: from, End: to}, nil
}

// Request exports the merchants report for rng. An unset range fails validation
// without contacting the remote API. Remote failures are logged for operators and
// returned unchanged; the call may simply be repeated.
func (s *ReportService) Request(ctx context.Context, rng *DateRange) (Report, error) {
	if rng == nil {
		return Report{}, shared.NewValidationError("dateRange", "Please select a date range")
	}
	if rng.End.Before(rng.Start) {
		return Report{}, shared.NewValidationError("dateRange", "End date must not be before start date")
	}
	body, err := s.source.ExportReport(ctx, rng.StartDate(), rng.EndDate())
	if err != nil {
		s.logger.Error("generate report",
			slog.String("start", rng.StartDate()),
			slog.String("end", rng.EndDate()),
			slog.Any("error", err))
		return Report{}, err
	}
	return Report{Filename: rng.ReportFilename(), ContentType: spreadsheetContentType, Body: body}, nil
}
