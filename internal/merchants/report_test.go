package merchants

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxp/merchant-portal/internal/shared"
)

type stubReportSource struct {
	body  []byte
	err   error
	calls int
	start string
	end   string
}

func (s *stubReportSource) ExportReport(ctx context.Context, startDate, endDate string) ([]byte, error) {
	s.calls++
	s.start, s.end = startDate, endDate
	return s.body, s.err
}

func TestReportRequestWithoutRangeSkipsRemote(t *testing.T) {
	source := &stubReportSource{}
	svc := NewReportService(source, nil)

	_, err := svc.Request(context.Background(), nil)

	require.Error(t, err)
	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, "Please select a date range", shared.UserSafeMessage(err))
	assert.Equal(t, 0, source.calls)
}

func TestReportRequestNamesFileAfterRange(t *testing.T) {
	source := &stubReportSource{body: []byte("xlsx-bytes")}
	svc := NewReportService(source, nil)
	rng := &DateRange{
		Start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}

	report, err := svc.Request(context.Background(), rng)

	require.NoError(t, err)
	assert.Equal(t, "merchants_report_2024-01-01_to_2024-01-31.xlsx", report.Filename)
	assert.Equal(t, []byte("xlsx-bytes"), report.Body)
	assert.Equal(t, spreadsheetContentType, report.ContentType)
	assert.Equal(t, "2024-01-01", source.start)
	assert.Equal(t, "2024-01-31", source.end)
}

func TestReportRequestRejectsInvertedRange(t *testing.T) {
	source := &stubReportSource{}
	svc := NewReportService(source, nil)
	rng := &DateRange{
		Start: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}

	_, err := svc.Request(context.Background(), rng)

	assert.True(t, shared.IsValidation(err))
	assert.Equal(t, 0, source.calls)
}

func TestReportRequestPropagatesRemoteFailure(t *testing.T) {
	remote := &shared.NetworkError{Op: "export report", Status: 500}
	svc := NewReportService(&stubReportSource{err: remote}, nil)
	rng := &DateRange{Start: time.Now(), End: time.Now()}

	_, err := svc.Request(context.Background(), rng)

	var netErr *shared.NetworkError
	require.True(t, errors.As(err, &netErr))
	assert.Equal(t, 500, netErr.Status)
}

func TestParseDateRange(t *testing.T) {
	svc := NewReportService(&stubReportSource{}, nil)

	rng, err := svc.ParseDateRange("", " ")
	require.NoError(t, err)
	assert.Nil(t, rng)

	rng, err = svc.ParseDateRange("2024-03-01", "2024-03-15")
	require.NoError(t, err)
	require.NotNil(t, rng)
	assert.Equal(t, "merchants_report_2024-03-01_to_2024-03-15.xlsx", rng.ReportFilename())

	_, err = svc.ParseDateRange("2024-03-01", "")
	assert.True(t, shared.IsValidation(err))

	_, err = svc.ParseDateRange("03/01/2024", "2024-03-15")
	assert.True(t, shared.IsValidation(err))
}

func TestParseDateRangeRejectsImpossibleDates(t *testing.T) {
	svc := NewReportService(&stubReportSource{}, nil)

	rng, err := svc.ParseDateRange("2024-03-01", "2024-02-30")
	assert.Nil(t, rng)
	var vErr *shared.ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "end", vErr.Field)

	rng, err = svc.ParseDateRange("2024-13-01", "2024-03-15")
	assert.Nil(t, rng)
	require.ErrorAs(t, err, &vErr)
	assert.Equal(t, "start", vErr.Field)
}
