package naming

import (
	"path/filepath"
	"strings"
	"time"

	"livearchive/internal/services"
)

// CaptureLayout is the timestamp pattern recorders use for file names.
const CaptureLayout = "2006-01-02_15-04-05"

// CaptureTime is the moment a recording started, parsed from its file name.
// Every rendering used for paths, titles, and sidecars derives from the same
// instant so they never disagree.
type CaptureTime struct {
	t time.Time
}

// NewCaptureTime wraps t, truncated to whole seconds.
func NewCaptureTime(t time.Time) CaptureTime {
	return CaptureTime{t: t.Truncate(time.Second)}
}

// ParseCaptureTime extracts the capture timestamp from a file name of the form
// YYYY-MM-DD_HH-MM-SS.<ext>. Directory components are ignored. The extension
// comparison is exact.
func ParseCaptureTime(filename, ext string) (CaptureTime, error) {
	name := filepath.Base(filename)
	ext = strings.TrimPrefix(ext, ".")
	suffix := "." + ext
	if ext == "" || !strings.HasSuffix(name, suffix) {
		return CaptureTime{}, services.Wrap(services.ErrFormat, "naming", "parse capture time",
			"file name "+name+" does not end in "+suffix, nil)
	}
	stem := strings.TrimSuffix(name, suffix)
	t, err := time.ParseInLocation(CaptureLayout, stem, time.Local)
	if err != nil {
		return CaptureTime{}, services.Wrap(services.ErrFormat, "naming", "parse capture time",
			"file name "+name+" does not match "+CaptureLayout, err)
	}
	return CaptureTime{t: t}, nil
}

// Time returns the underlying instant.
func (c CaptureTime) Time() time.Time { return c.t }

// IsZero reports whether c was never set.
func (c CaptureTime) IsZero() bool { return c.t.IsZero() }

// Year renders the four-digit year, e.g. "2024".
func (c CaptureTime) Year() string { return c.t.Format("2006") }

// MonthNumber renders the zero-padded month, e.g. "03".
func (c CaptureTime) MonthNumber() string { return c.t.Format("01") }

// MonthName renders the full English month name, e.g. "March".
func (c CaptureTime) MonthName() string { return c.t.Format("January") }

// Day renders the zero-padded day of month, e.g. "07".
func (c CaptureTime) Day() string { return c.t.Format("02") }

// MonthDir renders the month directory name, e.g. "12-December".
func (c CaptureTime) MonthDir() string { return c.MonthNumber() + "-" + c.MonthName() }

// FileDate renders the date used in file names: "December 07 2024".
func (c CaptureTime) FileDate() string { return c.t.Format("January 02 2006") }

// DisplayDate renders the date used in titles: "December 7 2024".
func (c CaptureTime) DisplayDate() string { return c.t.Format("January 2 2006") }

// Episode renders the month and day as MMDD.
func (c CaptureTime) Episode() string { return c.t.Format("0102") }

// Aired renders the calendar date as YYYY-MM-DD.
func (c CaptureTime) Aired() string { return c.t.Format("2006-01-02") }
