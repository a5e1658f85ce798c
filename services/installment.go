package services

import (
	"strconv"
	"strings"

	"github.com/openfatura/fatura-api/models"
)

// findInstallmentToken scans a description for the first "X/Y" marker:
// a digit run, a slash, a digit run, anywhere in the string. Start is
// extended backward over the whitespace immediately before the digits,
// mirroring how the marker is written ("Loja Tal 2/12"). Being
// unanchored is intentional: merchant codes may precede the marker. It
// also means a coincidental digit/digit sequence matches; callers
// validate the numbers before trusting the result.
func findInstallmentToken(desc string) (start, end, current, total int, ok bool) {
	n := len(desc)
	for i := 0; i < n; i++ {
		if !isDigit(desc[i]) {
			continue
		}
		numStart := i
		j := i
		for j < n && isDigit(desc[j]) {
			j++
		}
		if j < n && desc[j] == '/' && j+1 < n && isDigit(desc[j+1]) {
			k := j + 1
			for k < n && isDigit(desc[k]) {
				k++
			}
			cur, err1 := strconv.Atoi(desc[numStart:j])
			tot, err2 := strconv.Atoi(desc[j+1 : k])
			if err1 == nil && err2 == nil {
				start = numStart
				for start > 0 && isSpace(desc[start-1]) {
					start--
				}
				return start, k, cur, tot, true
			}
		}
		// resume after this digit run; a marker never starts mid-run
		i = j - 1
	}
	return 0, 0, 0, 0, false
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// DetectInstallment parses a description for an installment marker. The
// marker only counts as a real parcela when both numbers are positive
// and the current parcel does not exceed the total; anything else (ex:
// "13/12") comes back with HasInstallment false and zeroed fields.
func DetectInstallment(description string) models.InstallmentInfo {
	_, _, current, total, ok := findInstallmentToken(description)
	if !ok || current <= 0 || total <= 0 || current > total {
		return models.InstallmentInfo{}
	}
	return models.InstallmentInfo{
		HasInstallment: true,
		Current:        current,
		Total:          total,
		Remaining:      total - current,
	}
}

// BaseDescription strips the first installment marker (with its leading
// whitespace) from a description and trims the result. It is the
// grouping key for both recurring detection and series consolidation,
// so it uses the exact same scan as DetectInstallment: two charges that
// differ only by parcel number normalize to the same key.
func BaseDescription(description string) string {
	start, end, _, _, ok := findInstallmentToken(description)
	if !ok {
		return strings.TrimSpace(description)
	}
	return strings.TrimSpace(description[:start] + description[end:])
}
