package services

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"airbnb-analyzer/utils"
)

// amountRegexp matches money as it appears in hand-edited or localised
// exports: "$1,200.50", "USD 99", "-€10", "(25.00)".
var amountRegexp = regexp.MustCompile(`^(\()?\s*([-+])?\s*(?:[A-Z]{3}\s|[$€£¥฿₹])?\s*([-+])?((?:\d{1,3}(?:,\d{3})+|\d+)(?:\.\d+)?)\s*(\))?$`)

// Cleaner normalises raw export cells before they are typed.
type Cleaner struct {
	logger *utils.Logger
}

// NewCleaner creates a Cleaner with the given logger.
func NewCleaner(logger *utils.Logger) *Cleaner {
	return &Cleaner{logger: logger}
}

// Amount parses a numeric cell. Plain numbers are accepted as is; currency
// symbols, ISO codes, thousands separators and accounting parentheses are
// stripped. ok is false when raw is not a number.
func (c *Cleaner) Amount(raw string) (float64, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	if v, err := strconv.ParseFloat(raw, 64); err == nil {
		if math.IsInf(v, 0) || math.IsNaN(v) {
			return 0, false
		}
		return v, true
	}

	m := amountRegexp.FindStringSubmatch(raw)
	if m == nil || (m[1] == "") != (m[5] == "") || (m[2] != "" && m[3] != "") {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(m[4], ",", ""), 64)
	if err != nil {
		return 0, false
	}
	if m[1] != "" || m[2] == "-" || m[3] == "-" {
		v = -v
	}
	c.logger.Debug("[cleaner] Formatted amount %q read as %.2f", raw, v)
	return v, true
}

// Text strips leading/trailing whitespace and collapses internal whitespace.
func (c *Cleaner) Text(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r)
	})
	return strings.Join(fields, " ")
}
