package utils

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// Property: FormatUSD output is well formed and preserves the value.
//
// For any amount, FormatUSD should:
// 1. Start with $ (or -$ for negative values)
// 2. Have exactly 2 decimal places
// 3. Group the integer part in threes
// 4. Parse back to the amount rounded to cents
func TestProperty_USDFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	grouping := regexp.MustCompile(`^\d{1,3}(,\d{3})*\.\d{2}$`)

	properties.Property("FormatUSD produces grouped dollars", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatUSD(amount)

			if formatted == "-$0.00" {
				t.Logf("Negative zero for %f", amount)
				return false
			}

			body := strings.TrimPrefix(formatted, "-")
			if !strings.HasPrefix(body, "$") {
				t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
				return false
			}
			body = strings.TrimPrefix(body, "$")

			if !grouping.MatchString(body) {
				t.Logf("Bad grouping for %f: %s", amount, formatted)
				return false
			}

			parsed, err := strconv.ParseFloat(strings.ReplaceAll(body, ",", ""), 64)
			if err != nil {
				return false
			}
			if strings.HasPrefix(formatted, "-") {
				parsed = -parsed
			}
			if math.Abs(parsed-amount) > 0.005+1e-9*math.Abs(amount) {
				t.Logf("Value drift for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("FormatPnL signs gains", prop.ForAll(
		func(amount float64) bool {
			formatted := FormatPnL(amount)
			usd := FormatUSD(amount)
			if amount > 0 && usd != "$0.00" {
				return formatted == "+"+usd
			}
			return formatted == usd
		},
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}
