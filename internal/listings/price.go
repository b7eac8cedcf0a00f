package listings

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var pricePattern = regexp.MustCompile(`^(-?)(\d+)(?:\.(\d+))?(?:[eE]([+-]?\d+))?$`)

// maxPriceExponent acota la expansión de "1e999999" a texto.
const maxPriceExponent = 1000

// Price guarda un decimal exacto en su forma textual ("19.99").
// Nunca pasa por float64, así el valor que se lee es el mismo que se guardó.
type Price string

// PriceError indica un precio que no es un número decimal.
type PriceError struct {
	Raw string
}

func (err *PriceError) Error() string {
	return fmt.Sprintf("invalid price %q", err.Raw)
}

// ParsePrice valida que raw sea un decimal y lo deja en notación simple:
// "1.5e1" queda "15" y "2E-3" queda "0.002".
func ParsePrice(raw string) (Price, error) {
	match := pricePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if match == nil {
		return "", &PriceError{Raw: raw}
	}
	sign, whole, fraction, exponent := match[1], match[2], match[3], match[4]

	if exponent != "" {
		shift, err := strconv.Atoi(exponent)
		if err != nil || shift > maxPriceExponent || shift < -maxPriceExponent {
			return "", &PriceError{Raw: raw}
		}
		whole, fraction = shiftPoint(whole+fraction, len(whole)+shift)
	}

	// JSON no admite ceros a la izquierda: "007.5" queda "7.5".
	whole = strings.TrimLeft(whole, "0")
	if whole == "" {
		whole = "0"
	}
	if fraction != "" {
		return Price(sign + whole + "." + fraction), nil
	}
	return Price(sign + whole), nil
}

// shiftPoint ubica el punto decimal en la posición point de digits.
func shiftPoint(digits string, point int) (string, string) {
	switch {
	case point <= 0:
		return "0", strings.Repeat("0", -point) + digits
	case point >= len(digits):
		return digits + strings.Repeat("0", point-len(digits)), ""
	default:
		return digits[:point], digits[point:]
	}
}

// IsPositive devuelve true si el precio es estrictamente mayor que cero.
func (price Price) IsPositive() bool {
	value := string(price)
	if value == "" || strings.HasPrefix(value, "-") {
		return false
	}
	return strings.Trim(value, "0.") != ""
}

func (price Price) String() string {
	return string(price)
}

// UnmarshalJSON acepta un número JSON o un string con el número adentro.
func (price *Price) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*price = ""
		return nil
	}

	raw := string(data)
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	}

	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*price = parsed
	return nil
}

// MarshalJSON escribe el precio como número JSON, sin comillas.
func (price Price) MarshalJSON() ([]byte, error) {
	if price == "" {
		return []byte("null"), nil
	}
	if !pricePattern.MatchString(string(price)) {
		return nil, &PriceError{Raw: string(price)}
	}
	return []byte(price), nil
}
