package enum

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

// PaymentMethod is how a bill was settled
type PaymentMethod int

const (
	PaymentMethodCash PaymentMethod = 0
	PaymentMethodUPI  PaymentMethod = 1
	PaymentMethodCard PaymentMethod = 2
)

var paymentMethodNames = [...]string{"cash", "upi", "card"}

func (m PaymentMethod) String() string {
	if !m.IsValid() {
		return "unknown"
	}
	return paymentMethodNames[m]
}

// Label is the receipt form, e.g. "UPI".
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentMethodUPI:
		return "UPI"
	case PaymentMethodCard:
		return "Card"
	default:
		return "Cash"
	}
}

func (m PaymentMethod) IsValid() bool {
	return m >= PaymentMethodCash && int(m) < len(paymentMethodNames)
}

// ParsePaymentMethod accepts the lower-case names, case-insensitively.
func ParsePaymentMethod(s string) (PaymentMethod, error) {
	for i, name := range paymentMethodNames {
		if strings.EqualFold(s, name) {
			return PaymentMethod(i), nil
		}
	}
	return 0, fmt.Errorf("unknown payment method %q", s)
}

func (m PaymentMethod) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.String())
}

func (m *PaymentMethod) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		if !PaymentMethod(i).IsValid() {
			return fmt.Errorf("unknown payment method %d", i)
		}
		*m = PaymentMethod(i)
		return nil
	}
	parsed, err := ParsePaymentMethod(str)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

func (m PaymentMethod) Value() (driver.Value, error) {
	return int64(m), nil
}

func (m *PaymentMethod) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*m = PaymentMethodCash
	case int64:
		*m = PaymentMethod(v)
	case int32:
		*m = PaymentMethod(v)
	case int:
		*m = PaymentMethod(v)
	default:
		return fmt.Errorf("cannot scan %T into PaymentMethod", value)
	}
	return nil
}
