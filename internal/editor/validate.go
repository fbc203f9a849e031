package editor

import (
	"fmt"
	"math"
	"strings"

	"github.com/mkorneev/orders-board/internal/model"
)

// Коды нарушений валидации
// payload (Min/Actual) заполняется только там, где он осмыслен
const (
	ReasonRequired      = "required"
	ReasonEmptyString   = "emptyString"
	ReasonMinLength     = "minLength"
	ReasonInvalidNumber = "invalidNumber"
	ReasonMinQuantity   = "minQuantity"
	ReasonMinPrice      = "minPrice"
	ReasonMinItems      = "minItems"
)

// Пороговые значения правил
const (
	MinCustomerNameLen = 2
	MinQuantity        = 1.0
	MinPrice           = 0.01
	MinItems           = 1
)

// Violation — одно нарушение правила валидации с тегом причины
type Violation struct {
	Code   string  `json:"code"`
	Min    float64 `json:"min,omitempty"`
	Actual float64 `json:"actual,omitempty"`
}

// Violations — нарушения, сгруппированные по пути поля
// (например "customerName" или "items[0].qty")
type Violations map[string][]Violation

// Violations реализует error, чтобы результат валидации можно было
// вернуть из Save и проверить через errors.As
func (v Violations) Error() string {
	return fmt.Sprintf("validation failed: %d invalid field(s)", len(v))
}

func (v Violations) add(field string, violations []Violation) {
	if len(violations) > 0 {
		v[field] = append(v[field], violations...)
	}
}

// ValidateCustomerName проверяет имя клиента:
// обязательно, не из одних пробелов, не короче двух символов после trim
func ValidateCustomerName(name string) []Violation {
	if name == "" {
		return []Violation{{Code: ReasonRequired}}
	}

	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return []Violation{{Code: ReasonEmptyString}}
	}
	if length := len([]rune(trimmed)); length < MinCustomerNameLen {
		return []Violation{{Code: ReasonMinLength, Min: MinCustomerNameLen, Actual: float64(length)}}
	}

	return nil
}

// ValidateProductName проверяет название товара
func ValidateProductName(name string) []Violation {
	if strings.TrimSpace(name) == "" {
		return []Violation{{Code: ReasonRequired}}
	}
	return nil
}

// ValidateQuantity проверяет количество товара: число, не меньше единицы
func ValidateQuantity(qty float64) []Violation {
	if math.IsNaN(qty) || math.IsInf(qty, 0) {
		return []Violation{{Code: ReasonInvalidNumber}}
	}
	if qty < MinQuantity {
		return []Violation{{Code: ReasonMinQuantity, Min: MinQuantity, Actual: qty}}
	}
	return nil
}

// ValidatePrice проверяет цену товара: число, не меньше 0.01
func ValidatePrice(price float64) []Violation {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return []Violation{{Code: ReasonInvalidNumber}}
	}
	if price < MinPrice {
		return []Violation{{Code: ReasonMinPrice, Min: MinPrice, Actual: price}}
	}
	return nil
}

// ValidateItemsCount проверяет, что в заказе есть хотя бы одна позиция
func ValidateItemsCount(count int) []Violation {
	if count < MinItems {
		return []Violation{{Code: ReasonMinItems, Min: MinItems, Actual: float64(count)}}
	}
	return nil
}

// ValidateDraft прогоняет все правила по черновику заказа
// правила независимы друг от друга; порядок проверки на результат
// не влияет
func ValidateDraft(draft model.Order) Violations {
	violations := Violations{}

	violations.add("customerName", ValidateCustomerName(draft.CustomerName))
	violations.add("items", ValidateItemsCount(len(draft.Items)))

	for i, item := range draft.Items {
		prefix := fmt.Sprintf("items[%d].", i)
		violations.add(prefix+"productName", ValidateProductName(item.ProductName))
		violations.add(prefix+"qty", ValidateQuantity(item.Qty))
		violations.add(prefix+"price", ValidatePrice(item.Price))
	}

	if len(violations) == 0 {
		return nil
	}
	return violations
}
