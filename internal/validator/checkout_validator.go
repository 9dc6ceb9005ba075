package validator

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// 配送方法
const (
	DeliveryCourier = "delivery"
	DeliveryPickup  = "pickup"
)

// 支払い方法
const (
	PaymentOnline         = "online"
	PaymentCashOnDelivery = "cash_on_delivery"
	PaymentCardOnDelivery = "card_on_delivery"
)

var (
	cardNumberRe = regexp.MustCompile(`^\d{12,19}$`)
	cardExpiryRe = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cardCVVRe    = regexp.MustCompile(`^\d{3,4}$`)
	phoneDigitRe = regexp.MustCompile(`\D`)
)

// チェックアウトフォームの生入力
type CheckoutForm struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	Phone          string `json:"phone"`
	DeliveryMethod string `json:"delivery_method"`
	Address        string `json:"address"`
	City           string `json:"city"`
	PickupStoreID  int64  `json:"pickup_store_id"`
	PaymentMethod  string `json:"payment_method"`
	CardNumber     string `json:"card_number"`
	CardHolder     string `json:"card_holder"`
	CardExpiry     string `json:"card_expiry"`
	CardCVV        string `json:"card_cvv"`
	Comment        string `json:"comment"`
}

// 検証を通った後の正規化済みデータ。CVVは保持しない。
type CheckoutData struct {
	FirstName      string
	LastName       string
	Phone          string
	DeliveryMethod string
	Address        string
	City           string
	PickupStoreID  int64
	PaymentMethod  string
	CardNumber     string
	CardHolder     string
	CardExpiry     string
	CardLast4      string
	Comment        string
}

// フォームを検証し、見つかった問題を全件返す（最初の1件で打ち切らない）。
// エラーが無ければ正規化済みデータを返す。
func ValidateCheckout(form CheckoutForm, now time.Time) (CheckoutData, []string) {
	var errs []string
	data := CheckoutData{
		Comment: strings.TrimSpace(form.Comment),
	}

	data.FirstName = strings.TrimSpace(form.FirstName)
	if data.FirstName == "" {
		errs = append(errs, "Укажите имя.")
	}
	data.LastName = strings.TrimSpace(form.LastName)
	if data.LastName == "" {
		errs = append(errs, "Укажите фамилию.")
	}

	phone, phoneErrs := normalizePhone(form.Phone)
	data.Phone = phone
	errs = append(errs, phoneErrs...)

	switch form.DeliveryMethod {
	case DeliveryCourier:
		data.DeliveryMethod = DeliveryCourier
		data.Address = strings.TrimSpace(form.Address)
		if data.Address == "" {
			errs = append(errs, "Укажите адрес доставки.")
		}
		data.City = strings.TrimSpace(form.City)
		if data.City == "" {
			errs = append(errs, "Укажите город доставки.")
		}
	case DeliveryPickup:
		data.DeliveryMethod = DeliveryPickup
		data.PickupStoreID = form.PickupStoreID
		if form.PickupStoreID <= 0 {
			errs = append(errs, "Выберите точку самовывоза.")
		}
	default:
		errs = append(errs, "Выберите способ доставки.")
	}

	switch form.PaymentMethod {
	case PaymentOnline:
		data.PaymentMethod = PaymentOnline
		cardErrs := validateCard(&data, form, now)
		errs = append(errs, cardErrs...)
	case PaymentCashOnDelivery, PaymentCardOnDelivery:
		data.PaymentMethod = form.PaymentMethod
	default:
		errs = append(errs, "Выберите способ оплаты.")
	}

	return data, errs
}

// 「+7 XXX XXX-XX-XX」へ正規化
func normalizePhone(raw string) (string, []string) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", []string{"Укажите телефон."}
	}
	if !strings.HasPrefix(trimmed, "+7") {
		return "", []string{"Телефон должен начинаться с +7."}
	}
	digits := phoneDigitRe.ReplaceAllString(trimmed[2:], "")
	if len(digits) != 10 {
		return "", []string{"Номер телефона должен содержать 10 цифр после +7."}
	}
	return fmt.Sprintf("+7 %s %s-%s-%s", digits[0:3], digits[3:6], digits[6:8], digits[8:10]), nil
}

func validateCard(data *CheckoutData, form CheckoutForm, now time.Time) []string {
	var errs []string

	holder := strings.ToUpper(strings.TrimSpace(form.CardHolder))
	if holder == "" {
		errs = append(errs, "Укажите владельца карты.")
	}
	data.CardHolder = holder

	number := phoneDigitRe.ReplaceAllString(form.CardNumber, "")
	if !cardNumberRe.MatchString(number) {
		errs = append(errs, "Введите корректный номер карты.")
	} else {
		data.CardNumber = groupDigits(number)
		data.CardLast4 = number[len(number)-4:]
	}

	expiry := strings.TrimSpace(form.CardExpiry)
	if m := cardExpiryRe.FindStringSubmatch(expiry); m == nil {
		errs = append(errs, "Введите срок действия в формате ММ/ГГ.")
	} else {
		month, _ := strconv.Atoi(m[1])
		year, _ := strconv.Atoi(m[2])
		year += 2000
		//月末まで有効
		endOfMonth := time.Date(year, time.Month(month)+1, 1, 0, 0, 0, 0, time.UTC)
		if !now.Before(endOfMonth) {
			errs = append(errs, "Срок действия карты истёк.")
		} else {
			data.CardExpiry = expiry
		}
	}

	if !cardCVVRe.MatchString(strings.TrimSpace(form.CardCVV)) {
		errs = append(errs, "CVV должен состоять из 3–4 цифр.")
	}

	return errs
}

// 4桁区切り
func groupDigits(digits string) string {
	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%4 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}
