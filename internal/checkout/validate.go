package checkout

import (
	"strings"

	"github.com/fjod/storefront/internal/apperr"
	"github.com/fjod/storefront/internal/domain"
)

func missingShippingFields(d domain.ShippingDetails) []string {
	required := []struct {
		field string
		value string
	}{
		{"first_name", d.FirstName},
		{"last_name", d.LastName},
		{"email", d.Email},
		{"address", d.Address},
		{"city", d.City},
		{"state", d.State},
		{"zip_code", d.ZipCode},
	}
	var missing []string
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			missing = append(missing, r.field)
		}
	}
	return missing
}

// ValidateShipping fails with the list of blank required fields.
func ValidateShipping(d domain.ShippingDetails) error {
	if missing := missingShippingFields(d); len(missing) > 0 {
		return apperr.Validation("shipping details are incomplete", missing...)
	}
	return nil
}

// ValidatePayment checks what the selected method needs: card fields for
// credit cards, an uploaded slip for manual slips and nothing otherwise.
func ValidatePayment(d domain.PaymentDetails) error {
	var missing []string
	switch d.PaymentMethod {
	case domain.PaymentCreditCard:
		for _, r := range []struct {
			field string
			value string
		}{
			{"card_name", d.CardName},
			{"card_number", d.CardNumber},
			{"expiry_date", d.ExpiryDate},
			{"cvv", d.CVV},
		} {
			if strings.TrimSpace(r.value) == "" {
				missing = append(missing, r.field)
			}
		}
	case domain.PaymentManualSlip:
		if d.UploadedSlip == nil {
			missing = append(missing, "uploaded_slip")
		}
	}

	if len(missing) > 0 {
		return apperr.Validation("payment details are incomplete", missing...)
	}
	return nil
}

// MaskCardNumber keeps only the last four digits.
func MaskCardNumber(number string) string {
	var digits []rune
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits = append(digits, r)
		}
	}
	if len(digits) == 0 {
		return ""
	}
	if len(digits) <= 4 {
		return "**** " + string(digits)
	}
	return "**** **** **** " + string(digits[len(digits)-4:])
}
