package domain

type ShippingDetails struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Address   string `json:"address"`
	Apartment string `json:"apartment"`
	City      string `json:"city"`
	State     string `json:"state"`
	ZipCode   string `json:"zip_code"`
	Country   string `json:"country"`
}

// DefaultCountry pre-fills a fresh shipping draft.
const DefaultCountry = "United States"

// FullName joins first and last name.
func (d ShippingDetails) FullName() string {
	switch {
	case d.FirstName == "":
		return d.LastName
	case d.LastName == "":
		return d.FirstName
	default:
		return d.FirstName + " " + d.LastName
	}
}

type PaymentMethod string

const (
	PaymentCreditCard   PaymentMethod = "credit-card"
	PaymentPayPal       PaymentMethod = "paypal"
	PaymentBankTransfer PaymentMethod = "bank-transfer"
	PaymentManualSlip   PaymentMethod = "manual-slip"
)

func (m PaymentMethod) String() string {
	return string(m)
}

// Label is the human readable name stored on orders.
func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCreditCard:
		return "Credit Card"
	case PaymentPayPal:
		return "PayPal"
	case PaymentBankTransfer:
		return "Bank Transfer"
	case PaymentManualSlip:
		return "Manual Slip"
	default:
		return string(m)
	}
}

// SlipRef points at an uploaded payment slip in slip storage.
type SlipRef struct {
	Key         string `json:"key"`
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type PaymentDetails struct {
	PaymentMethod PaymentMethod `json:"payment_method"`
	CardName      string        `json:"card_name"`
	CardNumber    string        `json:"card_number"`
	ExpiryDate    string        `json:"expiry_date"`
	CVV           string        `json:"cvv"`
	UploadedSlip  *SlipRef      `json:"uploaded_slip,omitempty"`
}
