package request

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/dlclark/regexp2"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"

	"github.com/dancehub/event-registration/internal/domain"
)

const (
	productFieldPrefix = "product_"
	// A WSDC id is 1 to 7 digits and never all zeros.
	wsdcIDRegexPattern = `^(?!0+$)\d{1,7}$`
	maxFieldLength     = 100
)

var (
	wsdcIDExp = regexp2.MustCompile(wsdcIDRegexPattern, regexp2.None)

	errInvalidWSDCID   = errors.New("wsdc id must be 1 to 7 digits and not all zeros")
	errInvalidAge      = errors.New("age must be a whole number")
	errAgeRange        = errors.New("age must be between 1 and 120")
	errInvalidQuantity = errors.New("quantity must be a whole number")
	errReservedRole    = errors.New("role is reserved for event staff")
)

// RegisterRequest is the form posted by the registration page. Products come
// in as product_<uuid>=<quantity> fields.
type RegisterRequest struct {
	Role       string
	WSDCID     string
	WSDCLevel  string
	Country    string
	Age        *int
	Partner    string
	Selections []domain.ProductSelection
}

func ParseRegisterForm(form url.Values) (RegisterRequest, error) {
	req := RegisterRequest{
		Role:      strings.TrimSpace(form.Get("role")),
		WSDCID:    strings.TrimSpace(form.Get("wsdcID")),
		WSDCLevel: strings.TrimSpace(form.Get("wsdcLevel")),
		Country:   strings.TrimSpace(form.Get("country")),
		Partner:   strings.TrimSpace(form.Get("partner")),
	}

	if raw := strings.TrimSpace(form.Get("age")); raw != "" {
		age, err := strconv.Atoi(raw)
		if err != nil {
			return RegisterRequest{}, errInvalidAge
		}
		req.Age = &age
	}

	for key, values := range form {
		if !strings.HasPrefix(key, productFieldPrefix) || len(values) == 0 {
			continue
		}
		productID, err := uuid.Parse(strings.TrimPrefix(key, productFieldPrefix))
		if err != nil {
			return RegisterRequest{}, fmt.Errorf("invalid product field %q", key)
		}

		raw := strings.TrimSpace(values[0])
		if raw == "" {
			continue
		}
		quantity, err := strconv.Atoi(raw)
		if err != nil {
			return RegisterRequest{}, fmt.Errorf("%s: %w", key, errInvalidQuantity)
		}
		req.Selections = append(req.Selections, domain.ProductSelection{
			ProductID: productID,
			Quantity:  quantity,
		})
	}

	return req, nil
}

func (req *RegisterRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Role, validation.Required, validation.Length(1, maxFieldLength), validation.By(validateDanceRole)),
		validation.Field(&req.WSDCID, validation.By(validateWSDCID)),
		validation.Field(&req.WSDCLevel, validation.Length(0, maxFieldLength)),
		validation.Field(&req.Country, validation.Length(0, maxFieldLength)),
		validation.Field(&req.Age, validation.By(validateAge)),
		validation.Field(&req.Partner, validation.Length(0, maxFieldLength)),
		validation.Field(&req.Selections, validation.By(validateQuantities)),
	)
}

func validateWSDCID(value interface{}) error {
	id, _ := value.(string)
	if id == "" {
		return nil
	}
	ok, err := wsdcIDExp.MatchString(id)
	if err != nil || !ok {
		return errInvalidWSDCID
	}
	return nil
}

func validateDanceRole(value interface{}) error {
	role, _ := value.(string)
	if domain.IsStaffRole(role) {
		return errReservedRole
	}
	return nil
}

func validateAge(value interface{}) error {
	age, _ := value.(*int)
	if age != nil && (*age < 1 || *age > 120) {
		return errAgeRange
	}
	return nil
}

func validateQuantities(value interface{}) error {
	selections, _ := value.([]domain.ProductSelection)
	for _, sel := range selections {
		if sel.Quantity < 0 {
			return fmt.Errorf("quantity for product %s cannot be negative", sel.ProductID)
		}
		if sel.Quantity > domain.MaxSelectionQuantity {
			return fmt.Errorf("quantity for product %s cannot exceed %d", sel.ProductID, domain.MaxSelectionQuantity)
		}
	}
	return nil
}
