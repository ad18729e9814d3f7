package checkout

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wichananm65/storefront/internal/apperror"
	"github.com/wichananm65/storefront/internal/delivery"
)

type contactForm struct {
	Name  string `json:"name" validate:"required,min=2,max=100"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone" validate:"omitempty,min=6,max=20"`
}

type homeForm struct {
	Address    string `json:"address" validate:"required,min=5,max=200"`
	City       string `json:"city" validate:"required,min=2,max=100"`
	PostalCode string `json:"postalCode" validate:"required,min=4,max=10"`
}

// checkoutForm is what gets validated. Home is only set for home delivery so
// address rules never apply to pickup or carpark.
type checkoutForm struct {
	PaymentReference string      `json:"paymentReference" validate:"required,max=128"`
	DeliveryType     string      `json:"deliveryType" validate:"required,oneof=pickup carpark home"`
	CenterID         string      `json:"centerId" validate:"required_if=DeliveryType pickup"`
	CarparkID        string      `json:"carparkId" validate:"required_if=DeliveryType carpark"`
	AgentID          string      `json:"agentId" validate:"required_if=DeliveryType home"`
	Contact          contactForm `json:"contact"`
	Home             *homeForm   `json:"home"`
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func formFrom(req Request) checkoutForm {
	info := req.Delivery
	form := checkoutForm{
		PaymentReference: strings.TrimSpace(req.PaymentReference),
		DeliveryType:     strings.ToLower(strings.TrimSpace(req.DeliveryType)),
		CenterID:         strings.TrimSpace(info.CenterID),
		CarparkID:        strings.TrimSpace(info.CarparkID),
		AgentID:          strings.TrimSpace(info.AgentID),
		Contact: contactForm{
			Name:  strings.TrimSpace(info.Contact.Name),
			Email: strings.TrimSpace(info.Contact.Email),
			Phone: strings.TrimSpace(info.Contact.Phone),
		},
	}
	if form.DeliveryType == string(delivery.TypeHome) {
		form.Home = &homeForm{
			Address:    strings.TrimSpace(info.Address),
			City:       strings.TrimSpace(info.City),
			PostalCode: strings.TrimSpace(info.PostalCode),
		}
	}
	return form
}

// validateForm runs every rule and returns all failures at once.
func validateForm(v *validator.Validate, form checkoutForm) error {
	err := v.Struct(form)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apperror.Invalid([]apperror.Issue{{Field: "request", Message: err.Error()}})
	}

	issues := make([]apperror.Issue, 0, len(verrs))
	for _, fe := range verrs {
		issues = append(issues, apperror.Issue{Field: fieldPath(fe), Message: describe(fe)})
	}
	return apperror.Invalid(issues)
}

// fieldPath turns "checkoutForm.home.city" into "deliveryInfo.city".
func fieldPath(fe validator.FieldError) string {
	parts := strings.Split(fe.Namespace(), ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	switch parts[0] {
	case "paymentReference", "deliveryType":
		return parts[0]
	case "home":
		parts = parts[1:]
	}
	return "deliveryInfo." + strings.Join(parts, ".")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s characters", fe.Param())
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	default:
		return "is invalid"
	}
}
