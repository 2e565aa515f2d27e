package messagely

import (
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// DefaultPhoneRegion is used to parse numbers without a country prefix
var DefaultPhoneRegion = "US"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]+$`)

// RegisterUserMessage is the registration payload
type RegisterUserMessage struct {
	Username  string `json:"username" form:"username"`
	Password  string `json:"password" form:"password"`
	FirstName string `json:"first_name" form:"first_name"`
	LastName  string `json:"last_name" form:"last_name"`
	Phone     string `json:"phone" form:"phone"`
}

// Validate will validate the payload
func (e RegisterUserMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required, validation.Length(1, 64), validation.Match(usernamePattern)),
		validation.Field(&e.Password, validation.Required, validation.Length(8, 72)),
		validation.Field(&e.FirstName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.LastName, validation.Required, validation.Length(1, 200)),
		validation.Field(&e.Phone, validation.Required, validation.By(validatePhone)),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid registration payload")
	}
	return nil
}

// Profile normalizes the message into a Directory profile. The phone number
// is stored in E.164 format.
func (e RegisterUserMessage) Profile() Profile {
	return Profile{
		Username:  strings.TrimSpace(e.Username),
		Password:  e.Password,
		FirstName: strings.TrimSpace(e.FirstName),
		LastName:  strings.TrimSpace(e.LastName),
		Phone:     NormalizePhone(e.Phone),
	}
}

// NormalizePhone formats phone as E.164, returning the input trimmed when it
// cannot be parsed.
func NormalizePhone(phone string) string {
	phone = strings.TrimSpace(phone)
	num, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil {
		return phone
	}
	return phonenumbers.Format(num, phonenumbers.E164)
}

func validatePhone(value any) error {
	phone, _ := value.(string)
	if phone == "" {
		return nil
	}
	num, err := phonenumbers.Parse(phone, DefaultPhoneRegion)
	if err != nil || !phonenumbers.IsPossibleNumber(num) {
		return validation.NewError("validation_phone_invalid", "must be a valid phone number")
	}
	return nil
}

// LoginMessage is the login payload
type LoginMessage struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

// Validate will validate the payload
func (e LoginMessage) Validate() error {
	err := validation.ValidateStruct(&e,
		validation.Field(&e.Username, validation.Required),
		validation.Field(&e.Password, validation.Required),
	)
	if err != nil {
		return goerrors.FromOzzoValidation(err, "invalid login payload")
	}
	return nil
}
