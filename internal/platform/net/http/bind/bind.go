// Package bind decodes and validates JSON request bodies
package bind

import (
	"encoding/json"
	stdhttp "net/http"

	perr "github.com/ChMatthaios/EUR-COM-SUITE/internal/platform/errors"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	entrans "github.com/go-playground/validator/v10/translations/en"
)

var (
	validate *validator.Validate
	trans    ut.Translator
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())
	enLoc := en.New()
	uni := ut.New(enLoc, enLoc)
	trans, _ = uni.GetTranslator("en")
	_ = entrans.RegisterDefaultTranslations(validate, trans)
}

// JSON decodes the request body into dst and runs struct validation.
// Unknown fields are rejected
func JSON(r *stdhttp.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return perr.JSONErrf("invalid request body: %v", err)
	}
	return Struct(dst)
}

// Struct validates dst, translating the first failure into a field error
func Struct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	if verrs, ok := err.(validator.ValidationErrors); ok && len(verrs) > 0 {
		fe := verrs[0]
		return perr.WithField(
			perr.Newf(perr.ErrorCodeValidation, "%s", fe.Translate(trans)),
			fe.Field(),
		)
	}
	return perr.Newf(perr.ErrorCodeValidation, "validation failed: %v", err)
}
