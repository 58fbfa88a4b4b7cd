package actions

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/jlynch25/ticketbox/txerrors"
)

type createLotRequest struct {
	Actor     string `label:"account address" validate:"required"`
	PackageID string `label:"package id" validate:"required"`
	EventID   uint64
	Total     uint64
	Price     uint64
}

type buyTicketRequest struct {
	Actor     string `label:"account address" validate:"required"`
	PackageID string `label:"package id" validate:"required"`
	LotID     string `label:"lot id" validate:"required"`
}

type useTicketRequest struct {
	Actor     string `label:"account address" validate:"required"`
	PackageID string `label:"package id" validate:"required"`
	TicketID  string `label:"ticket id" validate:"required"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// check turns validator output into a single validation error.
func check(v *validator.Validate, req interface{}) error {
	err := v.Struct(req)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return txerrors.Wrap(txerrors.KindValidation, err, "invalid request")
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fe.Field()+" is "+fe.Tag())
	}
	return txerrors.Validation("%s", strings.Join(msgs, ", "))
}
