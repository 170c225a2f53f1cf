package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"greenleaf/internal/apperr"
	"greenleaf/internal/domain"
	applog "greenleaf/internal/log"
	"greenleaf/internal/validate"
)

var structValidator = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("productid", func(fl validator.FieldLevel) bool {
		_, ok := validate.ID(fl.Field().String())
		return ok
	})
	return v
}

type productRequest struct {
	ProductID domain.ProductID `json:"productId" form:"productId" validate:"required,productid"`
}

type cartAddRequest struct {
	ProductID domain.ProductID `json:"productId" form:"productId" validate:"required,productid"`
	Qty       int              `json:"qty" form:"qty" validate:"gte=0"`
}

// Exactly one of Qty or Delta is expected; Qty wins when both are sent.
type cartQuantityRequest struct {
	ProductID domain.ProductID `json:"productId" form:"productId" validate:"required,productid"`
	Qty       *int             `json:"qty" form:"qty" validate:"required_without=Delta"`
	Delta     *int             `json:"delta" form:"delta" validate:"required_without=Qty"`
}

// bind parses and validates a request body into out.
func bind(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": "body"})
		return apperr.BadRequest("malformed request body", err)
	}
	if err := structValidator.Struct(out); err != nil {
		applog.Security(c, "validation.fail", map[string]any{"reason": err.Error()})
		return apperr.BadRequest("invalid request", err)
	}
	return nil
}

// formID reads and checks the productId form field.
func formID(c *fiber.Ctx) (domain.ProductID, error) {
	id, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		applog.Security(c, "validation.fail", map[string]any{"field": "productId"})
		return "", apperr.BadRequest("missing or invalid productId", nil)
	}
	return id, nil
}
