package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"greenleaf/internal/apperr"
	applog "greenleaf/internal/log"
)

const genericMessage = "Something went wrong. Please try again."

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler renders any error a handler returns: JSON {error, code} under
// /api/, the notfound page elsewhere. 5xx details never reach the client.
func ErrorHandler(c *fiber.Ctx, err error) error {
	status, code, msg := fiber.StatusInternalServerError, "INTERNAL_ERROR", genericMessage

	var fe *fiber.Error
	if errors.As(err, &fe) {
		status = fe.Code
		code = strings.ToUpper(strings.ReplaceAll(http.StatusText(fe.Code), " ", "_"))
		if status < fiber.StatusInternalServerError {
			msg = fe.Message
		}
	} else {
		ae := apperr.From(err)
		status, code = ae.Status, ae.Code
		if ae.Code != "INTERNAL_ERROR" {
			msg = ae.Message
		}
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		applog.Error(c, "server.error", err, map[string]any{"code": code})
	case code == apperr.CodeStorageCorrupt:
		applog.Warn(c, "storage.corrupt", err, nil)
	}

	if isAPI(c) {
		return c.Status(status).JSON(fiber.Map{"error": msg, "code": code})
	}
	if rerr := c.Status(status).Render("notfound", baseData(c, fiber.Map{"Message": msg})); rerr != nil {
		return c.Status(status).SendString(msg)
	}
	return nil
}

// formDone finishes a form post: storage trouble becomes a flash message on
// the previous page, anything else goes to ErrorHandler.
func formDone(c *fiber.Ctx, err error, okFlash, fallback string) error {
	if err != nil {
		switch {
		case apperr.Is(err, apperr.CodeStorageUnavailable):
			applog.Error(c, "storage.write.fail", err, nil)
			setFlash(c, flashStorageDown)
		case apperr.Is(err, apperr.CodeStorageCorrupt):
			applog.Warn(c, "storage.corrupt", err, nil)
			setFlash(c, flashStorageCorrupt)
		default:
			return err
		}
		return c.Redirect(back(c, fallback))
	}
	if okFlash != "" {
		setFlash(c, okFlash)
	}
	return c.Redirect(back(c, fallback))
}
