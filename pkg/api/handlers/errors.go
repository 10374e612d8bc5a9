package handlers

import "github.com/gofiber/fiber/v3"

// ErrSectionNotFound is returned for a section ID the API does not serve
var ErrSectionNotFound = fiber.NewError(fiber.StatusNotFound, "section not found")

// ErrChartNotFound is returned when the section has no chart with the requested ID
var ErrChartNotFound = fiber.NewError(fiber.StatusNotFound, "chart not found")

// ErrInvalidImageSize is returned for width or height outside the allowed range
var ErrInvalidImageSize = fiber.NewError(fiber.StatusBadRequest, "image width and height must be between 64 and 4096")

// ErrWarmUnavailable is returned when no cache warmer is configured
var ErrWarmUnavailable = fiber.NewError(fiber.StatusServiceUnavailable, "cache warming is not configured")

func badRequest(err error) error {
	return fiber.NewError(fiber.StatusBadRequest, err.Error())
}

func unprocessable(err error) error {
	return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
}
