package validator

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

func FormatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		var messages []string
		for _, fieldError := range validationErrors {
			messages = append(messages, getFieldErrorMessage(fieldError))
		}
		return strings.Join(messages, "; ")
	}
	return err.Error()
}

func getFieldErrorMessage(fe validator.FieldError) string {
	field := getFieldName(fe.Field())

	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		if fe.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid URL", field)
	case "uuid":
		return fmt.Sprintf("%s must be a valid id", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

func getFieldName(field string) string {
	fieldNames := map[string]string{
		"Name":          "Name",
		"Description":   "Description",
		"Category":      "Category",
		"Region":        "Region",
		"Latitude":      "Latitude",
		"Longitude":     "Longitude",
		"EventType":     "Event type",
		"StartDate":     "Start date",
		"EndDate":       "End date",
		"Location":      "Location",
		"Content":       "Content",
		"Rating":        "Rating",
		"EmojiReaction": "Emoji",
		"ImageURL":      "Image URL",
		"LinkURL":       "Link URL",
		"Position":      "Position",
		"Type":          "Type",
		"FriendID":      "Friend",
	}

	if name, ok := fieldNames[field]; ok {
		return name
	}
	return field
}
