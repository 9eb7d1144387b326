// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"newsportal/internal/slug"
	"newsportal/internal/taxonomy"
)

// validate is the shared validator instance for admin requests. Field
// names in errors use the JSON tag.
var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("slugchars", func(fl validator.FieldLevel) bool {
		s := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		return s == "" || slug.Valid(s)
	})
	_ = validate.RegisterValidation("redirecttarget", func(fl validator.FieldLevel) bool {
		return redirectTarget(fl.Field().String())
	})
}

// redirectTarget reports whether s can be sent as a Location header
// unchanged: a site path starting with a single '/' or an absolute
// http(s) URL.
func redirectTarget(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n\\") {
		return false
	}
	if strings.HasPrefix(s, "/") {
		return !strings.HasPrefix(s, "//")
	}
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// checkStruct validates v and converts the first failure into a
// ValidationError.
func checkStruct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &taxonomy.ValidationError{Message: err.Error()}
	}
	fe := fieldErrs[0]
	return &taxonomy.ValidationError{Field: fe.Field(), Message: ruleMessage(fe)}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "max":
		return fmt.Sprintf("must be at most %s long", fe.Param())
	case "url":
		return "must be an absolute URL"
	case "uuid":
		return "must be a valid id"
	case "redirecttarget":
		return "must be a path starting with '/' or an absolute http(s) URL"
	case "slugchars":
		return "may only contain a-z, 0-9 and '-'"
	}
	return fmt.Sprintf("failed %q validation", fe.Tag())
}

// parseID parses a required id field.
func parseID(raw string) (uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return uuid.Nil, &taxonomy.ValidationError{Field: "id", Message: "is required"}
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, &taxonomy.ValidationError{Field: "id", Message: "must be a valid id"}
	}
	return id, nil
}
