package config

import (
	"github.com/go-playground/validator/v10"
	"golang.org/x/text/language"

	perr "github.com/transit-daytable/internal/common/errors"
)

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("langtag", func(fl validator.FieldLevel) bool {
		_, err := language.Parse(fl.Field().String())
		return err == nil
	})
	return v
}

// Validate checks the assembled configuration and normalizes the language tag
func (c *Config) Validate() error {
	if err := newValidator().Struct(c); err != nil {
		return perr.Wrap(err, perr.KindConfig, "config.Validate", "invalid configuration")
	}
	tag, _ := language.Parse(c.Query.Language)
	c.Query.Language = tag.String()
	return nil
}
