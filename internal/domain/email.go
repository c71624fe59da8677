package domain

import (
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidEmail accepts addresses of the form local@domain.tld.
func ValidEmail(email string) bool {
	if validate.Var(email, "required,email") != nil {
		return false
	}
	at := strings.LastIndex(email, "@")
	host := email[at+1:]
	dot := strings.LastIndex(host, ".")
	return dot > 0 && dot < len(host)-1
}

// ValidURL reports whether s is an absolute http(s) URL.
func ValidURL(s string) bool {
	return validate.Var(s, "required,http_url") == nil
}
