package middleware

import "errors"

var errNoClaims = errors.New("user claims not found in context or invalid type")
