package schema

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Shared validator instance for Rules evaluation. Rules strings are plain
// go-playground/validator tag expressions evaluated against the coerced
// value, e.g. "gte=1,lte=100" or "oneof=asc desc".
var ruleValidator = validator.New(validator.WithRequiredStructEnabled())

// checkRules evaluates a rules tag against value and returns a
// client-facing message, or "" when the value passes (or no rules are set).
func checkRules(value any, rules string) string {
	if rules == "" {
		return ""
	}
	err := ruleValidator.Var(value, rules)
	if err == nil {
		return ""
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		rule := verrs[0].Tag()
		if param := verrs[0].Param(); param != "" {
			rule = rule + "=" + param
		}
		return fmt.Sprintf("Value does not satisfy rule '%s'.", rule)
	}
	return "Invalid value."
}
