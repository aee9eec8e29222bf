package utils

import (
	"fmt"
	"strings"
)

// SplitHistory breaks a raw line of input into history tokens.
// Tokens are separated by runs of whitespace; leading and trailing
// whitespace is ignored.
func SplitHistory(raw string) []string {
	return strings.Fields(raw)
}

// ValidateHistory checks that a history is usable for sampling.
// A maxTokens of 0 disables the length check.
func ValidateHistory(tokens []string, maxTokens int) error {
	if len(tokens) == 0 {
		return fmt.Errorf("history is empty")
	}
	if maxTokens > 0 && len(tokens) > maxTokens {
		return fmt.Errorf("history has %d tokens, limit is %d", len(tokens), maxTokens)
	}
	return nil
}

// ResolveOrder maps a requested sampling order onto a model's order.
// Zero selects the model order itself; anything outside [1, modelOrder]
// is rejected.
func ResolveOrder(requested, modelOrder int) (int, error) {
	if requested == 0 {
		return modelOrder, nil
	}
	if requested < 1 || requested > modelOrder {
		return 0, fmt.Errorf("order %d outside [1, %d]", requested, modelOrder)
	}
	return requested, nil
}
