package utils

import "strings"

// AnonymizeToken - replaces all but the last visible characters of the token with asterisks
func AnonymizeToken(token string, visible int) string {
	if visible <= 0 || len(token) <= visible {
		return strings.Repeat("*", len(token))
	}

	return strings.Repeat("*", len(token)-visible) + token[len(token)-visible:]
}
