package service

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"boma/internal/apperr"
	"boma/internal/security"
)

const (
	minUsernameLen = 3
	maxUsernameLen = 30
	minPasswordLen = 6

	maxTitleLen       = 120
	maxDescriptionLen = 5000
	maxAddressLen     = 300
	maxCategoryLen    = 40
	maxImages         = 20
	maxImageRefLen    = 2048
	maxBedrooms       = 50
	maxCommentLen     = 2000
	maxPostLen        = 2000
	maxNotesLen       = 300
)

var (
	emailPattern    = regexp.MustCompile(`^\S+@\S+\.\S+$`)
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9._-]+$`)
)

func normalizeUsername(raw string, fe *apperr.FieldErrors) string {
	username := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(username)
	switch {
	case n < minUsernameLen || n > maxUsernameLen:
		fe.Add("username", fmt.Sprintf("must be %d to %d characters", minUsernameLen, maxUsernameLen))
	case !usernamePattern.MatchString(username):
		fe.Add("username", "may contain only letters, digits, '.', '_' and '-'")
	}
	return username
}

func normalizeEmail(raw string, fe *apperr.FieldErrors) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if !emailPattern.MatchString(email) {
		fe.Add("email", "must be a valid email address")
	}
	return email
}

func checkPassword(password string, fe *apperr.FieldErrors) {
	switch {
	case utf8.RuneCountInString(password) < minPasswordLen:
		fe.Add("password", fmt.Sprintf("must be at least %d characters", minPasswordLen))
	case len(password) > security.MaxPasswordBytes:
		fe.Add("password", fmt.Sprintf("must be at most %d bytes", security.MaxPasswordBytes))
	}
}

// checkText trims value and records a field error when its length falls outside [min, max].
func checkText(field, value string, min, max int, fe *apperr.FieldErrors) string {
	v := strings.TrimSpace(value)
	n := utf8.RuneCountInString(v)
	switch {
	case n < min && min == 1:
		fe.Add(field, "is required")
	case n < min:
		fe.Add(field, fmt.Sprintf("must be at least %d characters", min))
	case n > max:
		fe.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
	return v
}

func checkRating(field string, v int, fe *apperr.FieldErrors) {
	if v < 1 || v > 5 {
		fe.Add(field, "must be between 1 and 5")
	}
}

func checkImages(images []string, fe *apperr.FieldErrors) []string {
	if len(images) > maxImages {
		fe.Add("images", fmt.Sprintf("at most %d images", maxImages))
		return images
	}
	out := make([]string, 0, len(images))
	for i, ref := range images {
		ref = strings.TrimSpace(ref)
		if ref == "" || len(ref) > maxImageRefLen {
			fe.Add(fmt.Sprintf("images[%d]", i), "must be a non-empty reference")
			continue
		}
		out = append(out, ref)
	}
	return out
}
