package kernel

import "regexp"

type Email string

var emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// IsValid does a shallow format check, not deliverability.
func (e Email) IsValid() bool {
	return emailPattern.MatchString(string(e))
}

func (e Email) String() string { return string(e) }

type Embedding []float32
