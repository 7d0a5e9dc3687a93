package ids

import (
	"strconv"

	"github.com/google/uuid"
)

// Generator produces globally unique task ids.
type Generator func() string

// UUID returns a random (version 4) UUID string.
func UUID() string {
	return uuid.NewString()
}

// Sequence returns a Generator yielding prefix-1, prefix-2, … . Tests use it
// where stable ids are easier to assert on.
func Sequence(prefix string) Generator {
	n := 0
	return func() string {
		n++
		return prefix + "-" + strconv.Itoa(n)
	}
}
