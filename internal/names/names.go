// Package names generates the human-facing identifiers the service hands
// out: readable room slugs like "ember-4921" and temporary display names for
// clients that never set one.
package names

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

var slugWords = []string{
	"tree", "peak", "lemon", "river", "ember", "stone", "cloud", "breeze",
	"meadow", "forest", "canyon", "reef", "dawn", "glow", "drift", "sunset",
	"cedar", "maple", "birch", "spruce", "sparrow", "otter", "comet", "orbit",
	"nova", "poppy", "amber", "cocoa", "mint", "olive", "tide", "ridge",
	"cliff", "brook", "island", "valley", "prairie", "summit", "glacier",
	"thunder", "aurora", "echo", "moss", "fern", "willow", "saffron", "hazel",
	"juniper", "quartz", "opal", "coral",
}

var firstNames = []string{
	"Ada", "Diego", "Maya", "Sofia", "Liam", "Noah", "Emma", "Olivia", "Ava",
	"Isabella", "Lucas", "Mateo", "Elena", "Nora", "Amir", "Zoe", "Ivy",
	"Leo", "Mila", "Aria",
}

var lastNames = []string{
	"Lovelace", "Rivera", "Garcia", "Smith", "Johnson", "Brown", "Martinez",
	"Anderson", "Taylor", "Thomas", "Moore", "Jackson", "Martin", "Lee",
	"Perez", "Thompson", "White", "Harris", "Clark", "Lewis",
}

const (
	slugDigits       = 4
	slugSeparator    = "-"
	slugMaxAttempts  = 50
	tempNameMaxLen   = 32
	tempNameFallback = "Player"
)

// RoomSlug returns a readable slug of at most maxLength characters, shaped
// word-separator-digits. Lengths too short for that shape fall back to random
// hex.
func RoomSlug(maxLength int) string {
	minLen := 1 + len(slugSeparator) + slugDigits
	if maxLength < minLen {
		return hexSlug(maxLength)
	}

	maxWordLen := maxLength - len(slugSeparator) - slugDigits
	for i := 0; i < slugMaxAttempts; i++ {
		word := slugWords[rand.Intn(len(slugWords))]
		if len(word) > maxWordLen {
			continue
		}
		return fmt.Sprintf("%s%s%04d", word, slugSeparator, rand.Intn(10000))
	}
	return hexSlug(maxLength)
}

// TemporaryName returns a readable placeholder display name, preferring
// "First Last", degrading to shorter shapes under the length cap.
func TemporaryName() string {
	first := firstNames[rand.Intn(len(firstNames))]
	last := lastNames[rand.Intn(len(lastNames))]

	for _, candidate := range []string{
		first + " " + last,
		first + " " + last[:1] + ".",
		first,
	} {
		if len(candidate) <= tempNameMaxLen {
			return candidate
		}
	}
	return fmt.Sprintf("%s-%04d", tempNameFallback, rand.Intn(10000))
}

// ShortTag returns a short lowercase hex tag, used to suffix auto-provisioned
// profile names ("Player-7f3a").
func ShortTag() string {
	return hexSlug(4)
}

func hexSlug(n int) string {
	h := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(h) {
		n = len(h)
	}
	if n < 1 {
		n = 1
	}
	return h[:n]
}
