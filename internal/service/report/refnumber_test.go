package report

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssignReferenceNumbers(t *testing.T) {
	date := time.Date(2025, 4, 18, 10, 0, 0, 0, time.UTC)

	refs := AssignReferenceNumbers(date, 3)
	require.Len(t, refs, 3)
	assert.Equal(t, "250418001", refs[0])
	assert.Equal(t, "250418002", refs[1])
	assert.Equal(t, "250418003", refs[2])
}

func TestAssignReferenceNumbers_FormatAndUniqueness(t *testing.T) {
	date := time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC)
	pattern := regexp.MustCompile(`^\d{6}\d{3}$`)

	refs := AssignReferenceNumbers(date, 50)
	require.Len(t, refs, 50)

	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		assert.Regexp(t, pattern, ref)
		assert.False(t, seen[ref], "duplicate reference number %s", ref)
		seen[ref] = true
	}
}

func TestAssignReferenceNumbers_Empty(t *testing.T) {
	date := time.Date(2025, 4, 18, 10, 0, 0, 0, time.UTC)

	assert.Empty(t, AssignReferenceNumbers(date, 0))
	assert.Empty(t, AssignReferenceNumbers(date, -1))
}
