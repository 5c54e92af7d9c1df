package report

import (
	"fmt"
	"time"
)

// AssignReferenceNumbers produces n reference numbers of the form
// <YYMMDD><counter>, counter zero-padded to three digits and starting at 1.
// The result is unique within the call; callers persist the mapping.
func AssignReferenceNumbers(date time.Time, n int) []string {
	if n <= 0 {
		return nil
	}
	prefix := date.Format("060102")
	refs := make([]string, n)
	for i := range refs {
		refs[i] = fmt.Sprintf("%s%03d", prefix, i+1)
	}
	return refs
}
