package payments

import (
	"fmt"
	"math/rand"
)

// Transfer references look like "dtn042137": a fixed prefix the bank
// description can be scanned for, plus a 6-digit zero-padded number the
// admin types into the transfer note.
const (
	transferPrefix       = "dtn"
	referenceMaxAttempts = 100
)

// generateTransferContent draws random references until an unused one is
// found. Collisions are expected under concurrent creation (the unique index
// on transfer_content is the real guard); only exhausting the retry budget
// is a hard failure.
func generateTransferContent(repo Repository) (string, error) {
	for attempt := 0; attempt < referenceMaxAttempts; attempt++ {
		code := fmt.Sprintf("%s%06d", transferPrefix, rand.Intn(1000000))

		exists, err := repo.TransferContentExists(code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", ErrReferenceExhausted
}
