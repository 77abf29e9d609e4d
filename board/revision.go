package board

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/linesmerrill/school-board-api/models"
)

// Revision fingerprints a board document. Two documents with the same JSON form share a revision.
func Revision(data models.BoardData) string {
	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
