package billing

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// GenerateInvoiceNumber produces a unique invoice number.
// The predecessor scheme was INV-<epoch-ms>, which collides under rapid
// concurrent creation; a short random suffix keeps the sortable timestamp
// prefix while making collisions practically impossible.
func GenerateInvoiceNumber(now time.Time) string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("INV-%d-%s", now.UnixMilli(), suffix)
}
