package history

import (
	"fmt"
	"strings"
	"time"

	"imgprompt/internal/domain"
	"imgprompt/pkg/zip"
)

// Export renders entries as a zip archive with one text file per prompt,
// numbered newest first.
func Export(entries []domain.HistoryEntry) ([]byte, error) {
	files := make([]zip.File, 0, len(entries))
	for i, e := range entries {
		var b strings.Builder
		fmt.Fprintf(&b, "id: %s\n", e.ID)
		fmt.Fprintf(&b, "time: %s\n", e.Timestamp.Format(time.RFC3339))
		fmt.Fprintf(&b, "image: %s\n", e.ImageRef)
		fmt.Fprintf(&b, "backend: %s\n\n", e.Backend)
		b.WriteString(e.Prompt)
		b.WriteString("\n")
		files = append(files, zip.File{
			Name:     fmt.Sprintf("%02d-%s.txt", i+1, e.ID),
			Data:     []byte(b.String()),
			Modified: e.Timestamp,
		})
	}
	return zip.Archive(files)
}
