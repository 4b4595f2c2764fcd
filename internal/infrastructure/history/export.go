package history

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/doeshing/voicectl/internal/domain"
	"github.com/doeshing/voicectl/internal/ports"
)

// ExportJSONL writes up to limit records, newest first, to dest as one JSON
// object per line. It returns the number of records written.
func ExportJSONL(ctx context.Context, repo ports.HistoryRepository, dest string, limit int) (int, error) {
	records, err := repo.List(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), domain.DirectoryPermissions); err != nil {
		return 0, fmt.Errorf("create export dir: %w", err)
	}
	file, err := os.Create(dest)
	if err != nil {
		return 0, fmt.Errorf("create export file: %w", err)
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	for _, rec := range records {
		rec.ClientContext = ""
		if err := enc.Encode(rec); err != nil {
			return 0, fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}
	return len(records), file.Sync()
}
