//go:build js && wasm

package persist

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hack-pad/hackpadfs/indexeddb"
)

// OpenBrowser returns a cache stored in the browser's IndexedDB under db,
// scoped to the current origin.
func OpenBrowser(ctx context.Context, db string, log *slog.Logger) (*Cache, error) {
	fsys, err := indexeddb.NewFS(ctx, db, indexeddb.Options{})
	if err != nil {
		return nil, fmt.Errorf("persist: open indexeddb %s: %w", db, err)
	}
	return New(fsys, DefaultName, log), nil
}
