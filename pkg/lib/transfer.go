package lib

import (
	"context"
	"io"

	"github.com/slok/dothis/internal/app/randomizer"
	"github.com/slok/dothis/internal/transfer"
)

// Export writes all the data as a JSON export document.
func (c *Client) Export(w io.Writer) error {
	return mapError(c.svc.Export(w))
}

// ImportOpts configures an import.
type ImportOpts struct {
	// Mode defaults to [ImportModeMerge].
	Mode ImportMode
	// Selection are the imported tasks used by [ImportModeSelective], as
	// task IDs or 1-based positions on the document.
	Selection []string
}

// Import reads an export document and applies it.
func (c *Client) Import(ctx context.Context, r io.Reader, opts ImportOpts) (*ImportResult, error) {
	if opts.Mode == "" {
		opts.Mode = ImportModeMerge
	}

	imp, err := c.svc.DecodeImport(r)
	if err != nil {
		return nil, mapError(err)
	}

	res, err := c.svc.Import(ctx, imp, randomizer.ImportOptions{
		Mode:      transfer.Mode(opts.Mode),
		Selection: opts.Selection,
	})
	if err != nil {
		return nil, mapError(err)
	}

	return &ImportResult{
		Imported:      res.Imported,
		Skipped:       res.Skipped,
		ActiveCleared: res.ActiveCleared,
	}, nil
}
