package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/defm/console/internal/core/domain"
)

func (a *app) print(v any) error {
	out := a.opts.Stdout
	if a.output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

func (a *app) printf(format string, args ...any) {
	fmt.Fprintf(a.opts.Stdout, format, args...)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, s := range args {
		id, err := parseID(s)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// saveDownload writes dl to target, defaulting to its own file name in the
// working directory.
func (a *app) saveDownload(dl *domain.Download, target string) error {
	if target == "" {
		target = filepath.Base(dl.Filename)
	}
	if err := os.WriteFile(target, dl.Content, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", target, err)
	}
	a.printf("Saved %s (%d bytes)\n", target, len(dl.Content))
	return nil
}
