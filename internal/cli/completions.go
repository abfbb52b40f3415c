package cli

import (
	"io"
	"sort"

	"github.com/posener/complete"
	"github.com/samber/lo"

	"github.com/semmy-space/auth/internal/config"
	"github.com/semmy-space/auth/internal/storage"
)

// EntryPredictor completes entry names for arguments tagged
// predictor:"entry". An unreadable store completes nothing.
func EntryPredictor() complete.Predictor {
	return complete.PredictFunc(func(complete.Args) []string {
		return entryNames()
	})
}

func entryNames() []string {
	file, err := config.Load()
	if err != nil {
		return nil
	}
	cfg, err := file.WithEnv()
	if err != nil {
		return nil
	}
	backend, err := storage.NewBackend(cfg.ResolvedBackend(), cfg.ResolvedDataDir(), io.Discard)
	if err != nil {
		return nil
	}
	entries, err := backend.Load()
	if err != nil {
		return nil
	}
	names := lo.Keys(entries)
	sort.Strings(names)
	return names
}
