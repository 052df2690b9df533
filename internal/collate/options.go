package collate

import (
	"fmt"

	"comicpack/internal/config"
	"comicpack/internal/encoder"
	"comicpack/internal/imagext"
)

// Options controls the pipeline for every directory in a run.
type Options struct {
	Extensions    imagext.Set
	UpperExt      bool
	Format        string
	AutoThreshold int64
	SkipExisting  bool
	Verify        bool
	Workers       int
	Policy        encoder.Policy
	Parallel      int
	Lock          bool
	DryRun        bool
}

// OptionsFromConfig maps configuration onto pipeline options.
func OptionsFromConfig(cfg *config.Config) (Options, error) {
	policy, err := encoder.ParsePolicy(cfg.Compression.Policy)
	if err != nil {
		return Options{}, fmt.Errorf("compression.policy: %w", err)
	}
	return Options{
		Extensions:    imagext.NewSet(cfg.Images.Extensions...),
		UpperExt:      cfg.UpperExtensions(),
		Format:        cfg.Archive.Format,
		AutoThreshold: cfg.AutoThresholdBytes(),
		SkipExisting:  cfg.Archive.SkipExisting,
		Verify:        cfg.Archive.Verify,
		Workers:       cfg.Workers(),
		Policy:        policy,
		Parallel:      cfg.Workflow.ParallelDirectories,
		Lock:          cfg.Workflow.Lock,
	}, nil
}
