// Command rubriccheck validates rubric documents without running an
// analysis: embedded versions by default, an on-disk directory with -dir.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/autoesg/analyzer/constants"
	"github.com/autoesg/analyzer/internal/rubric"
)

func main() {
	var (
		version = flag.String("version", "", "validate only this rubric version")
		dir     = flag.String("dir", "", "directory of rubric YAML documents overriding the embedded set")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	versions := rubric.Versions()
	if *version != "" {
		versions = []string{*version}
	}
	if len(versions) == 0 {
		logger.Error("no rubric versions found")
		os.Exit(1)
	}

	failures := 0
	for _, v := range versions {
		rub, err := rubric.Load(v, *dir)
		if err != nil {
			logger.Error("rubric invalid", "version", v, "error", err)
			failures++
			continue
		}
		fin, _ := rub.Track(constants.TrackFinancial)
		sus, _ := rub.Track(constants.TrackSustainability)
		fmt.Printf("%s: OK (financial %d pts / %d indicators, sustainability %d pts / %d indicators)\n",
			rub.Version,
			fin.Ceiling, len(fin.Indicators()),
			sus.Ceiling, len(sus.Indicators()),
		)
	}

	if failures > 0 {
		os.Exit(1)
	}
}
