// Package content bundles the reference library shipped with the consult binary.
//
// Trees live under trees/, one YAML file per tree. Drug monographs, info pages
// and risk calculators are shared by every tree and live in drugs.yaml,
// info-pages.yaml and calculators.yaml.
package content

import "embed"

// FS holds the bundled YAML library. Load it with the file adapter.
//
//go:embed trees/*.yaml drugs.yaml info-pages.yaml calculators.yaml
var FS embed.FS
