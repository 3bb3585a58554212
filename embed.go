package wb

import (
	"embed"
)

// Scaffold contains the starter project written out by `wb init`:
// the two page templates, entry scripts and shared style sheets.
//
//go:embed all:scaffold
var Scaffold embed.FS
