// Package pypm is the public core API: scan a Python project, parse its
// imports, and resolve them to PyPI distribution names. CLI argument
// parsing, manifest I/O, and package installation build on top of this
// package; they are not part of it.
//
// The data model itself lives in internal/domain and is re-exported
// here via type aliases, so that internal stage packages (scan, parse,
// resolve, index) can depend on the types without importing this
// package back -- which would otherwise cycle, since this package
// imports those stage packages to implement Scan/ParseMany/Resolve/Infer.
package pypm

import "github.com/nullpx/pypm/internal/domain"

type (
	FilePath             = domain.FilePath
	FileFingerprint      = domain.FileFingerprint
	ModuleName           = domain.ModuleName
	ImportClassification = domain.ImportClassification
	ParseResult          = domain.ParseResult
	DistributionName     = domain.DistributionName
	Dependency           = domain.Dependency
	CacheEntry           = domain.CacheEntry
	WarningKind          = domain.WarningKind
	Warning              = domain.Warning
	ExitError            = domain.ExitError
	Options              = domain.Options
	ResolveResult        = domain.ResolveResult
	InferResult          = domain.InferResult
)

const (
	Runtime = domain.Runtime
	Typing  = domain.Typing
	Dynamic = domain.Dynamic

	WarnTransient  = domain.WarnTransient
	WarnAbsent     = domain.WarnAbsent
	WarnMalformed  = domain.WarnMalformed
	WarnUnsafe     = domain.WarnUnsafe
	WarnCorrupt    = domain.WarnCorrupt
	WarnPermission = domain.WarnPermission
)
