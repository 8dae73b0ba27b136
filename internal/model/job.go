package model

import "time"

// Format identifies how a resolved input file is handed to the engine.
type Format string

const (
	FormatStore   Format = "xbim"   // compiled store, opened directly
	FormatIFC     Format = "ifc"    // primary raw interchange
	FormatIFCZip  Format = "ifczip" // compressed interchange
	FormatIFCXML  Format = "ifcxml" // XML interchange
	FormatUnknown Format = ""
)

// IsRaw reports whether the format needs to be converted into a store on open.
func (f Format) IsRaw() bool {
	switch f {
	case FormatIFC, FormatIFCZip, FormatIFCXML:
		return true
	default:
		return false
	}
}

// CLIOptions holds user-configurable runtime options as parsed from flags,
// legacy slash tokens, environment, and the config file.
type CLIOptions struct {
	KeepStore       bool // persist the re-saved .xbim store after conversion
	SameFolder      bool // place the persisted store beside the input
	SingleThread    bool // force build concurrency to 1
	ForceRegenerate bool // ignore existing .xbim files when enumerating directories
	KeepTemp        bool // keep converter workdirs
	Converter       string
	ReportPath      string // optional YAML batch report
	LogFile         string
	Verbose         bool
	NoUI            bool
}

// ConversionJob is one resolved input file. Immutable for the job's lifetime.
type ConversionJob struct {
	ID           string
	InputPath    string // path as given on the command line
	ResolvedPath string // concrete file handed to the engine
	Format       Format
	KeepStore    bool
	SameFolder   bool
	Concurrency  int // 0 = engine default
}

// StageRecord is the timing of one completed engine stage.
type StageRecord struct {
	Name    string        `yaml:"name"`
	Depth   int           `yaml:"depth"`
	Elapsed time.Duration `yaml:"elapsed"`
}
