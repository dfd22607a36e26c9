package partfile

import (
	"os"

	"github.com/rs/zerolog"

	"partfile/internal/config"
	"partfile/internal/logging"
	"partfile/internal/metrics"
)

// Unknown is the sentinel for a boundary chunk size that has not been
// determined yet.
const Unknown int32 = -1

// Options is a value-type configuration snapshot, cloned by OpenNew and
// OpenExisting when they are called. Mutating an Options value
// after a Partfile has captured it has no effect on that Partfile.
type Options struct {
	// Folder is the destination directory for the completed file.
	Folder string
	// PartFolder is the directory holding the container file.
	PartFolder string
	// PartExtension is appended to filename to form the container path.
	PartExtension string

	// Overwrite permits deleting a pre-existing completed file.
	Overwrite bool
	// PartOverwrite permits deleting a pre-existing container file.
	PartOverwrite bool

	// AutoCreate materializes the completed file as soon as Partsize is
	// reached.
	AutoCreate bool

	// DeleteOnDispose removes the completed file on Dispose.
	DeleteOnDispose bool
	// DeletePartOnDispose removes the container file on Dispose.
	DeletePartOnDispose bool
	// DeletePartOnCreate removes the container file once Create succeeds.
	DeletePartOnCreate bool
	// StayAlive keeps a read handle open on the completed file after
	// Create, so GetReadStream keeps working.
	StayAlive bool

	// FirstChunksize and LastChunksize are the boundary chunk lengths, when
	// known in advance. Unknown (-1) means "not yet known".
	FirstChunksize int32
	LastChunksize  int32

	// FlushOnEveryChunk fsyncs the container after every append.
	FlushOnEveryChunk bool

	// OnFileCreating and OnFileCreated are lifecycle callbacks; OnWarning
	// is invoked for non-fatal conditions (duplicate write, write after
	// create). Any of these may be nil.
	OnFileCreating func(*Partfile)
	OnFileCreated  func(*Partfile)
	OnWarning      func(*Partfile, string)

	// Logger receives a structured record of every lifecycle event and
	// warning. The zero value (zerolog.Nop()) discards everything.
	Logger zerolog.Logger
	// Metrics, if non-nil, receives Prometheus instrumentation. A nil
	// Metrics disables instrumentation entirely.
	Metrics *metrics.Collector
}

// DefaultOptions returns the documented defaults: current directory for the
// completed file, the OS temp directory for the container, ".apf" as the
// extension, auto-create and stay-alive enabled, boundary sizes unknown.
func DefaultOptions() Options {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}

	return Options{
		Folder:             cwd,
		PartFolder:         os.TempDir(),
		PartExtension:      ".apf",
		AutoCreate:         true,
		DeletePartOnCreate: true,
		StayAlive:          true,
		FirstChunksize:     Unknown,
		LastChunksize:      Unknown,
		Logger:             logging.Nop(),
	}
}

// clone returns a shallow value copy. Options is already a plain struct, so
// assignment is the clone; this exists to make the "cloned on construction"
// invariant explicit at call sites.
func (o Options) clone() Options {
	return o
}

// OptionFunc mutates an in-progress Options value. Used with New to build a
// configuration from DefaultOptions with functional-option ergonomics.
type OptionFunc func(*Options)

// New returns DefaultOptions with each fn applied in order.
func New(fns ...OptionFunc) Options {
	o := DefaultOptions()
	for _, fn := range fns {
		fn(&o)
	}
	return o
}

func WithFolder(folder string) OptionFunc {
	return func(o *Options) { o.Folder = folder }
}

func WithPartFolder(partFolder string) OptionFunc {
	return func(o *Options) { o.PartFolder = partFolder }
}

func WithPartExtension(ext string) OptionFunc {
	return func(o *Options) { o.PartExtension = ext }
}

func WithOverwrite(overwrite, partOverwrite bool) OptionFunc {
	return func(o *Options) {
		o.Overwrite = overwrite
		o.PartOverwrite = partOverwrite
	}
}

func WithAutoCreate(autoCreate bool) OptionFunc {
	return func(o *Options) { o.AutoCreate = autoCreate }
}

func WithLifecycle(deleteOnDispose, deletePartOnDispose, deletePartOnCreate, stayAlive bool) OptionFunc {
	return func(o *Options) {
		o.DeleteOnDispose = deleteOnDispose
		o.DeletePartOnDispose = deletePartOnDispose
		o.DeletePartOnCreate = deletePartOnCreate
		o.StayAlive = stayAlive
	}
}

func WithBoundaryChunksizes(first, last int32) OptionFunc {
	return func(o *Options) {
		o.FirstChunksize = first
		o.LastChunksize = last
	}
}

func WithFlushOnEveryChunk(flush bool) OptionFunc {
	return func(o *Options) { o.FlushOnEveryChunk = flush }
}

func WithEvents(onCreating, onCreated func(*Partfile), onWarning func(*Partfile, string)) OptionFunc {
	return func(o *Options) {
		o.OnFileCreating = onCreating
		o.OnFileCreated = onCreated
		o.OnWarning = onWarning
	}
}

func WithLogger(logger zerolog.Logger) OptionFunc {
	return func(o *Options) { o.Logger = logger }
}

func WithMetrics(collector *metrics.Collector) OptionFunc {
	return func(o *Options) { o.Metrics = collector }
}

// LoadOptions reads a YAML config file (internal/config.FileConfig's shape)
// and merges it onto DefaultOptions. Callback fields, Logger and Metrics are
// left at their defaults; set them afterward if needed.
func LoadOptions(path string) (Options, error) {
	fc, err := config.Load(path)
	if err != nil {
		return Options{}, err
	}

	o := DefaultOptions()
	o.Folder = fc.Folder
	o.PartFolder = fc.PartFolder
	o.PartExtension = fc.PartExtension
	o.Overwrite = fc.Overwrite
	o.PartOverwrite = fc.PartOverwrite
	o.AutoCreate = fc.AutoCreate
	o.DeleteOnDispose = fc.DeleteOnDispose
	o.DeletePartOnDispose = fc.DeletePartOnDispose
	o.DeletePartOnCreate = fc.DeletePartOnCreate
	o.StayAlive = fc.StayAlive
	o.FirstChunksize = fc.FirstChunksize
	o.LastChunksize = fc.LastChunksize
	o.FlushOnEveryChunk = fc.FlushOnEveryChunk
	return o, nil
}

// SaveOptions writes the persistable subset of o to path as YAML.
func SaveOptions(path string, o Options) error {
	return config.Save(path, config.FileConfig{
		Folder:              o.Folder,
		PartFolder:          o.PartFolder,
		PartExtension:       o.PartExtension,
		Overwrite:           o.Overwrite,
		PartOverwrite:       o.PartOverwrite,
		AutoCreate:          o.AutoCreate,
		DeleteOnDispose:     o.DeleteOnDispose,
		DeletePartOnDispose: o.DeletePartOnDispose,
		DeletePartOnCreate:  o.DeletePartOnCreate,
		StayAlive:           o.StayAlive,
		FirstChunksize:      o.FirstChunksize,
		LastChunksize:       o.LastChunksize,
		FlushOnEveryChunk:   o.FlushOnEveryChunk,
	})
}
