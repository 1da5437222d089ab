package jsonwalk

import (
	"fmt"
	"reflect"
	"sync/atomic"

	"github.com/karagenc/jsonwalk/internal/options"
	"github.com/karagenc/jsonwalk/internal/pool"
	"github.com/karagenc/jsonwalk/internal/sync"
	"github.com/karagenc/jsonwalk/serializer"
	"github.com/karagenc/jsonwalk/serializer/fast"
	"github.com/karagenc/jsonwalk/token"
)

// Options configures serialization. An Options value may be changed until
// it is used to resolve a type for the first time; from then on it is frozen
// and every setter returns ErrOptionsImmutable. Frozen options are safe for
// concurrent use. The zero Options is ready to use and holds the defaults.
type Options struct {
	mu          sync.Mutex
	frozen      atomic.Bool
	initialized atomic.Bool

	maxDepth                 int
	bufferSize               int
	ignoreNullValues         bool
	ignoreReadOnlyProperties bool
	caseInsensitive          bool
	useNumber                bool
	escapeHTML               bool
	unorderedMaps            bool
	namingPolicy             NamingPolicy
	converters               []Converter
	implementations          map[reflect.Type]reflect.Type
	factories                map[reflect.Type]*sequenceFactory
	accessor                 MemberAccessor
	backend                  serializer.JSONSerializer
	debugger                 Debugger

	classTypes sync.Map // reflect.Type -> ClassType
	classes    sync.Map // reflect.Type -> *classInfo
	policies   sync.Map // reflect.Type -> *PropertyInfo
	convs      sync.Map // reflect.Type -> converterEntry
}

type Option = options.Option[*Options]

type converterEntry struct {
	c Converter
}

// NewOptions returns options with the defaults applied, followed by opts.
func NewOptions(opts ...Option) (*Options, error) {
	o := &Options{}
	o.ensureDefaults()
	if err := options.Apply(o, opts...); err != nil {
		return nil, err
	}
	return o, nil
}

var (
	defaultOptionsOnce sync.Once
	defaultOptions     *Options
)

// ensureDefaults applies the defaults to o the first time it is touched.
func (o *Options) ensureDefaults() {
	if o.initialized.Load() {
		return
	}
	o.mu.Lock()
	o.setDefaults()
	o.mu.Unlock()
}

// setDefaults must be called with o.mu held.
func (o *Options) setDefaults() {
	if o.initialized.Load() {
		return
	}
	o.maxDepth = token.DefaultMaxDepth
	o.bufferSize = pool.DefaultBufferSize
	o.escapeHTML = true
	o.implementations = make(map[reflect.Type]reflect.Type)
	o.factories = make(map[reflect.Type]*sequenceFactory)
	o.accessor = ReflectionMemberAccessor{}
	o.backend = fast.New()
	o.debugger = NewNoopDebugger()
	o.initialized.Store(true)
}

func resolveOptions(o *Options) *Options {
	if o != nil {
		o.ensureDefaults()
		return o
	}
	defaultOptionsOnce.Do(func() {
		defaultOptions, _ = NewOptions()
	})
	return defaultOptions
}

// IsFrozen reports whether o has been used and can no longer be changed.
func (o *Options) IsFrozen() bool { return o.frozen.Load() }

func (o *Options) freeze() {
	if o.frozen.Load() {
		return
	}
	o.mu.Lock()
	o.setDefaults()
	if !o.frozen.Load() {
		o.frozen.Store(true)
		o.debugger.Log("options frozen")
	}
	o.mu.Unlock()
}

func (o *Options) update(name string, fn func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.frozen.Load() {
		return newError(ErrOptionsImmutable, nil, "set %s", name)
	}
	o.setDefaults()
	return fn()
}

func invalidOption(name string, v any) error {
	return newError(ErrInvalidOption, nil, "%s: %v", name, v)
}

func (o *Options) MaxDepth() int {
	o.ensureDefaults()
	return o.maxDepth
}

func (o *Options) DefaultBufferSize() int {
	o.ensureDefaults()
	return o.bufferSize
}

func (o *Options) IgnoreNullValues() bool            { return o.ignoreNullValues }
func (o *Options) IgnoreReadOnlyProperties() bool    { return o.ignoreReadOnlyProperties }
func (o *Options) PropertyNameCaseInsensitive() bool { return o.caseInsensitive }

func (o *Options) Backend() serializer.JSONSerializer {
	o.ensureDefaults()
	return o.backend
}

func (o *Options) MemberAccessor() MemberAccessor {
	o.ensureDefaults()
	return o.accessor
}

// SetMaxDepth sets the maximum nesting depth on both reading and writing.
func (o *Options) SetMaxDepth(depth int) error {
	return o.update("max depth", func() error {
		if depth < 1 {
			return invalidOption("max depth", depth)
		}
		o.maxDepth = depth
		return nil
	})
}

// SetDefaultBufferSize sets the size of the blocks read by a Decoder and the
// amount of output a Serializer accumulates before pausing.
func (o *Options) SetDefaultBufferSize(size int) error {
	return o.update("default buffer size", func() error {
		if size < 1 {
			return invalidOption("default buffer size", size)
		}
		o.bufferSize = size
		return nil
	})
}

// SetIgnoreNullValues makes reading leave members untouched on null and
// writing omit members whose value is nil.
func (o *Options) SetIgnoreNullValues(ignore bool) error {
	return o.update("ignore null values", func() error {
		o.ignoreNullValues = ignore
		return nil
	})
}

// SetIgnoreReadOnlyProperties makes writing omit members that cannot be set.
func (o *Options) SetIgnoreReadOnlyProperties(ignore bool) error {
	return o.update("ignore read-only properties", func() error {
		o.ignoreReadOnlyProperties = ignore
		return nil
	})
}

func (o *Options) SetPropertyNameCaseInsensitive(insensitive bool) error {
	return o.update("property name case insensitivity", func() error {
		o.caseInsensitive = insensitive
		return nil
	})
}

// SetPropertyNamingPolicy sets the policy that derives wire names for
// members without an explicit name tag. nil keeps Go member names.
func (o *Options) SetPropertyNamingPolicy(policy NamingPolicy) error {
	return o.update("property naming policy", func() error {
		o.namingPolicy = policy
		return nil
	})
}

// SetUseNumber makes numbers read into interface values decode as
// json.Number instead of float64.
func (o *Options) SetUseNumber(use bool) error {
	return o.update("use number", func() error {
		o.useNumber = use
		return nil
	})
}

func (o *Options) SetEscapeHTML(escape bool) error {
	return o.update("escape HTML", func() error {
		o.escapeHTML = escape
		return nil
	})
}

// SetUnorderedMaps disables sorting map keys on writing.
func (o *Options) SetUnorderedMaps(unordered bool) error {
	return o.update("unordered maps", func() error {
		o.unorderedMaps = unordered
		return nil
	})
}

func (o *Options) SetMemberAccessor(accessor MemberAccessor) error {
	return o.update("member accessor", func() error {
		if accessor == nil {
			return invalidOption("member accessor", accessor)
		}
		o.accessor = accessor
		return nil
	})
}

// SetBackend sets the serializer used for values implementing json.Marshaler
// or json.Unmarshaler.
func (o *Options) SetBackend(backend serializer.JSONSerializer) error {
	return o.update("backend", func() error {
		if backend == nil {
			return invalidOption("backend", backend)
		}
		o.backend = backend
		return nil
	})
}

func (o *Options) SetDebugger(debugger Debugger) error {
	return o.update("debugger", func() error {
		if debugger == nil {
			debugger = NewNoopDebugger()
		}
		o.debugger = debugger
		return nil
	})
}

// AddConverter registers c. Converters added first take precedence, and all
// of them take precedence over the built-in ones.
func (o *Options) AddConverter(c Converter) error {
	return o.update("converter", func() error {
		if c == nil {
			return invalidOption("converter", c)
		}
		o.converters = append(o.converters, c)
		return nil
	})
}

// RegisterImplementation makes members declared as the interface type iface
// read into values of type impl.
func (o *Options) RegisterImplementation(iface, impl reflect.Type) error {
	return o.update("implementation", func() error {
		if iface == nil || iface.Kind() != reflect.Interface {
			return invalidOption("implementation interface", iface)
		}
		if impl == nil || impl.Kind() == reflect.Interface || !impl.Implements(iface) {
			return invalidOption("implementation of "+iface.String(), impl)
		}
		o.implementations[iface] = impl
		return nil
	})
}

// RegisterCollectionFactory registers a constructor for a collection type.
// The factory must be a func([]E) C or func(map[string]V) C, optionally
// returning an error as second result. It is used after the elements of a C
// have been buffered.
func (o *Options) RegisterCollectionFactory(factory any) error {
	return o.update("collection factory", func() error {
		f, err := newSequenceFactory(factory)
		if err != nil {
			return err
		}
		o.factories[f.coll] = f
		return nil
	})
}

func WithMaxDepth(depth int) Option {
	return options.New(func(o *Options) error { return o.SetMaxDepth(depth) })
}

func WithDefaultBufferSize(size int) Option {
	return options.New(func(o *Options) error { return o.SetDefaultBufferSize(size) })
}

func WithIgnoreNullValues(ignore bool) Option {
	return options.New(func(o *Options) error { return o.SetIgnoreNullValues(ignore) })
}

func WithIgnoreReadOnlyProperties(ignore bool) Option {
	return options.New(func(o *Options) error { return o.SetIgnoreReadOnlyProperties(ignore) })
}

func WithPropertyNameCaseInsensitive(insensitive bool) Option {
	return options.New(func(o *Options) error { return o.SetPropertyNameCaseInsensitive(insensitive) })
}

func WithPropertyNamingPolicy(policy NamingPolicy) Option {
	return options.New(func(o *Options) error { return o.SetPropertyNamingPolicy(policy) })
}

func WithUseNumber(use bool) Option {
	return options.New(func(o *Options) error { return o.SetUseNumber(use) })
}

func WithEscapeHTML(escape bool) Option {
	return options.New(func(o *Options) error { return o.SetEscapeHTML(escape) })
}

func WithUnorderedMaps(unordered bool) Option {
	return options.New(func(o *Options) error { return o.SetUnorderedMaps(unordered) })
}

func WithMemberAccessor(accessor MemberAccessor) Option {
	return options.New(func(o *Options) error { return o.SetMemberAccessor(accessor) })
}

func WithBackend(backend serializer.JSONSerializer) Option {
	return options.New(func(o *Options) error { return o.SetBackend(backend) })
}

func WithDebugger(debugger Debugger) Option {
	return options.New(func(o *Options) error { return o.SetDebugger(debugger) })
}

func WithConverters(converters ...Converter) Option {
	return options.New(func(o *Options) error {
		for _, c := range converters {
			if err := o.AddConverter(c); err != nil {
				return err
			}
		}
		return nil
	})
}

func WithImplementation(iface, impl reflect.Type) Option {
	return options.New(func(o *Options) error { return o.RegisterImplementation(iface, impl) })
}

func WithCollectionFactory(factory any) Option {
	return options.New(func(o *Options) error { return o.RegisterCollectionFactory(factory) })
}

func (o *Options) String() string {
	return fmt.Sprintf("jsonwalk.Options{maxDepth: %d, frozen: %t}", o.MaxDepth(), o.IsFrozen())
}
