package preproc

import (
	"context"
	"iter"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/ardnew/shadervar/log"
)

// State controls whether an option may be changed by the user.
type State int

// Option states.
const (
	Mutable        State = iota // user configurable
	Readonly                    // configurable in principle, locked in this copy
	Unconfigurable              // has a single fixed value
)

func (s State) String() string {
	switch s {
	case Mutable:
		return "mutable"
	case Readonly:
		return "readonly"
	}

	return "unconfigurable"
}

var toggleValues = []Value{Bool(false), Bool(true)}

// defineRegexp matches an option-style define:
//
//	[//] #define NAME [VALUE] [// comment [allowed values]]
var defineRegexp = regexp.MustCompile(
	`^\s*(//)?\s*#define\s+(\w+)(?:\s+([\w.-]+))?\s*(?://(?:.*?\[(.*?)])?.*)?$`,
)

// Option is a shader-pack setting bound to a #define line. A value-less
// define is a toggle whose state is whether the line is commented out.
type Option struct {
	Name   string
	state  State
	values []Value
	toggle bool
	def    int
	cur    int
}

// ParseDefine returns the option declared by text, or nil if text is not an
// option-style define. Commented-out defines with a value are not options.
// The returned option is [Readonly] unless it has a single fixed value.
func ParseDefine(text string) *Option {
	m := defineRegexp.FindStringSubmatch(text)
	if m == nil {
		return nil
	}

	commented, name, value := m[1] != "", m[2], m[3]

	if value == "" {
		idx := 1
		if commented {
			idx = 0
		}

		return &Option{
			Name:   name,
			state:  Readonly,
			values: toggleValues,
			toggle: true,
			def:    idx,
			cur:    idx,
		}
	}

	if commented {
		return nil
	}

	initial := Detect(value)

	allowed, toggle := parseAllowed(initial, m[4])
	if allowed == nil {
		return &Option{
			Name:   name,
			state:  Unconfigurable,
			values: []Value{initial},
		}
	}

	idx := indexOf(initial, allowed)

	return &Option{
		Name:   name,
		state:  Readonly,
		values: allowed,
		toggle: toggle,
		def:    idx,
		cur:    idx,
	}
}

// parseAllowed splits a bracketed list of allowed values. The list
// [false true] denotes a toggle. The initial value is prepended when the list
// does not contain it.
func parseAllowed(initial Value, group string) ([]Value, bool) {
	fields := strings.Fields(group)
	if len(fields) == 0 {
		return nil, false
	}

	allowed := make([]Value, 0, len(fields)+1)
	found := false

	for _, f := range fields {
		v := Detect(f)
		found = found || v.Matches(initial)
		allowed = append(allowed, v)
	}

	if len(allowed) == 2 &&
		allowed[0].Kind() == KindToggle && !allowed[0].b &&
		allowed[1].Kind() == KindToggle && allowed[1].b {
		return toggleValues, true
	}

	if !found {
		allowed = slices.Insert(allowed, 0, initial)
	}

	return allowed, false
}

func indexOf(v Value, values []Value) int {
	for i, o := range values {
		if v.Matches(o) {
			return i
		}
	}

	return 0
}

// Copy returns an option sharing o's values with the given writability.
// Options with a single fixed value, and read-only options copied read-only,
// are returned as is.
func (o *Option) Copy(readonly bool) *Option {
	if o.state == Unconfigurable || readonly && o.state == Readonly {
		return o
	}

	c := *o
	c.state = Mutable

	if readonly {
		c.state = Readonly
	}

	return &c
}

// State returns the writability of o.
func (o *Option) State() State { return o.state }

// Configurable reports whether o has more than one fixed value.
func (o *Option) Configurable() bool { return o.state != Unconfigurable }

// IsToggle reports whether o is an on/off option.
func (o *Option) IsToggle() bool { return o.toggle }

// Enabled reports whether a toggle option is on. It is false for other
// options.
func (o *Option) Enabled() bool { return o.toggle && o.Current().Enabled() }

// Values returns the legal values of o.
func (o *Option) Values() []Value { return slices.Clone(o.values) }

// Current returns the current value of o.
func (o *Option) Current() Value { return o.values[o.cur] }

// Default returns the value o had in source.
func (o *Option) Default() Value { return o.values[o.def] }

// IsDefault reports whether the current value is the source value.
func (o *Option) IsDefault() bool { return o.cur == o.def }

// Index returns the position of the current value in [Option.Values].
func (o *Option) Index() int { return o.cur }

// SetIndex selects the value at index i. It is a no-op on read-only options.
func (o *Option) SetIndex(i int) error {
	if i < 0 || i >= len(o.values) {
		return ErrOptionRange.With(
			slog.String("option", o.Name),
			slog.Int("index", i),
			slog.Int("count", len(o.values)),
		)
	}

	if o.state == Mutable {
		o.cur = i
	}

	return nil
}

// Set selects the legal value matching v, or the first legal value if none
// matches. It is a no-op on read-only options.
func (o *Option) Set(v Value) {
	if o.state == Mutable {
		o.cur = indexOf(v, o.values)
	}
}

// Next advances to the following legal value, wrapping around.
func (o *Option) Next() {
	if o.state == Mutable {
		o.cur = (o.cur + 1) % len(o.values)
	}
}

// Prev steps back to the preceding legal value, wrapping around.
func (o *Option) Prev() {
	if o.state == Mutable {
		n := len(o.values)
		o.cur = (o.cur - 1 + n) % n
	}
}

// Reset restores the source value.
func (o *Option) Reset() {
	if o.state == Mutable {
		o.cur = o.def
	}
}

// Code renders o as a define line reflecting its current value.
func (o *Option) Code() string {
	if o.toggle {
		if o.Enabled() {
			return "#define " + o.Name
		}

		return "//#define " + o.Name
	}

	return "#define " + o.Name + " " + o.Current().String()
}

// Props renders o as a name=value properties entry.
func (o *Option) Props() string { return o.Name + "=" + o.Current().String() }

// Options are the options discovered in a set of lines.
type Options struct {
	byLine map[int]*Option
	named  map[string]*Option
	list   []*Option
}

// DiscoverOptions finds option-style defines on standard and directive lines.
// Configurable options repeated under one name share a single [Option], so
// changing it affects every line that declares it.
func DiscoverOptions(ctx context.Context, lines []Line) *Options {
	opts := &Options{
		byLine: make(map[int]*Option),
		named:  make(map[string]*Option),
	}

	for i, ln := range lines {
		if ln.Tag == BlockComment {
			continue
		}

		parsed := ParseDefine(ln.Text)
		if parsed == nil {
			continue
		}

		opt := parsed.Copy(false)
		opts.byLine[i] = opt

		prev, seen := opts.named[opt.Name]
		if !seen {
			opts.named[opt.Name] = opt
			opts.list = append(opts.list, opt)

			continue
		}

		if slices.EqualFunc(opt.values, prev.values, Value.Matches) &&
			!opt.Current().Matches(prev.Current()) {
			log.WarnContext(
				ctx,
				"mismatched option values",
				slog.String("option", opt.Name),
				slog.Int("file", ln.File),
				slog.Int("line", ln.Number),
			)
		}

		switch {
		case opt.Configurable() && prev.Configurable():
			opts.byLine[i] = prev
		case !opt.Configurable() && !prev.Configurable():
			opts.named[opt.Name] = opt
			opts.list = append(opts.list, opt)
		}
	}

	return opts
}

// At returns the option declared on line index i.
func (o *Options) At(i int) (*Option, bool) {
	opt, ok := o.byLine[i]

	return opt, ok
}

// Lookup returns the option with the given name.
func (o *Options) Lookup(name string) (*Option, bool) {
	opt, ok := o.named[name]

	return opt, ok
}

// Len returns the number of distinct options.
func (o *Options) Len() int { return len(o.list) }

// All iterates the distinct options in source order.
func (o *Options) All() iter.Seq[*Option] {
	return slices.Values(o.list)
}

// Names returns the distinct option names in source order.
func (o *Options) Names() []string {
	names := make([]string, len(o.list))
	for i, opt := range o.list {
		names[i] = opt.Name
	}

	return names
}
