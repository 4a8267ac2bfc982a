package config

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/cybergodev/tidy/internal/diag"
)

type value struct {
	n int
	s string
}

// Config is the option state of one engine handle.
type Config struct {
	vals [numIDs]value
	set  [numIDs]bool
}

// New returns a Config holding every option's default.
func New() *Config {
	c := &Config{}
	for id := ID(1); id < numIDs; id++ {
		if err := c.parse(id, table[id].Default); err != nil {
			panic(fmt.Sprintf("config: bad default for %s: %v", table[id].Name, err))
		}
		c.set[id] = false
	}
	return c
}

// Set applies a typed value to the option called name.
//
// Boolean options take a bool, an integer (non-zero is yes) or a yes/no
// word. Integer options take any Go integer, an integral float or, for
// pick lists, one of the pick list words. String options take strings.
func (c *Config) Set(name string, v any) error {
	opt, ok := Lookup(name)
	if !ok {
		return diag.Configf(name, diag.ErrUnknownOption, "unknown tidy option '%s'", name)
	}
	if s, isStr := v.(string); isStr {
		return c.setText(opt, s)
	}
	switch opt.Type {
	case Boolean:
		if b, isBool := v.(bool); isBool {
			c.store(opt.ID, boolInt(b), "")
			return nil
		}
		n, ok := toInt(v)
		if !ok {
			return invalid(opt, v, "a Boolean or integer")
		}
		c.store(opt.ID, boolInt(n != 0), "")
		return nil
	case Integer:
		if b, isBool := v.(bool); isBool && opt.Pick != nil {
			c.store(opt.ID, boolInt(b), "")
			return nil
		}
		n, ok := toInt(v)
		if !ok {
			return invalid(opt, v, "an Integer")
		}
		if n < int64(opt.Min) || n > int64(opt.Max) {
			return diag.Configf(opt.Name, diag.ErrInvalidValue,
				"option '%s' value %d out of range [%d, %d]", opt.Name, n, opt.Min, opt.Max)
		}
		c.store(opt.ID, int(n), "")
		return nil
	default:
		return invalid(opt, v, "a String")
	}
}

// SetValue applies a textual value, as found in configuration files.
func (c *Config) SetValue(name, text string) error {
	opt, ok := Lookup(name)
	if !ok {
		return diag.Configf(name, diag.ErrUnknownOption, "unknown tidy option '%s'", name)
	}
	return c.setText(opt, text)
}

func (c *Config) setText(opt Option, text string) error {
	if err := c.parse(opt.ID, text); err != nil {
		return diag.Configf(opt.Name, diag.ErrInvalidValue, "option '%s': %v", opt.Name, err)
	}
	return nil
}

func (c *Config) parse(id ID, text string) error {
	opt := table[id]
	text = strings.TrimSpace(text)
	switch opt.Type {
	case Boolean:
		b, err := parseBool(text)
		if err != nil {
			return err
		}
		c.store(id, boolInt(b), "")
	case Integer:
		if opt.Pick != nil {
			if n := pickIndex(opt.Pick, text); n >= 0 {
				c.store(id, n, "")
				return nil
			}
			if b, err := parseBool(text); err == nil {
				c.store(id, boolInt(b), "")
				return nil
			}
		}
		n, err := strconv.Atoi(text)
		if err != nil {
			return fmt.Errorf("%q is not a valid integer", text)
		}
		if n < opt.Min || n > opt.Max {
			return fmt.Errorf("value %d out of range [%d, %d]", n, opt.Min, opt.Max)
		}
		c.store(id, n, "")
	default:
		switch {
		case opt.Pick != nil:
			n := pickIndex(opt.Pick, text)
			if n < 0 {
				return fmt.Errorf("%q is not one of %s", text, strings.Join(opt.Pick, ", "))
			}
			c.store(id, n, opt.Pick[n])
		case opt.TagList:
			tags, err := parseTagList(text, id == Mute)
			if err != nil {
				return err
			}
			c.store(id, 0, strings.Join(tags, ", "))
		default:
			c.store(id, 0, text)
		}
	}
	return nil
}

func (c *Config) store(id ID, n int, s string) {
	c.vals[id] = value{n: n, s: s}
	c.set[id] = true
	if id == CharEncoding {
		c.vals[InputEncoding] = c.vals[id]
		c.vals[OutputEncoding] = c.vals[id]
		c.set[InputEncoding] = true
		c.set[OutputEncoding] = true
	}
}

// Bool returns the value of a Boolean option.
func (c *Config) Bool(id ID) bool { return c.vals[id].n != 0 }

// Int returns the value of an Integer option, or the pick list index.
func (c *Config) Int(id ID) int { return c.vals[id].n }

// Str returns the value of a String option.
func (c *Config) Str(id ID) string { return c.vals[id].s }

// Tags returns the entries of a tag list option.
func (c *Config) Tags(id ID) []string {
	s := c.vals[id].s
	if s == "" {
		return nil
	}
	return strings.Split(s, ", ")
}

// IsSet reports whether the option was explicitly set.
func (c *Config) IsSet(id ID) bool { return c.set[id] }

// Format returns the textual form of the option's current value, the
// form accepted by SetValue.
func (c *Config) Format(id ID) string {
	opt := table[id]
	switch opt.Type {
	case Boolean:
		return autoBoolPick[c.vals[id].n]
	case Integer:
		if opt.Pick != nil {
			return opt.Pick[c.vals[id].n]
		}
		return strconv.Itoa(c.vals[id].n)
	default:
		return c.vals[id].s
	}
}

// Changed returns the names and textual values of every option that was
// set explicitly, sorted by name.
func (c *Config) Changed() [][2]string {
	var out [][2]string
	for _, opt := range All() {
		if c.set[opt.ID] {
			out = append(out, [2]string{opt.Name, c.Format(opt.ID)})
		}
	}
	return out
}

func invalid(opt Option, v any, want string) error {
	return diag.Configf(opt.Name, diag.ErrInvalidValue, "option '%s' must be %s, got %T", opt.Name, want, v)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseBool(text string) (bool, error) {
	switch strings.ToLower(text) {
	case "y", "yes", "t", "true", "1":
		return true, nil
	case "n", "no", "f", "false", "0":
		return false, nil
	}
	return false, fmt.Errorf("%q is not a valid Boolean", text)
}

func pickIndex(pick []string, text string) int {
	for i, p := range pick {
		if strings.EqualFold(p, text) {
			return i
		}
	}
	return -1
}

func toInt(v any) (int64, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
			return 0, false
		}
		return int64(f), true
	}
	return 0, false
}

func parseTagList(text string, codes bool) ([]string, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	tags := make([]string, 0, len(fields))
	seen := make(map[string]bool, len(fields))
	for _, f := range fields {
		if codes {
			f = strings.ToUpper(f)
		} else {
			f = strings.ToLower(f)
		}
		if !validName(f, codes) {
			return nil, fmt.Errorf("%q is not a valid name", f)
		}
		if !seen[f] {
			seen[f] = true
			tags = append(tags, f)
		}
	}
	return tags, nil
}

func validName(s string, codes bool) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case codes && r >= 'A' && r <= 'Z', !codes && r >= 'a' && r <= 'z':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_' || r == ':' || r == '.'):
		default:
			return false
		}
	}
	return true
}
