// Package feature defines the closed vocabulary of boolean capabilities that
// drive shader template expansion and pipeline variant selection. A Flag names
// one optional vertex attribute channel or material behavior; a Set is the
// combination of flags a single draw call needs. Sets are plain bitmasks, so
// equality and map-key hashing are stable regardless of how a set was built.
package feature

import "strings"

// Flag is a single boolean capability gating optional shader and layout behavior.
// Each flag occupies one bit, so flags compose into a Set with bitwise OR.
type Flag uint32

const (
	// Color indicates per-vertex RGBA color data is present.
	Color Flag = 1 << iota

	// Normal indicates per-vertex normal data is present.
	Normal

	// UV indicates per-vertex texture coordinate data is present.
	UV

	// BaseColorTex indicates the material samples a base color texture.
	BaseColorTex

	// Instanced indicates per-instance transform data is bound alongside vertex data.
	Instanced
)

// flagNames maps each Flag to its case-sensitive template directive name.
// These names are the vocabulary matched by #ifdef / #ifndef regions.
var flagNames = map[Flag]string{
	Color:        "COLOR",
	Normal:       "NORMAL",
	UV:           "UV",
	BaseColorTex: "BASE_COLOR_TEX",
	Instanced:    "INSTANCED",
}

// allFlags lists every Flag in declaration order. Used for deterministic
// iteration when formatting sets and enumerating the vocabulary.
var allFlags = []Flag{Color, Normal, UV, BaseColorTex, Instanced}

// Flags returns every Flag in the vocabulary in declaration order.
//
// Returns:
//   - []Flag: a fresh slice of all defined flags
func Flags() []Flag {
	out := make([]Flag, len(allFlags))
	copy(out, allFlags)
	return out
}

// String returns the case-sensitive name of the flag as used in template
// conditional regions, or "UNKNOWN" for values outside the vocabulary.
func (f Flag) String() string {
	if name, ok := flagNames[f]; ok {
		return name
	}
	return "UNKNOWN"
}

// ParseFlag resolves a case-sensitive flag name from the template vocabulary.
//
// Parameters:
//   - name: the flag name as it appears in a template directive (e.g. "COLOR")
//
// Returns:
//   - Flag: the matching flag, or 0 if the name is unknown
//   - bool: true if the name was found, false otherwise
func ParseFlag(name string) (Flag, bool) {
	for _, f := range allFlags {
		if flagNames[f] == name {
			return f, true
		}
	}
	return 0, false
}

// Set is an immutable, order-independent combination of Flags. The zero value
// is the empty set. Set is a comparable value type and is used directly as a
// cache key; two sets holding the same flags are always equal no matter how
// they were constructed.
type Set uint32

// NewSet builds a Set from the given flags. Duplicate flags are harmless.
//
// Parameters:
//   - flags: the flags to include
//
// Returns:
//   - Set: the union of the given flags
func NewSet(flags ...Flag) Set {
	var s Set
	for _, f := range flags {
		s |= Set(f)
	}
	return s
}

// Has reports whether the set contains the given flag.
//
// Parameters:
//   - f: the flag to test
//
// Returns:
//   - bool: true if f is in the set
func (s Set) Has(f Flag) bool {
	return s&Set(f) != 0
}

// With returns a copy of the set with the given flag added.
//
// Parameters:
//   - f: the flag to add
//
// Returns:
//   - Set: the enlarged set; the receiver is unchanged
func (s Set) With(f Flag) Set {
	return s | Set(f)
}

// Without returns a copy of the set with the given flag removed.
//
// Parameters:
//   - f: the flag to remove
//
// Returns:
//   - Set: the reduced set; the receiver is unchanged
func (s Set) Without(f Flag) Set {
	return s &^ Set(f)
}

// Union returns the combination of two sets.
//
// Parameters:
//   - other: the set to merge with
//
// Returns:
//   - Set: every flag present in either set
func (s Set) Union(other Set) Set {
	return s | other
}

// IsEmpty reports whether the set contains no flags.
//
// Returns:
//   - bool: true if no flags are set
func (s Set) IsEmpty() bool {
	return s == 0
}

// String formats the set as flag names joined by "|" in declaration order,
// e.g. "COLOR|UV". The empty set formats as "NONE". The output is stable for
// equal sets, making it suitable for labels and log lines.
func (s Set) String() string {
	if s == 0 {
		return "NONE"
	}
	var names []string
	for _, f := range allFlags {
		if s.Has(f) {
			names = append(names, flagNames[f])
		}
	}
	return strings.Join(names, "|")
}
