package prefs

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// Well-known preference keys.
var (
	ExtraPresetsFolderKey   = GlobalString("extra_presets_folder")
	ExtraLibrariesFolderKey = GlobalString("extra_libraries_folder")
	WindowWidthKey          = GlobalString("window_width")
	GUIKeyboardOctaveKey    = GlobalString("gui_keyboard_octave")
	PresetsRandomModeKey    = GlobalString("presets_random_mode")
	ShowKeyboardKey         = GlobalString("show_keyboard")
	ShowTooltipsKey         = GlobalString("show_tooltips")
	HighContrastGUIKey      = GlobalString("high_contrast_gui")
)

// CCToParamIDSection is the section holding MIDI CC to parameter ID
// mappings. Its keys are CC numbers (1-127), its values parameter IDs.
const CCToParamIDSection = "cc_to_param_id_map"

// Requirements describes the expected type of a descriptor's value and,
// for ints and strings, an optional validator. Validators may normalize
// the value in place (clamping is the common case); returning false
// rejects the value entirely and the default applies.
type Requirements interface {
	expectedType() ValueType
}

// IntRequirements expects an integer value.
type IntRequirements struct {
	Validator func(*int64) bool
}

func (IntRequirements) expectedType() ValueType { return ValueInt }

// BoolRequirements expects a boolean value. Booleans need no validation.
type BoolRequirements struct{}

func (BoolRequirements) expectedType() ValueType { return ValueBool }

// StringRequirements expects a string value.
type StringRequirements struct {
	Validator func(*string) bool
}

func (StringRequirements) expectedType() ValueType { return ValueString }

// Descriptor binds one key to its expected type, validator, default and UI
// metadata. The core only consumes the key, requirements and default; the
// metadata is carried for the GUI layer.
type Descriptor struct {
	Key          Key
	Requirements Requirements
	Default      Value
	Name         string
	Description  string
}

// ValidatedOrDefault checks a value against the descriptor. It returns the
// validated (possibly normalized) value and whether the result is the
// descriptor's default. A type mismatch or validator rejection forces the
// default.
func ValidatedOrDefault(v Value, d Descriptor) (Value, bool) {
	if v.Type() != d.Requirements.expectedType() {
		return d.Default, true
	}
	switch req := d.Requirements.(type) {
	case IntRequirements:
		n, _ := v.Int()
		if req.Validator != nil && !req.Validator(&n) {
			return d.Default, true
		}
		v = IntValue(n)
	case StringRequirements:
		s, _ := v.Str()
		if req.Validator != nil && !req.Validator(&s) {
			return d.Default, true
		}
		v = StringValue(s)
	}
	return v, v == d.Default
}

// GetValue looks up the descriptor's key and validates what it finds.
// Absent and cleared keys both yield the default. The second return value
// reports whether the result is the default.
func GetValue(t *Table, d Descriptor) (Value, bool) {
	head, ok := t.Find(d.Key)
	if !ok || head == nil {
		return d.Default, true
	}
	return ValidatedOrDefault(head.Value, d)
}

// GetBool is a typed wrapper over GetValue for bool descriptors.
func GetBool(t *Table, d Descriptor) (bool, bool) {
	mustExpect(d, ValueBool)
	v, isDefault := GetValue(t, d)
	b, _ := v.Bool()
	return b, isDefault
}

// GetInt is a typed wrapper over GetValue for integer descriptors.
func GetInt(t *Table, d Descriptor) (int64, bool) {
	mustExpect(d, ValueInt)
	v, isDefault := GetValue(t, d)
	n, _ := v.Int()
	return n, isDefault
}

// GetString is a typed wrapper over GetValue for string descriptors.
func GetString(t *Table, d Descriptor) (string, bool) {
	mustExpect(d, ValueString)
	v, isDefault := GetValue(t, d)
	s, _ := v.Str()
	return s, isDefault
}

// mustExpect guards the typed wrappers against descriptor misuse. This is
// a programmer error, not a runtime condition.
func mustExpect(d Descriptor, t ValueType) {
	if d.Requirements.expectedType() != t {
		panic(fmt.Sprintf("descriptor %q expects %s values, not %s",
			d.Key, d.Requirements.expectedType(), t))
	}
}

// Match is used by change listeners to extract the value relevant to a
// descriptor from a notification. It returns (zero, false) when the key is
// not the descriptor's key. A nil head means the key was removed or
// cleared, which yields the default.
func Match(k Key, head *ValueNode, d Descriptor) (Value, bool) {
	if k != d.Key {
		return Value{}, false
	}
	if head == nil {
		return d.Default, true
	}
	v, _ := ValidatedOrDefault(head.Value, d)
	return v, true
}

// validFolderPath accepts absolute, well-formed paths that can survive the
// on-disk format (no newlines, no '=').
func validFolderPath(s *string) bool {
	return *s != "" &&
		utf8.ValidString(*s) &&
		filepath.IsAbs(*s) &&
		validValueText(*s)
}

// validValueText reports whether s is representable as a value in the
// on-disk format, which forbids newlines and '='.
func validValueText(s string) bool {
	return !strings.ContainsAny(s, "\n=")
}

// clampInt builds an int validator that clamps the value into [lo, hi].
func clampInt(lo, hi int64) func(*int64) bool {
	return func(n *int64) bool {
		if *n < lo {
			*n = lo
		}
		if *n > hi {
			*n = hi
		}
		return true
	}
}

// Built-in descriptors for the well-known keys.
var (
	WindowWidthDescriptor = Descriptor{
		Key:          WindowWidthKey,
		Requirements: IntRequirements{Validator: clampInt(192, 3840)},
		Default:      IntValue(910),
		Name:         "Window width",
		Description:  "Width of the plugin window in pixels.",
	}

	GUIKeyboardOctaveDescriptor = Descriptor{
		Key:          GUIKeyboardOctaveKey,
		Requirements: IntRequirements{Validator: clampInt(0, 9)},
		Default:      IntValue(3),
		Name:         "Keyboard octave",
		Description:  "Octave shown at the left edge of the on-screen keyboard.",
	}

	PresetsRandomModeDescriptor = Descriptor{
		Key:          PresetsRandomModeKey,
		Requirements: IntRequirements{Validator: clampInt(0, 3)},
		Default:      IntValue(0),
		Name:         "Preset random mode",
		Description:  "How the random-preset button picks its next preset.",
	}

	ShowKeyboardDescriptor = Descriptor{
		Key:          ShowKeyboardKey,
		Requirements: BoolRequirements{},
		Default:      BoolValue(true),
		Name:         "Show keyboard",
		Description:  "Show the on-screen keyboard at the bottom of the window.",
	}

	ShowTooltipsDescriptor = Descriptor{
		Key:          ShowTooltipsKey,
		Requirements: BoolRequirements{},
		Default:      BoolValue(true),
		Name:         "Show tooltips",
		Description:  "Show help tooltips when hovering controls.",
	}

	HighContrastGUIDescriptor = Descriptor{
		Key:          HighContrastGUIKey,
		Requirements: BoolRequirements{},
		Default:      BoolValue(false),
		Name:         "High contrast",
		Description:  "Use a higher-contrast color scheme.",
	}

	ExtraPresetsFolderDescriptor = Descriptor{
		Key:          ExtraPresetsFolderKey,
		Requirements: StringRequirements{Validator: validFolderPath},
		Default:      StringValue(""),
		Name:         "Extra presets folder",
		Description:  "Additional folder scanned for presets.",
	}

	ExtraLibrariesFolderDescriptor = Descriptor{
		Key:          ExtraLibrariesFolderKey,
		Requirements: StringRequirements{Validator: validFolderPath},
		Default:      StringValue(""),
		Name:         "Extra libraries folder",
		Description:  "Additional folder scanned for sample libraries.",
	}
)
