package prefs

import (
	"context"
	"testing"
)

// clampDescriptor clamps ints into [0, 10] with default 5.
var clampDescriptor = Descriptor{
	Key:          GlobalString("clamped"),
	Requirements: IntRequirements{Validator: clampInt(0, 10)},
	Default:      IntValue(5),
	Name:         "Clamped",
}

// rejectDescriptor rejects ints outside [0, 10] with default 5.
var rejectDescriptor = Descriptor{
	Key: GlobalString("rejected"),
	Requirements: IntRequirements{Validator: func(n *int64) bool {
		return *n >= 0 && *n <= 10
	}},
	Default: IntValue(5),
	Name:    "Rejected",
}

func TestValidatedOrDefault_ClampingValidator(t *testing.T) {
	v, isDefault := ValidatedOrDefault(IntValue(100), clampDescriptor)
	if n, _ := v.Int(); n != 10 || isDefault {
		t.Errorf("ValidatedOrDefault(100) = (%d, %v), want (10, false)", n, isDefault)
	}

	v, isDefault = ValidatedOrDefault(IntValue(-3), clampDescriptor)
	if n, _ := v.Int(); n != 0 || isDefault {
		t.Errorf("ValidatedOrDefault(-3) = (%d, %v), want (0, false)", n, isDefault)
	}

	// Clamping onto the default reports the default.
	v, isDefault = ValidatedOrDefault(IntValue(5), clampDescriptor)
	if n, _ := v.Int(); n != 5 || !isDefault {
		t.Errorf("ValidatedOrDefault(5) = (%d, %v), want (5, true)", n, isDefault)
	}
}

func TestValidatedOrDefault_TypeMismatchForcesDefault(t *testing.T) {
	v, isDefault := ValidatedOrDefault(StringValue("str"), clampDescriptor)
	if n, _ := v.Int(); n != 5 || !isDefault {
		t.Errorf("ValidatedOrDefault(\"str\") = (%d, %v), want (5, true)", n, isDefault)
	}
}

func TestValidatedOrDefault_RejectingValidator(t *testing.T) {
	v, isDefault := ValidatedOrDefault(IntValue(100), rejectDescriptor)
	if n, _ := v.Int(); n != 5 || !isDefault {
		t.Errorf("ValidatedOrDefault(100) = (%d, %v), want (5, true)", n, isDefault)
	}

	v, isDefault = ValidatedOrDefault(IntValue(7), rejectDescriptor)
	if n, _ := v.Int(); n != 7 || isDefault {
		t.Errorf("ValidatedOrDefault(7) = (%d, %v), want (7, false)", n, isDefault)
	}
}

func TestGetValue_AbsentAndClearedYieldDefault(t *testing.T) {
	table := NewTable()

	v, isDefault := GetValue(table, clampDescriptor)
	if n, _ := v.Int(); n != 5 || !isDefault {
		t.Errorf("absent key: GetValue = (%d, %v), want (5, true)", n, isDefault)
	}

	table.insert(clampDescriptor.Key, nil)
	v, isDefault = GetValue(table, clampDescriptor)
	if n, _ := v.Int(); n != 5 || !isDefault {
		t.Errorf("cleared key: GetValue = (%d, %v), want (5, true)", n, isDefault)
	}
}

func TestGetValue_ValidatesStoredValue(t *testing.T) {
	table := ParsePreferences(context.Background(), []byte("clamped = 100\n"))
	n, isDefault := GetInt(table, clampDescriptor)
	if n != 10 || isDefault {
		t.Errorf("GetInt = (%d, %v), want (10, false)", n, isDefault)
	}
}

func TestTypedGetters(t *testing.T) {
	table := ParsePreferences(context.Background(),
		[]byte("show_keyboard = false\nextra_presets_folder = /presets\n"))

	if b, isDefault := GetBool(table, ShowKeyboardDescriptor); b || isDefault {
		t.Errorf("GetBool = (%v, %v), want (false, false)", b, isDefault)
	}
	if s, isDefault := GetString(table, ExtraPresetsFolderDescriptor); s != "/presets" || isDefault {
		t.Errorf("GetString = (%q, %v), want (/presets, false)", s, isDefault)
	}
	if n, isDefault := GetInt(table, WindowWidthDescriptor); n != 910 || !isDefault {
		t.Errorf("GetInt on absent key = (%d, %v), want (910, true)", n, isDefault)
	}
}

func TestTypedGetters_PanicOnDescriptorMisuse(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("GetBool on an int descriptor should panic")
		}
	}()
	GetBool(NewTable(), clampDescriptor)
}

func TestMatch(t *testing.T) {
	head := &ValueNode{Value: IntValue(100)}

	if _, ok := Match(GlobalString("other"), head, clampDescriptor); ok {
		t.Error("Match on a different key should report no match")
	}

	v, ok := Match(clampDescriptor.Key, head, clampDescriptor)
	if !ok {
		t.Fatal("Match on the descriptor's key should succeed")
	}
	if n, _ := v.Int(); n != 10 {
		t.Errorf("Match should validate the head value, got %d want 10", n)
	}

	v, ok = Match(clampDescriptor.Key, nil, clampDescriptor)
	if !ok {
		t.Fatal("Match with a nil head should succeed with the default")
	}
	if n, _ := v.Int(); n != 5 {
		t.Errorf("Match(nil head) = %d, want default 5", n)
	}
}

func TestStringRequirements_PathValidator(t *testing.T) {
	cases := []struct {
		path string
		ok   bool
	}{
		{"/abs/path", true},
		{"relative/path", false},
		{"", false},
		{"/has\nnewline", false},
		{"/has=equals", false},
	}
	for _, tc := range cases {
		s := tc.path
		if got := validFolderPath(&s); got != tc.ok {
			t.Errorf("validFolderPath(%q) = %v, want %v", tc.path, got, tc.ok)
		}
	}
}
