package prefs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/capitan"
)

// validate is the shared validator instance.
var validate = validator.New()

// legacyDocument is the single JSON object written by the previous product
// generation. Only the fields projected onto current keys are decoded;
// unknown fields are ignored.
type legacyDocument struct {
	PresetsFolder string `json:"presets_folder" validate:"omitempty,max=4096"`
	Libraries     []struct {
		Path string `json:"path" validate:"omitempty,max=4096"`
	} `json:"libraries" validate:"omitempty,dive"`
	DefaultCCs  map[string][]string `json:"default_ccs"`
	GUISettings struct {
		GUISize          *uint  `json:"GUISize"`
		KeyboardOctave   *int64 `json:"KeyboardOctave"`
		PresetRandomMode *int64 `json:"PresetRandomMode"`
		ShowKeyboard     *bool  `json:"ShowKeyboard"`
		ShowTooltips     *bool  `json:"ShowTooltips"`
		HighContrast     *bool  `json:"HighContrast"`
	} `json:"gui_settings"`
}

// windowWidths maps the legacy GUISize index onto a window width in pixels.
var windowWidths = [7]int64{580, 690, 800, 910, 1020, 1130, 1240}

// legacyParamIDs maps legacy parameter identifiers onto current parameter
// IDs. Legacy IDs with no current equivalent are absent and dropped on
// import.
var legacyParamIDs = map[string]int64{
	"MastVol":   0,
	"MastVel":   1,
	"MastDyn":   2,
	"MastSv":    3,
	"MastTune":  4,
	"L0Vol":     10,
	"L0Pan":     11,
	"L0Pitch":   12,
	"L1Vol":     20,
	"L1Pan":     21,
	"L1Pitch":   22,
	"L2Vol":     30,
	"L2Pan":     31,
	"L2Pitch":   32,
	"FxRvMix":   40,
	"FxRvSize":  41,
	"FxDlMix":   42,
	"FxDlTime":  43,
	"FxDistAmt": 44,
	"FxBcDepth": 45,
}

// failedFields collects the namespaces of fields that failed validation.
// A nil map means every field passed.
func failedFields(err error) map[string]bool {
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil
	}
	failed := make(map[string]bool, len(verrs))
	for _, fe := range verrs {
		failed[fe.Namespace()] = true
	}
	return failed
}

// ImportLegacyPreferences projects a legacy JSON preferences file onto a
// fresh Table of current keys. A JSON parse failure yields an empty table,
// never an error. Validation is per field: an entry that fails its
// constraint is skipped, and everything else still projects.
func ImportLegacyPreferences(ctx context.Context, data []byte) *Table {
	table := NewTable()

	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return table
	}
	failed := failedFields(validate.Struct(doc))

	if !failed["legacyDocument.PresetsFolder"] &&
		doc.PresetsFolder != "" && filepath.IsAbs(doc.PresetsFolder) && utf8.ValidString(doc.PresetsFolder) {
		table.insert(ExtraPresetsFolderKey, &ValueNode{Value: StringValue(doc.PresetsFolder)})
	}

	for i, lib := range doc.Libraries {
		if failed[fmt.Sprintf("legacyDocument.Libraries[%d].Path", i)] {
			continue
		}
		if lib.Path == "" || !filepath.IsAbs(lib.Path) {
			continue
		}
		parent := StringValue(filepath.Dir(lib.Path))
		head, _ := table.Find(ExtraLibrariesFolderKey)
		if listContains(head, parent) {
			continue
		}
		table.insert(ExtraLibrariesFolderKey, &ValueNode{Value: parent, next: head})
	}

	for cc, ids := range doc.DefaultCCs {
		n, err := strconv.ParseInt(cc, 10, 64)
		if err != nil || n < 1 || n > 127 {
			continue
		}
		key := SectionedInt(CCToParamIDSection, n)
		for _, id := range ids {
			paramID, known := legacyParamIDs[id]
			if !known {
				continue
			}
			head, _ := table.Find(key)
			if listContains(head, IntValue(paramID)) {
				continue
			}
			table.insert(key, &ValueNode{Value: IntValue(paramID), next: head})
		}
	}

	gui := doc.GUISettings
	if gui.GUISize != nil {
		idx := min(int(*gui.GUISize), len(windowWidths)-1)
		table.insert(WindowWidthKey, &ValueNode{Value: IntValue(windowWidths[idx])})
	}
	if gui.KeyboardOctave != nil {
		table.insert(GUIKeyboardOctaveKey, &ValueNode{Value: IntValue(*gui.KeyboardOctave)})
	}
	if gui.PresetRandomMode != nil {
		table.insert(PresetsRandomModeKey, &ValueNode{Value: IntValue(*gui.PresetRandomMode)})
	}
	if gui.ShowKeyboard != nil {
		table.insert(ShowKeyboardKey, &ValueNode{Value: BoolValue(*gui.ShowKeyboard)})
	}
	if gui.ShowTooltips != nil {
		table.insert(ShowTooltipsKey, &ValueNode{Value: BoolValue(*gui.ShowTooltips)})
	}
	if gui.HighContrast != nil {
		table.insert(HighContrastGUIKey, &ValueNode{Value: BoolValue(*gui.HighContrast)})
	}

	capitan.Emit(ctx, LegacyImported,
		KeyCount.Field(table.Size()),
	)

	return table
}
