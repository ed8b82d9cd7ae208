package models

// FieldPair binds the in-memory (local) name of a form field to its wire
// name in the server record. The two shapes are not identical: the server
// speaks snake_case ("door_status"), the editing model camelCase
// ("doorStatus"). Translation copies raw JSON values by name only, so a
// tri-state null never collapses into false.
type FieldPair struct {
	Local string
	Wire  string
}

// sectionFields declares the closed shape of every section the forms edit.
// A field absent from its section's list cannot be written by the update
// reducer and is not carried by translation.
var sectionFields = map[SectionKind][]FieldPair{
	SectionGenerator: {
		{Local: "batteryStatus", Wire: "battery_status"},
		{Local: "oilLevel", Wire: "oil_level"},
		{Local: "coolantLevel", Wire: "coolant_level"},
		{Local: "fuelLevelPercent", Wire: "fuel_level_percent"},
		{Local: "runtimeHours", Wire: "runtime_hours"},
		{Local: "currentPhaseA", Wire: "current_phase_a"},
		{Local: "currentPhaseB", Wire: "current_phase_b"},
		{Local: "currentPhaseC", Wire: "current_phase_c"},
		{Local: "voltagePhaseA", Wire: "voltage_phase_a"},
		{Local: "voltagePhaseB", Wire: "voltage_phase_b"},
		{Local: "voltagePhaseC", Wire: "voltage_phase_c"},
		{Local: "doorStatus", Wire: "door_status"},
		{Local: "notes", Wire: "notes"},
	},
	SectionGrid: {
		{Local: "gridAvailable", Wire: "grid_available"},
		{Local: "frequencyHz", Wire: "frequency_hz"},
		{Local: "voltagePhaseA", Wire: "voltage_phase_a"},
		{Local: "voltagePhaseB", Wire: "voltage_phase_b"},
		{Local: "voltagePhaseC", Wire: "voltage_phase_c"},
		{Local: "meterReading", Wire: "meter_reading"},
		{Local: "notes", Wire: "notes"},
	},
	SectionFuelTank: {
		{Local: "fuelLevelLiters", Wire: "fuel_level_liters"},
		{Local: "refuelLiters", Wire: "refuel_liters"},
		{Local: "leakDetected", Wire: "leak_detected"},
		{Local: "capLocked", Wire: "cap_locked"},
		{Local: "notes", Wire: "notes"},
	},
	SectionBattery: {
		{Local: "voltageDC", Wire: "voltage_dc"},
		{Local: "terminalCondition", Wire: "terminal_condition"},
		{Local: "electrolyteLevel", Wire: "electrolyte_level"},
		{Local: "notes", Wire: "notes"},
	},
	SectionJanitorial: {
		{Local: "siteClean", Wire: "site_clean"},
		{Local: "grassTrimmed", Wire: "grass_trimmed"},
		{Local: "notes", Wire: "notes"},
	},
	SectionSecurity: {
		{Local: "fenceIntact", Wire: "fence_intact"},
		{Local: "doorStatus", Wire: "door_status"},
		{Local: "lightsWorking", Wire: "lights_working"},
		{Local: "notes", Wire: "notes"},
	},
	SectionGeneral: {
		{Local: "visitPurpose", Wire: "visit_purpose"},
		{Local: "notes", Wire: "notes"},
	},
}

// requiredFields lists, per section, the local fields that must be answered
// before that section validates for final submission.
var requiredFields = map[SectionKind][]string{
	SectionGenerator: {
		"currentPhaseA", "currentPhaseB", "currentPhaseC",
		"voltagePhaseA", "voltagePhaseB", "voltagePhaseC",
		"runtimeHours", "batteryStatus",
	},
	SectionGrid:     {"gridAvailable", "meterReading"},
	SectionFuelTank: {"fuelLevelLiters", "leakDetected"},
	SectionBattery:  {"voltageDC"},
}

// SectionFieldPairs returns the declared field pairs of a section, or nil
// for sections without a declared shape.
func SectionFieldPairs(kind SectionKind) []FieldPair {
	return sectionFields[kind]
}

// RequiredFields returns the local names a section must answer before it
// validates. Sections without entries have no required fields.
func RequiredFields(kind SectionKind) []string {
	return requiredFields[kind]
}

// HasField reports whether the section declares the given local field.
func HasField(kind SectionKind, local string) bool {
	for _, fp := range sectionFields[kind] {
		if fp.Local == local {
			return true
		}
	}
	return false
}
