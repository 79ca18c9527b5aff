package dispatch

import "strconv"

// NameSeparator joins the parts of variable and constraint names.
const NameSeparator = "_"

// ValidName reports whether a technology, node, link or demand option name
// can be embedded in variable names: an ASCII letter followed by letters,
// digits or dots. The separator would make names ambiguous and most other
// symbols are operators in LP files.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	for i, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && (r >= '0' && r <= '9' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// Variable names are part of the contract with the result extractor and the
// LP file export; they only depend on scenario names and step indices.

// CapacityVar names the installed capacity of tech at node.
func CapacityVar(tech, node string) string { return "cap" + NameSeparator + tech + NameSeparator + node }

// GenerationVar names the output of a generator at a step.
func GenerationVar(tech, node string, h int) string { return stepName("gen", tech, node, h) }

// ChargeVar names the charging power of a storage at a step.
func ChargeVar(tech, node string, h int) string { return stepName("charge", tech, node, h) }

// DischargeVar names the discharging power of a storage at a step.
func DischargeVar(tech, node string, h int) string { return stepName("discharge", tech, node, h) }

// SOCVar names the state of charge of a storage at the end of a step.
func SOCVar(tech, node string, h int) string { return stepName("soc", tech, node, h) }

// LinkCapacityVar names the transfer capacity of a link.
func LinkCapacityVar(link string) string { return "txcap" + NameSeparator + link }

// FlowVar names the signed flow on a link at a step.
func FlowVar(link string, h int) string { return "flow" + NameSeparator + link + NameSeparator + strconv.Itoa(h) }

func stepName(prefix, tech, node string, h int) string {
	return prefix + NameSeparator + tech + NameSeparator + node + NameSeparator + strconv.Itoa(h)
}

// FlexStorageName names the storage resource of a benefit scenario in
// result rows, capacity bounds and disable lists.
const FlexStorageName = "storage"

// Names of the flexibility-benefit model variables.
const (
	StorageGWVar     = "flex_storage_gw"
	StorageEffectVar = "flex_storage_effect"
	DemandEffectVar  = "flex_demand_effect"
)

// DemandGWVar names the capacity of a demand-side option.
func DemandGWVar(option string) string { return "flex_dsm_" + option + "_gw" }
