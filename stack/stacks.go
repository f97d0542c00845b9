package stack

import (
	"maps"
	"slices"
)

// riven is the archive layout of the Riven data files, per stack, in lookup
// order. Earlier files shadow later ones.
var riven = map[string][]string{
	"aspit": {"a_Data.MHK", "a_Sounds.MHK"},
	"bspit": {"b_Data.MHK", "b2_data.MHK", "b_Sounds.MHK"},
	"gspit": {"g_Data.MHK", "g_Sounds.MHK"},
	"jspit": {"j_Data1.MHK", "j_Data2.MHK", "j_Sounds.MHK"},
	"ospit": {"o_Data.MHK", "o_Sounds.MHK"},
	"pspit": {"p_Data.MHK", "p_Sounds.MHK"},
	"rspit": {"r_Data.MHK", "r_Sounds.MHK"},
	"tspit": {"t_Data.MHK", "t_Sounds.MHK"},
}

// Default returns a copy of the built-in Riven stack map.
func Default() map[string][]string {
	return clone(riven)
}

func clone(m map[string][]string) map[string][]string {
	out := make(map[string][]string, len(m))
	for k, v := range m {
		out[k] = slices.Clone(v)
	}
	return out
}

func sortedKeys(m map[string][]string) []string {
	return slices.Sorted(maps.Keys(m))
}
