// Package script turns a card or hotspot script into a plain tree.
//
// A native script holds one command list per event. Structure walks the
// events in enumeration order, skips empty lists, and converts each command
// into a Node: leaves keep their opcode and arguments, branches become a
// map from candidate value to the structured body run for that value.
//
//	tree, err := script.Structure[*vaht.Command](s)
//	if err != nil {
//		return err
//	}
//	data := tree.Data() // map[string]any keyed by event name
//
// The walk is generic over the command type, so the same code serves the
// libvaht wrappers and in-memory test doubles. The resulting Tree owns no
// native memory and stays valid after the script is closed.
package script
