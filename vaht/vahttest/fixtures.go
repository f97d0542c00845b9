package vahttest

// Archive is the content of one fake archive file.
type Archive struct {
	Resources []*Resource
}

// Resource is one resource. Exactly the field matching Type is used when
// the resource is opened as a typed variant; Data backs raw reads and movies.
type Resource struct {
	Type string
	ID   uint16
	Name string
	Data []byte

	Bitmap   *Bitmap
	Wave     *Wave
	Names    []string
	Card     *Card
	Pictures []Picture
	Buttons  []Button
	Hotspots []Hotspot
	Codes    []uint32
	Sounds   []Sound

	// Script is returned by vaht_script_read on this resource.
	Script Script
}

type Bitmap struct {
	Width, Height         uint16
	Pixels                []byte
	Compressed, Truecolor bool
}

type Wave struct {
	SampleRate  uint16
	SampleCount uint32
	SampleSize  uint8
	Channels    uint8
	Encoding    int32
	Samples     []byte
}

type Card struct {
	NameRecord int16
	Name       string
	ZipMode    bool
	Script     Script
	Pictures   []Picture
}

// Picture is a PLST record. Rect is left, right, top, bottom. A negative
// BitmapID is returned as-is, modelling the library's error sentinel.
type Picture struct {
	BitmapID int32
	Rect     [4]uint16
	Bitmap   *Bitmap
}

type Button struct {
	Enabled   bool
	HotspotID int32
}

type Hotspot struct {
	BlstID     uint16
	NameRecord int16
	Name       string
	Rect       [4]int16
	Cursor     uint16
	ZipMode    bool
	Script     Script
}

type Sound struct {
	IDs          []uint16
	Volumes      []uint16
	Balances     []uint16
	Fade         uint16
	Loop         bool
	GlobalVolume uint16
}

// Script maps event numbers to command lists.
type Script map[int][]Command

// Command is a leaf (Code, Args) or a branch (Variable, Values, Bodies).
// Values and Bodies are paired by position; a longer Bodies is allowed to
// model a producer that violates the pairing.
type Command struct {
	Code     uint16
	Args     []uint16
	Branch   bool
	Variable uint16
	Values   []uint16
	Bodies   [][]Command
}

// Leaf builds a leaf command.
func Leaf(code uint16, args ...uint16) Command {
	return Command{Code: code, Args: args}
}

// Branch builds a branch command from parallel values and bodies.
func Branch(variable uint16, values []uint16, bodies ...[]Command) Command {
	return Command{Branch: true, Variable: variable, Values: values, Bodies: bodies}
}
