package script

import "strconv"

// Opcode is a leaf command's instruction number.
type Opcode uint16

const (
	OpDrawBitmap          Opcode = 1
	OpGotoCard            Opcode = 2
	OpInlineSoundList     Opcode = 3
	OpPlayWave            Opcode = 4
	OpSetVariable         Opcode = 7
	OpConditional         Opcode = 8
	OpEnableHotspot       Opcode = 9
	OpDisableHotspot      Opcode = 10
	OpSetCursor           Opcode = 13
	OpPause               Opcode = 14
	OpCall                Opcode = 17
	OpTransition          Opcode = 18
	OpReload              Opcode = 19
	OpDisableUpdate       Opcode = 20
	OpEnableUpdate        Opcode = 21
	OpIncrement           Opcode = 24
	OpGotoStack           Opcode = 27
	OpPlayForegroundMovie Opcode = 32
	OpPlayBackgroundMovie Opcode = 33
	OpActivatePictures    Opcode = 39
	OpActivateSounds      Opcode = 40
	OpActivateButtons     Opcode = 43
	OpActivateFlst        Opcode = 44
	OpZip                 Opcode = 45
	OpActivateMlst        Opcode = 46
)

var opcodeNames = map[Opcode]string{
	OpDrawBitmap:          "draw-bmp",
	OpGotoCard:            "goto-card",
	OpInlineSoundList:     "inline-slst",
	OpPlayWave:            "play-wav",
	OpSetVariable:         "set-var",
	OpConditional:         "conditional",
	OpEnableHotspot:       "enable-hotspot",
	OpDisableHotspot:      "disable-hotspot",
	OpSetCursor:           "set-cursor",
	OpPause:               "pause",
	OpCall:                "call",
	OpTransition:          "transition",
	OpReload:              "reload",
	OpDisableUpdate:       "disable-update",
	OpEnableUpdate:        "enable-update",
	OpIncrement:           "increment",
	OpGotoStack:           "goto-stack",
	OpPlayForegroundMovie: "play-foreground-movie",
	OpPlayBackgroundMovie: "play-background-movie",
	OpActivatePictures:    "activate-plst",
	OpActivateSounds:      "activate-slst",
	OpActivateButtons:     "activate-blst",
	OpActivateFlst:        "activate-flst",
	OpZip:                 "zip",
	OpActivateMlst:        "activate-mlst",
}

// Name returns the symbolic opcode name, or "" if op is unmapped.
func (op Opcode) Name() string { return opcodeNames[op] }

// String returns Name, falling back to the decimal opcode.
func (op Opcode) String() string {
	if n := op.Name(); n != "" {
		return n
	}
	return strconv.Itoa(int(op))
}

// Opcodes returns every mapped opcode in ascending order.
func Opcodes() []Opcode {
	out := make([]Opcode, 0, len(opcodeNames))
	for op := Opcode(0); len(out) < len(opcodeNames); op++ {
		if _, ok := opcodeNames[op]; ok {
			out = append(out, op)
		}
	}
	return out
}
