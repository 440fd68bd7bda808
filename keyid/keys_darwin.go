package keyid

// macOS virtual key codes (Carbon kVK_* constants).
var keyCodes = map[string]uint16{
	"A": 0x00, "S": 0x01, "D": 0x02, "F": 0x03, "H": 0x04, "G": 0x05,
	"Z": 0x06, "X": 0x07, "C": 0x08, "V": 0x09, "B": 0x0B, "Q": 0x0C,
	"W": 0x0D, "E": 0x0E, "R": 0x0F, "Y": 0x10, "T": 0x11, "O": 0x1F,
	"U": 0x20, "I": 0x22, "P": 0x23, "L": 0x25, "J": 0x26, "K": 0x28,
	"N": 0x2D, "M": 0x2E,

	"1": 0x12, "2": 0x13, "3": 0x14, "4": 0x15, "6": 0x16, "5": 0x17,
	"9": 0x19, "7": 0x1A, "8": 0x1C, "0": 0x1D,

	"Equal": 0x18, "Minus": 0x1B, "RightBracket": 0x1E, "LeftBracket": 0x21,
	"Quote": 0x27, "Semicolon": 0x29, "Backslash": 0x2A, "Comma": 0x2B,
	"Slash": 0x2C, "Period": 0x2F, "Grave": 0x32,

	"Return": 0x24, "Tab": 0x30, "Space": 0x31, "Backspace": 0x33,
	"Escape": 0x35, "Home": 0x73, "PageUp": 0x74, "Delete": 0x75,
	"End": 0x77, "PageDown": 0x79,
	"Left": 0x7B, "Right": 0x7C, "Down": 0x7D, "Up": 0x7E,

	"F1": 0x7A, "F2": 0x78, "F3": 0x63, "F4": 0x76, "F5": 0x60, "F6": 0x61,
	"F7": 0x62, "F8": 0x64, "F9": 0x65, "F10": 0x6D, "F11": 0x67, "F12": 0x6F,
}
