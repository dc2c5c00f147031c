package text_typer

import "github.com/micmonay/keybd_event"

// keystroke is one synthetic key event on a US layout.
type keystroke struct {
	code  int
	shift bool
}

var asciiKeys = map[rune]keystroke{
	'a': {code: keybd_event.VK_A},
	'b': {code: keybd_event.VK_B},
	'c': {code: keybd_event.VK_C},
	'd': {code: keybd_event.VK_D},
	'e': {code: keybd_event.VK_E},
	'f': {code: keybd_event.VK_F},
	'g': {code: keybd_event.VK_G},
	'h': {code: keybd_event.VK_H},
	'i': {code: keybd_event.VK_I},
	'j': {code: keybd_event.VK_J},
	'k': {code: keybd_event.VK_K},
	'l': {code: keybd_event.VK_L},
	'm': {code: keybd_event.VK_M},
	'n': {code: keybd_event.VK_N},
	'o': {code: keybd_event.VK_O},
	'p': {code: keybd_event.VK_P},
	'q': {code: keybd_event.VK_Q},
	'r': {code: keybd_event.VK_R},
	's': {code: keybd_event.VK_S},
	't': {code: keybd_event.VK_T},
	'u': {code: keybd_event.VK_U},
	'v': {code: keybd_event.VK_V},
	'w': {code: keybd_event.VK_W},
	'x': {code: keybd_event.VK_X},
	'y': {code: keybd_event.VK_Y},
	'z': {code: keybd_event.VK_Z},

	'0': {code: keybd_event.VK_0},
	'1': {code: keybd_event.VK_1},
	'2': {code: keybd_event.VK_2},
	'3': {code: keybd_event.VK_3},
	'4': {code: keybd_event.VK_4},
	'5': {code: keybd_event.VK_5},
	'6': {code: keybd_event.VK_6},
	'7': {code: keybd_event.VK_7},
	'8': {code: keybd_event.VK_8},
	'9': {code: keybd_event.VK_9},

	' ':  {code: keybd_event.VK_SPACE},
	'\n': {code: keybd_event.VK_ENTER},
	'\t': {code: keybd_event.VK_TAB},

	'!': {code: keybd_event.VK_1, shift: true},
	'@': {code: keybd_event.VK_2, shift: true},
	'#': {code: keybd_event.VK_3, shift: true},
	'$': {code: keybd_event.VK_4, shift: true},
	'%': {code: keybd_event.VK_5, shift: true},
	'^': {code: keybd_event.VK_6, shift: true},
	'&': {code: keybd_event.VK_7, shift: true},
	'*': {code: keybd_event.VK_8, shift: true},
	'(': {code: keybd_event.VK_9, shift: true},
	')': {code: keybd_event.VK_0, shift: true},

	'-':  {code: keybd_event.VK_SP1},
	'_':  {code: keybd_event.VK_SP1, shift: true},
	'=':  {code: keybd_event.VK_SP2},
	'+':  {code: keybd_event.VK_SP2, shift: true},
	'[':  {code: keybd_event.VK_SP3},
	'{':  {code: keybd_event.VK_SP3, shift: true},
	']':  {code: keybd_event.VK_SP4},
	'}':  {code: keybd_event.VK_SP4, shift: true},
	';':  {code: keybd_event.VK_SP5},
	':':  {code: keybd_event.VK_SP5, shift: true},
	'\'': {code: keybd_event.VK_SP6},
	'"':  {code: keybd_event.VK_SP6, shift: true},
	'`':  {code: keybd_event.VK_SP7},
	'~':  {code: keybd_event.VK_SP7, shift: true},
	'\\': {code: keybd_event.VK_SP8},
	'|':  {code: keybd_event.VK_SP8, shift: true},
	',':  {code: keybd_event.VK_SP9},
	'<':  {code: keybd_event.VK_SP9, shift: true},
	'.':  {code: keybd_event.VK_SP10},
	'>':  {code: keybd_event.VK_SP10, shift: true},
	'/':  {code: keybd_event.VK_SP11},
	'?':  {code: keybd_event.VK_SP11, shift: true},
}

// keystrokeFor maps a rune to its key event. Uppercase letters reuse the
// lowercase key with shift held. The bool reports whether the rune can be
// typed at all in "keys" mode.
func keystrokeFor(r rune) (keystroke, bool) {
	if r >= 'A' && r <= 'Z' {
		ks, ok := asciiKeys[r+('a'-'A')]
		if !ok {
			return keystroke{}, false
		}

		ks.shift = true

		return ks, true
	}

	ks, ok := asciiKeys[r]

	return ks, ok
}
