package key

import (
	"fmt"
	"strings"
)

// Modifier is a set of keyboard accelerator modifier flags.
// The bit layout matches the AppKit NSEventModifierFlags values so a Modifier
// can be handed to the native toolkit without translation.
type Modifier uint64

const (
	// None is the absence of any modifier. Items created with None keep the
	// toolkit's default key equivalent mask.
	None Modifier = 0

	CapsLock   Modifier = 1 << 16
	Shift      Modifier = 1 << 17
	Control    Modifier = 1 << 18
	Option     Modifier = 1 << 19
	Command    Modifier = 1 << 20
	NumericPad Modifier = 1 << 21
	Help       Modifier = 1 << 22
	Function   Modifier = 1 << 23

	// DeviceIndependentFlagsMask selects only the device independent flag bits.
	DeviceIndependentFlagsMask Modifier = 0xffff0000
)

// named lists the flags in display order.
var named = []struct {
	flag Modifier
	name string
}{
	{Control, "Control"},
	{Option, "Option"},
	{Shift, "Shift"},
	{Command, "Command"},
	{CapsLock, "CapsLock"},
	{NumericPad, "NumericPad"},
	{Help, "Help"},
	{Function, "Function"},
}

var aliases = map[string]Modifier{
	"none":       None,
	"capslock":   CapsLock,
	"caps":       CapsLock,
	"shift":      Shift,
	"control":    Control,
	"ctrl":       Control,
	"option":     Option,
	"opt":        Option,
	"alt":        Option,
	"command":    Command,
	"cmd":        Command,
	"super":      Command,
	"numericpad": NumericPad,
	"numpad":     NumericPad,
	"help":       Help,
	"function":   Function,
	"fn":         Function,
}

// Has reports whether every bit of flag is set in m.
func (m Modifier) Has(flag Modifier) bool {
	return flag != None && m&flag == flag
}

// IsNone reports whether no modifier is set.
func (m Modifier) IsNone() bool {
	return m == None
}

// Mask returns the device independent bits of m, which is the value applied
// as a native key equivalent modifier mask.
func (m Modifier) Mask() uint64 {
	return uint64(m & DeviceIndependentFlagsMask)
}

// String returns the flag names joined with "+" in menu display order,
// so Command|Shift renders as "Shift+Command".
func (m Modifier) String() string {
	if m == None {
		return "None"
	}

	var parts []string
	rest := m
	for _, n := range named {
		if m.Has(n.flag) {
			parts = append(parts, n.name)
			rest &^= n.flag
		}
	}

	if rest != 0 {
		parts = append(parts, fmt.Sprintf("0x%x", uint64(rest)))
	}

	return strings.Join(parts, "+")
}

// Parse converts a human readable accelerator modifier list such as
// "cmd+shift" or "Control Option" into a Modifier.
func Parse(s string) (Modifier, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '+' || r == '-' || r == ' ' || r == '|' || r == ','
	})

	m := None
	for _, f := range fields {
		flag, ok := aliases[strings.ToLower(f)]
		if !ok {
			return None, fmt.Errorf("unknown modifier %q", f)
		}
		m |= flag
	}

	return m, nil
}

// MarshalText implements encoding.TextMarshaler.
func (m Modifier) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Modifier) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
