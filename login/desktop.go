package login

import "strings"

// renderDesktop builds an XDG autostart entry for args.
func renderDesktop(args []string) []byte {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = quoteExec(a)
	}
	return []byte(strings.Join([]string{
		"[Desktop Entry]",
		"Type=Application",
		"Name=gridkey",
		"Comment=Global grid hotkeys",
		"Exec=" + strings.Join(quoted, " "),
		"X-GNOME-Autostart-enabled=true",
		"NoDisplay=true",
		"",
	}, "\n"))
}

// quoteExec quotes one Exec argument following the desktop entry rules:
// reserved characters need double quotes, and inside them ", `, $ and \ are
// backslash-escaped.
func quoteExec(arg string) string {
	if arg != "" && !strings.ContainsAny(arg, " \t\n\"'\\><~|&;$*?#()`=%") {
		return arg
	}
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range arg {
		switch r {
		case '"', '`', '$', '\\':
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	b.WriteByte('"')
	return b.String()
}
