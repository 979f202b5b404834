package ui

// Color accessors read the active theme.

func ColorReset() string     { return GetCurrentTheme().Reset }
func ColorBold() string      { return GetCurrentTheme().Bold }
func ColorPrimary() string   { return GetCurrentTheme().Primary }
func ColorSecondary() string { return GetCurrentTheme().Secondary }
func ColorGreen() string     { return GetCurrentTheme().Success }
func ColorYellow() string    { return GetCurrentTheme().Warning }
func ColorRed() string       { return GetCurrentTheme().Error }
func ColorMagenta() string   { return GetCurrentTheme().Info }

// Colorize wraps s in code and a reset. With colors disabled it returns s.
func Colorize(code, s string) string {
	if code == "" {
		return s
	}
	return code + s + ColorReset()
}
