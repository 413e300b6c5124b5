package arglineio

import "github.com/fatih/color"

// Theme maps log levels to colors.
type Theme struct {
	Debug   []color.Attribute
	Info    []color.Attribute
	Success []color.Attribute
	Warning []color.Attribute
	Error   []color.Attribute
}

// DefaultTheme uses the basic 16 colors, readable on dark and light
// backgrounds.
func DefaultTheme() Theme {
	return Theme{
		Debug:   []color.Attribute{color.FgMagenta},
		Info:    []color.Attribute{color.FgBlue},
		Success: []color.Attribute{color.FgGreen},
		Warning: []color.Attribute{color.FgYellow},
		Error:   []color.Attribute{color.FgRed, color.Bold},
	}
}

func (t Theme) attrs(level LogLevel) []color.Attribute {
	switch level {
	case LevelDebug:
		return t.Debug
	case LevelInfo:
		return t.Info
	case LevelSuccess:
		return t.Success
	case LevelWarning:
		return t.Warning
	case LevelError:
		return t.Error
	default:
		return nil
	}
}
