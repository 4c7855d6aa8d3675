package models

import (
	"regexp"
)

type SettingName string

const (
	SettingTheme         SettingName = "theme"
	SettingStatusConfigs SettingName = "statusConfigs"
)

func (n SettingName) Valid() bool {
	switch n {
	case SettingTheme, SettingStatusConfigs:
		return true
	}
	return false
}

// Setting is the stored envelope of a single preference. Value holds the
// JSON encoding of the preference.
type Setting struct {
	ID    string `gorm:"primarykey;type:varchar(64)" json:"id"`
	Value string `gorm:"type:text;not null" json:"value"`
}

type Theme string

const (
	ThemeLight        Theme = "light"
	ThemeDark         Theme = "dark"
	ThemeHighContrast Theme = "high-contrast"
)

const DefaultTheme = ThemeLight

func (t Theme) Valid() bool {
	switch t {
	case ThemeLight, ThemeDark, ThemeHighContrast:
		return true
	}
	return false
}

type StatusIcon string

const (
	IconCircle      StatusIcon = "Circle"
	IconInProgress  StatusIcon = "InProgress"
	IconCheckCircle StatusIcon = "CheckCircle"
	IconSquare      StatusIcon = "Square"
	IconPlay        StatusIcon = "Play"
)

func (i StatusIcon) Valid() bool {
	switch i {
	case IconCircle, IconInProgress, IconCheckCircle, IconSquare, IconPlay:
		return true
	}
	return false
}

var hexColor = regexp.MustCompile(`^#(?:[0-9A-Fa-f]{3}|[0-9A-Fa-f]{6})$`)

type StatusConfig struct {
	Color string     `json:"color"`
	Icon  StatusIcon `json:"icon"`
}

func (c StatusConfig) Valid() bool {
	return hexColor.MatchString(c.Color) && c.Icon.Valid()
}

// StatusConfigs maps every board column to its display configuration.
type StatusConfigs map[TaskStatus]StatusConfig

// DefaultStatusConfigs returns a fresh copy of the built-in configuration.
func DefaultStatusConfigs() StatusConfigs {
	return StatusConfigs{
		TaskStatusToDo:       {Color: "#9CA3AF", Icon: IconCircle},
		TaskStatusInProgress: {Color: "#3B82F6", Icon: IconInProgress},
		TaskStatusDone:       {Color: "#22C55E", Icon: IconCheckCircle},
	}
}

// Valid reports whether c configures exactly the known statuses with
// valid colors and icons.
func (c StatusConfigs) Valid() bool {
	if len(c) != len(TaskStatuses) {
		return false
	}
	for _, status := range TaskStatuses {
		cfg, ok := c[status]
		if !ok || !cfg.Valid() {
			return false
		}
	}
	return true
}

func (c StatusConfigs) Clone() StatusConfigs {
	out := make(StatusConfigs, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

func (s Setting) RecordID() string { return s.ID }
