package viewport

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/Carmen-Shannon/oxy-viewport/common"
	"github.com/Carmen-Shannon/oxy-viewport/engine/display"
	"github.com/Carmen-Shannon/oxy-viewport/engine/lighting"
	"github.com/Carmen-Shannon/oxy-viewport/engine/renderer"
	"github.com/pelletier/go-toml/v2"
)

// ViewerSettings are the caller-owned display settings. Values are compared with ==;
// any difference triggers a reapplication pass on the attached model, never a reload.
type ViewerSettings struct {
	ShowWireframe     bool                `toml:"show_wireframe"`
	ShowMaterials     bool                `toml:"show_materials"`
	ShowTextures      bool                `toml:"show_textures"`
	AutoRotate        bool                `toml:"auto_rotate"`
	LightingMode      lighting.Mode       `toml:"lighting_mode"`
	LightingIntensity float32             `toml:"lighting_intensity"`
	BackgroundColor   common.Color        `toml:"background_color"`
	RenderMode        renderer.RenderMode `toml:"render_mode"`
}

// DefaultSettings returns the settings a new viewport starts with.
func DefaultSettings() ViewerSettings {
	return ViewerSettings{
		ShowMaterials:     true,
		ShowTextures:      true,
		LightingMode:      lighting.ModeStandard,
		LightingIntensity: 1,
		BackgroundColor:   common.ColorFromHex(0xf5f5f5),
		RenderMode:        renderer.RenderModeSolid,
	}
}

// Validate rejects settings that cannot be applied.
//
// Returns:
//   - error: error describing the first invalid field
func (s ViewerSettings) Validate() error {
	if s.LightingIntensity < 0 {
		return fmt.Errorf("lighting intensity must not be negative, got %g", s.LightingIntensity)
	}
	if _, err := s.LightingMode.MarshalText(); err != nil {
		return err
	}
	if _, err := s.RenderMode.MarshalText(); err != nil {
		return err
	}
	return nil
}

func (s ViewerSettings) displayOptions() display.Options {
	return display.Options{
		ShowWireframe: s.ShowWireframe,
		ShowMaterials: s.ShowMaterials,
		ShowTextures:  s.ShowTextures,
	}
}

// LoadSettings reads settings from a TOML file. Keys missing from the file keep their
// DefaultSettings values.
//
// Parameters:
//   - path: the file to read
//
// Returns:
//   - ViewerSettings: the decoded settings
//   - error: error if the file cannot be read, has unknown keys, or fails validation
func LoadSettings(path string) (ViewerSettings, error) {
	s := DefaultSettings()
	data, err := os.ReadFile(path)
	if err != nil {
		return s, fmt.Errorf("failed to read settings %s: %w", path, err)
	}
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&s); err != nil {
		var strict *toml.StrictMissingError
		if errors.As(err, &strict) {
			return DefaultSettings(), fmt.Errorf("settings %s: %s", path, strict.String())
		}
		return DefaultSettings(), fmt.Errorf("failed to decode settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return DefaultSettings(), fmt.Errorf("settings %s: %w", path, err)
	}
	return s, nil
}

// SaveSettings writes settings to a TOML file, replacing it.
//
// Parameters:
//   - path: the file to write
//   - s: the settings
//
// Returns:
//   - error: error if encoding or writing fails
func SaveSettings(path string, s ViewerSettings) error {
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write settings %s: %w", path, err)
	}
	return nil
}
