// Package screen provides region-based capture of the game window.
package screen

import "image"

// Named HUD regions.
const (
	RegionResources   = "resources"
	RegionTimer       = "timer"
	RegionMinimap     = "minimap"
	RegionCommandCard = "command_card"
	RegionUnitInfo    = "unit_info"
)

// Reference resolution the default region coordinates are tuned for.
const (
	refWidth  = 1920
	refHeight = 1080
)

// Region is a named capture rectangle in screen coordinates.
type Region struct {
	Name   string
	Left   int
	Top    int
	Width  int
	Height int
}

// Rect returns the region as an image.Rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.Left, r.Top, r.Left+r.Width, r.Top+r.Height)
}

// Regions maps region names to capture rectangles.
type Regions map[string]Region

// DefaultRegions returns the standard HUD layout for a given screen
// size, scaled from the 1920x1080 reference coordinates.
func DefaultRegions(width, height int) Regions {
	base := Regions{
		RegionResources:   {Name: RegionResources, Left: 10, Top: 10, Width: 300, Height: 50},
		RegionMinimap:     {Name: RegionMinimap, Left: 10, Top: 650, Width: 300, Height: 300},
		RegionCommandCard: {Name: RegionCommandCard, Left: 700, Top: 800, Width: 500, Height: 200},
		RegionUnitInfo:    {Name: RegionUnitInfo, Left: 1400, Top: 800, Width: 500, Height: 200},
		RegionTimer:       {Name: RegionTimer, Left: 860, Top: 10, Width: 200, Height: 40},
	}
	if width == refWidth && height == refHeight {
		return base
	}
	scaled := make(Regions, len(base))
	for name, r := range base {
		scaled[name] = Region{
			Name:   r.Name,
			Left:   r.Left * width / refWidth,
			Top:    r.Top * height / refHeight,
			Width:  r.Width * width / refWidth,
			Height: r.Height * height / refHeight,
		}
	}
	return scaled
}

// Set defines or replaces a named region.
func (rs Regions) Set(name string, left, top, width, height int) {
	rs[name] = Region{Name: name, Left: left, Top: top, Width: width, Height: height}
}
