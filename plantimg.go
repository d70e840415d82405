// Package plantimg turns PlantUML diagram source into an image reference
// served by a PlantUML server: <server>/<format>/<encoded text>.
//
// No network I/O happens here. Whoever displays the reference fetches it.
package plantimg

const (
	// DefaultServer is the public PlantUML server.
	DefaultServer = "https://www.plantuml.com/plantuml"
	// DefaultFormat is the path segment used when none is given.
	DefaultFormat = FormatSVG
	// AltText is the alternative text of every rendered image.
	AltText = "PlantUML diagram"
)

// Output formats understood by PlantUML servers. Any other value is passed
// through unchanged.
const (
	FormatSVG   = "svg"
	FormatPNG   = "png"
	FormatText  = "txt"
	FormatLaTeX = "latex"
)
