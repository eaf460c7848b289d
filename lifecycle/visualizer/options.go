package visualizer

// Options configures the visualization output.
type Options struct {
	// ShowDescriptions includes state descriptions in state nodes
	ShowDescriptions bool

	// ShowTransitionNames labels edges with their transition name
	ShowTransitionNames bool

	// Direction controls diagram flow: "TD" (top-down) or "LR" (left-right)
	Direction string

	// HighlightPath highlights a specific state path through the diagram
	HighlightPath []string

	// Theme controls the color scheme: "default", "dark", "forest"
	Theme string
}

// DefaultOptions returns sensible defaults for visualization.
func DefaultOptions() Options {
	return Options{
		ShowDescriptions:    true,
		ShowTransitionNames: true,
		Direction:           "TD",
		Theme:               "default",
	}
}

// WithShowDescriptions enables/disables state descriptions.
func (o Options) WithShowDescriptions(show bool) Options {
	o.ShowDescriptions = show

	return o
}

// WithShowTransitionNames enables/disables edge labels.
func (o Options) WithShowTransitionNames(show bool) Options {
	o.ShowTransitionNames = show

	return o
}

// WithDirection sets the diagram direction.
func (o Options) WithDirection(direction string) Options {
	o.Direction = direction

	return o
}

// WithHighlightPath sets states to highlight.
func (o Options) WithHighlightPath(path []string) Options {
	o.HighlightPath = path

	return o
}

// WithTheme sets the color theme.
func (o Options) WithTheme(theme string) Options {
	o.Theme = theme

	return o
}
