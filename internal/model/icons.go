package model

// Centralized icons for the UI components
// Using simple single-width characters for consistent terminal rendering
const (
	IconDeleted    = "✗" // Node removed by an overlay
	IconParent     = "↳" // Include/macro context row
	IconNoOrigin   = "·" // Line without provenance
	IconOK         = " " // Space (OK - no icon to reduce noise)
	IconBreadcrumb = "›" // Separator between chain entries
	IconTarget     = "»" // Marks resolved lines in a context listing
)
