package config

// Format of static export.
// ENUM(html, png, jpeg, text)
type ExportFmt int

// Ext returns file name extension for exported pages.
func (f ExportFmt) Ext() string {
	switch f {
	case ExportFmtPng:
		return ".png"
	case ExportFmtJpeg:
		return ".jpg"
	case ExportFmtText:
		return ".txt"
	default:
		return ".html"
	}
}

// Raster reports whether pages are exported as images.
func (f ExportFmt) Raster() bool {
	return f == ExportFmtPng || f == ExportFmtJpeg
}
