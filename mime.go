package pixst

import "mime"

// AddExtensionType allows you to add a custom file extension e.g.
// `.ome.tiff` and the Content-Type associated with the extension,
// for example `image/tiff`.
func AddExtensionType(ext string, typ string) error {
	return mime.AddExtensionType(ext, typ)
}
