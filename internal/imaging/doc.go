// Package imaging resolves, decodes, transforms and encodes raster images.
//
// Images enter the package through a Source, which turns a locator (a bare
// path, a file:// URI or an http(s):// URI) or a line of Base64 text into a
// Handle: the decoded pixels plus the container format sniffed from the
// bytes. The transforms (Brightness, Posterize, MatchTemplates, GridOverlay
// and friends) take a plain image.Image and return a new image or a
// JSON-serializable value; they never encode. Encode writes a final image in
// any supported container format.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// top-left corner of the image:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Thread Safety
//
// Source and Cache are safe for concurrent use once configured. Transforms
// are stateless and never modify their input, so they can run concurrently
// on shared images.
//
// # Formats
//
// Decoding supports png, jpg, gif, bmp, tiff, webp and the netpbm family
// (pbm, pgm, ppm, pam). Encoding supports the same set except webp.
package imaging
