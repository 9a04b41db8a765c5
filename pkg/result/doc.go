// Package result turns a drawn surface into a transferable image and a
// shake intensity.
//
// [Packager.Package] prefers the fast [surface.Surface.Bitmap] path and falls
// back to [surface.Surface.Pixels]. When both fail it returns a degraded
// [Result] with no image, zero intensity and the error set. It never panics
// and never returns a Go error; callers inspect [Result.Err].
package result
