// Package surface defines the 2D drawing capability bolts are rasterized onto.
//
// The renderer and packager only see the [Surface] interface: clearing, path
// building, stroke state, shadow blur, compositing mode, stroking and two
// extraction paths. [Surface.Bitmap] is the fast path and hands back an image
// snapshot; [Surface.Pixels] is the slower raw RGBA readback used when the
// fast path is unavailable.
//
// Two implementations ship with the package:
//
//   - [Canvas] rasterizes with fogleman/gg and blurs shadows with
//     disintegration/imaging.
//   - [Recorder] records every call and can be told to fail either
//     extraction path. It is meant for tests.
package surface
