/*
Package point provides integer coordinates and bounding boxes in 2-space, as
used to address cells of the cleaning grid.

Point is cast-compatible with the standard "image".Point; distances between
points are straight-line Euclidean, computed in the planar geometry of
"github.com/paulmach/orb".

*/
package point
