/*
go-deepsort provides a multi-object tracker for Go in the DeepSORT family.
Detections from an object detector are turned into tracks with stable IDs
across video frames by fusing Kalman filter motion prediction with a color
histogram appearance descriptor, solving an optimal assignment between
detections and tracks every frame.

The tracker package holds the core algorithm and can be used on its own.
The session package serialises access to per stream trackers for services
handling several video streams at once, and the render package draws track
results on frames.

See example code and usage in the examples subdirectory.
*/
package deepsort
