package tracking

import "dronetracker/internal/model"

// HorizontalError is the signed pixel distance of the target centroid from
// the vertical center line of the frame. Positive means right of center.
func HorizontalError(target model.Target, frameWidth int) float64 {
	return target.Centroid.X - float64(frameWidth)/2
}
