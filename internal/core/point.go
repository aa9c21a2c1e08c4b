package core

import (
	"fmt"
	"math"
)

// Point is a single sample in the unit square.
type Point struct {
	X float64
	Y float64
}

// Distance is the Euclidean distance of a Point from the origin.
type Distance = float64

// DistanceBatch is the ordered list of distances drawn by one worker.
type DistanceBatch []Distance

// Distance returns the Euclidean distance from the origin.
func (p Point) Distance() Distance {
	return math.Sqrt(p.X*p.X + p.Y*p.Y)
}

// Inside reports whether d falls in the closed unit quarter-disc.
func Inside(d Distance) bool {
	return d <= 1.0
}

// Short renders the point with three decimals for trace output.
func (p Point) Short() string {
	return fmt.Sprintf("Point{x: %.3f, y: %.3f}", p.X, p.Y)
}
