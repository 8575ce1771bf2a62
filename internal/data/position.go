package data

import "math"

// Position is a coordinate in the game's internal world grid. Positions are
// only comparable within the same map.
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Point is a pixel coordinate on screen (buttons, click targets).
type Point struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Region is a pixel rectangle relative to the game window client area.
type Region struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

// CalculateDistance returns the Euclidean distance between two positions.
func CalculateDistance(p1, p2 Position) float64 {
	dx := float64(p1.X - p2.X)
	dy := float64(p1.Y - p2.Y)
	return math.Sqrt(dx*dx + dy*dy)
}

func PositionSub(p1, p2 Position) Position {
	res := p1
	res.X -= p2.X
	res.Y -= p2.Y
	return res
}
