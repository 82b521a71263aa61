package ipsae

import "math"

// Distances computes the N x N matrix of Euclidean distances between all
// pairs of coordinates. The result is symmetric with a zero diagonal.
func Distances(coords []Coords) *Matrix {
	n := len(coords)
	m := NewMatrix(n)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := dist(coords[i], coords[j])
			m.Data[i*n+j] = d
			m.Data[j*n+i] = d
		}
	}
	return m
}

func dist(a, b Coords) float64 {
	dx, dy, dz := a[0]-b[0], a[1]-b[1], a[2]-b[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
