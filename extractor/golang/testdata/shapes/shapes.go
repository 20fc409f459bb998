// Package shapes is a small geometry library used as extraction input.
package shapes

import "fmt"

// Version of the library.
const Version = "1.0"

// Pi is an untyped constant.
const Pi = 3.14159

// Counter counts created shapes.
var Counter int

var hidden = 1

// Rectangle is an axis-aligned rectangle.
type Rectangle struct {
	// Width of the rectangle.
	Width  float64
	Height float64 // Height of the rectangle.
	Tags   []string
	label  string
}

// NewRectangle creates a rectangle.
func NewRectangle(w, h float64) *Rectangle {
	return &Rectangle{Width: w, Height: h}
}

// Area returns the area.
func (r *Rectangle) Area() float64 {
	return r.Width * r.Height
}

// String implements fmt.Stringer.
func (r Rectangle) String() string {
	return fmt.Sprintf("%gx%g", r.Width, r.Height)
}

func (r *Rectangle) scale(f float64) {
	r.Width *= f
	r.Height *= f
}

// Point has no explicit constructor.
type Point struct {
	X, Y int32
}

// Shape is skipped since only structs become classes.
type Shape interface {
	Area() float64
}

// Sum adds all values.
func Sum(values ...int) int {
	total := 0
	for _, v := range values {
		total += v
	}
	return total
}

// Divide returns the quotient and remainder.
func Divide(a, b int64) (int64, int64, error) {
	if b == 0 {
		return 0, 0, fmt.Errorf("division by zero")
	}
	return a / b, a % b, nil
}

// Apply calls fn on v.
func Apply(fn func(int) int, v int) int {
	return fn(v)
}

// NewPointLike is not a constructor since its result is not Point.
func NewPointLike() int { return 0 }

// Internal is excluded from extraction.
//
//metaffi:skip
func Internal() {}

//metaffi:skip
type Skipped struct {
	A int
}
