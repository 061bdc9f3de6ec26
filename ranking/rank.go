// Package ranking orders forum posts by engagement, gravity-decayed over
// time so fresh discussions surface above old popular ones.
package ranking

import (
	"math"
	"time"
)

type Rankable interface {
	GetScore() int64
	Age() time.Time
}

// Rank returns the decayed score of an item at referenceTime. timebaseInHours
// dampens the very first hours so a brand new post doesn't divide by near
// zero; gravity controls how fast older items sink.
func Rank(item Rankable, gravity float64, timebaseInHours int64, referenceTime time.Time) float64 {
	hours := referenceTime.Sub(item.Age()).Hours()
	s := item.GetScore()

	return float64(s-1) / math.Pow(float64(timebaseInHours)+hours, gravity)
}
