package entity

import "time"

// NowUnixMilli returns the current time in unix milliseconds
func NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}
