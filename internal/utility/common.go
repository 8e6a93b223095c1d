package utility

import (
	"time"
)

// UnixMilli trả về thời gian Unix tính bằng mili giây của một mốc thời gian.
//
// Parameters:
//   - t: mốc thời gian cần chuyển đổi
//
// Returns:
//   - int64: số mili giây kể từ Unix epoch
func UnixMilli(t time.Time) int64 {
	return t.UnixNano() / int64(time.Millisecond)
}

// CurrentTimeInMilli trả về thời gian hiện tại tính bằng mili giây.
//
// Returns:
//   - int64: số mili giây kể từ Unix epoch tại thời điểm gọi
func CurrentTimeInMilli() int64 {
	return UnixMilli(time.Now())
}
