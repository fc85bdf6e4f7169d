package cache

import (
	"fmt"
)

func VehicleKey(vehicleID string) string {
	return fmt.Sprintf("vehicle:%s", vehicleID)
}

func JobStatusKey(jobID string) string {
	return fmt.Sprintf("job:status:%s", jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}
