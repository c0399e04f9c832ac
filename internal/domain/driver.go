package domain

// DriverStatus represents the current status of a driver.
type DriverStatus string

const (
	DriverStatusOnline  DriverStatus = "online"
	DriverStatusBusy    DriverStatus = "busy"
	DriverStatusOffline DriverStatus = "offline"
)

// Driver represents a driver in the system. Status is mutated only as a side
// effect of ride assignment/completion or an explicit presence change; the
// coordinate is mutated by the driver's own location reports.
type Driver struct {
	ID     string
	Name   string
	Lat    float64
	Lng    float64
	Status DriverStatus
}
