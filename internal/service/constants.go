package service

const (
	// Pagination limits
	RecentTracksLimit     = 20
	RecentActivitiesLimit = 30

	// Unit conversions
	MetersPerMile = 1609.34
	FeetPerMeter  = 3.28084
)
