package client

import "time"

const (
	// AuthTokenTimelife - Time duration after which we assume auth token expired (if the server did not tell)
	AuthTokenTimelife = 55 * time.Minute
	// AuthTokenExpiryMargin - token is refreshed this long before it actually expires
	AuthTokenExpiryMargin = 2 * time.Minute
	// DefaultProjectID - Firebase project of the Huckleberry app
	DefaultProjectID = "simpleintervals"
	// DefaultRequestTimeout - timeout of a single HTTP request
	DefaultRequestTimeout = 10 * time.Second
)

// Document collections
const (
	UsersCollection  = "users"
	ChildsCollection = "childs"
	SleepCollection  = "sleep"
	FeedCollection   = "feed"
	DiaperCollection = "diaper"
	HealthCollection = "health"

	// IntervalsCollection - completed events of sleep, feed and diaper records
	IntervalsCollection = "intervals"
	// HealthDataCollection - measurements of health records
	HealthDataCollection = "data"
)

// Endpoints - base URLs of the remote services
type Endpoints struct {
	Identity    string
	SecureToken string
	Firestore   string
}

// DefaultEndpoints - production Google endpoints
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Identity:    "https://identitytoolkit.googleapis.com/v1",
		SecureToken: "https://securetoken.googleapis.com/v1",
		Firestore:   "https://firestore.googleapis.com/v1",
	}
}
